package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorysim-go/internal/application/ledger/queries"
)

// NewFinanceCommand creates the finance command with subcommands
func NewFinanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "finance",
		Aliases: []string{"ledger"},
		Short:   "Financial ledger and reports",
		Long: `View the cash position, transaction history and financial reports.

Every balance change is a transaction: material purchases (MATERIAL_COSTS),
sales on fulfillment (SALES_REVENUE) and the daily operating charge
(OPERATIONAL_COSTS). Day ranges are inclusive simulated days.

Examples:
  factorysim finance summary
  factorysim finance history
  factorysim finance forecast --days 14
  factorysim finance transactions --category MATERIAL_COSTS --limit 20
  factorysim finance pnl --from 1 --to 7
  factorysim finance cashflow`,
	}

	cmd.AddCommand(newFinanceSummaryCommand())
	cmd.AddCommand(newFinanceHistoryCommand())
	cmd.AddCommand(newFinanceForecastCommand())
	cmd.AddCommand(newFinanceTransactionsCommand())
	cmd.AddCommand(newFinanceProfitLossCommand())
	cmd.AddCommand(newFinanceCashFlowCommand())

	return cmd
}

// dayRange holds --from/--to flags; negative means unbounded
type dayRange struct {
	from int
	to   int
}

func (r *dayRange) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&r.from, "from", -1, "First simulated day (inclusive)")
	cmd.Flags().IntVar(&r.to, "to", -1, "Last simulated day (inclusive)")
}

func (r *dayRange) bounds() (*int, *int) {
	var from, to *int
	if r.from >= 0 {
		from = &r.from
	}
	if r.to >= 0 {
		to = &r.to
	}
	return from, to
}

func newFinanceSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, totals and profit by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &queries.GetFinancialSummaryQuery{})
				if err != nil {
					return err
				}
				summary := resp.(*queries.GetFinancialSummaryResponse)
				if printJSONIfRequested(summary) {
					return nil
				}
				fmt.Printf("\nFINANCIAL SUMMARY (day %d)\n", summary.Day)
				fmt.Println("─────────────────────────────────────────────")
				fmt.Printf("  %-25s %s\n", "Initial balance:", formatCredits(summary.InitialBalance))
				fmt.Printf("  %-25s %s\n", "Current balance:", formatCredits(summary.Summary.Balance))
				fmt.Printf("  %-25s %s\n", "Total revenue:", formatCredits(summary.Summary.Revenue))
				fmt.Printf("  %-25s %s\n", "Total expenses:", formatCredits(summary.Summary.Expenses))
				fmt.Printf("  %-25s %s\n", "Profit:", formatAmount(summary.Summary.Profit))
				fmt.Println("\nBY CATEGORY")
				byCategory := make(map[string]decimal.Decimal, len(summary.ProfitLoss))
				for c, amount := range summary.ProfitLoss {
					byCategory[string(c)] = amount
				}
				for _, c := range sortedKeys(byCategory) {
					fmt.Printf("  %-25s %s\n", c+":", formatAmount(byCategory[c]))
				}
				return nil
			})
		},
	}
}

func newFinanceHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show revenue, costs and closing balance per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &queries.GetFinancialHistoryQuery{})
				if err != nil {
					return err
				}
				days := resp.(*queries.GetFinancialHistoryResponse).Days
				if printJSONIfRequested(days) {
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "DAY\tREVENUE\tMATERIALS\tOPERATIONS\tPROFIT\tBALANCE")
				for _, d := range days {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", d.Day, formatCredits(d.Revenue),
						formatCredits(d.MaterialCosts), formatCredits(d.OperationalCosts),
						formatAmount(d.Profit), formatCredits(d.ClosingBalance))
				}
				return w.Flush()
			})
		},
	}
}

func newFinanceForecastCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project the balance forward from average daily results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &queries.GetFinancialForecastQuery{Days: days})
				if err != nil {
					return err
				}
				points := resp.(*queries.GetFinancialForecastResponse).Points
				if printJSONIfRequested(points) {
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "DAY\tREVENUE\tMATERIALS\tOPERATIONS\tPROFIT\tBALANCE")
				for _, p := range points {
					fmt.Fprintf(w, "%d (+%d)\t%s\t%s\t%s\t%s\t%s\n", p.Day, p.DayOffset,
						formatCredits(p.ProjectedRevenue), formatCredits(p.ProjectedMaterialCosts),
						formatCredits(p.ProjectedOperationalCosts), formatAmount(p.ProjectedProfit),
						formatCredits(p.ProjectedBalance))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Days to project")
	return cmd
}

func newFinanceTransactionsCommand() *cobra.Command {
	var (
		days      dayRange
		category  string
		txType    string
		reference string
		limit     int
		offset    int
		orderBy   string
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"list"},
		Short:   "List transactions",
		Long: `List transactions with optional filtering. Newest first by default.

Categories:
  SALES_REVENUE      - Fulfilled production orders
  MATERIAL_COSTS     - Purchase orders
  OPERATIONAL_COSTS  - Daily operating charge

Transaction Types:
  SALE, PURCHASE, OPERATIONAL_COST`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := days.bounds()
			query := &queries.GetTransactionsQuery{
				FromDay: from,
				ToDay:   to,
				Limit:   limit,
				Offset:  offset,
				OrderBy: orderBy,
			}
			if category != "" {
				query.Category = &category
			}
			if txType != "" {
				query.TransactionType = &txType
			}
			if reference != "" {
				query.Reference = &reference
			}

			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, query)
				if err != nil {
					return err
				}
				response := resp.(*queries.GetTransactionsResponse)
				if printJSONIfRequested(response) {
					return nil
				}
				displayTransactionList(response)
				return nil
			})
		},
	}

	days.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&txType, "type", "", "Filter by transaction type")
	cmd.Flags().StringVar(&reference, "reference", "", "Filter by reference, e.g. PO-3 or ORD-12")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of transactions to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", "day DESC", "Sort order (day ASC or day DESC)")

	return cmd
}

func newFinanceProfitLossCommand() *cobra.Command {
	var days dayRange

	cmd := &cobra.Command{
		Use:     "pnl",
		Aliases: []string{"profit-loss"},
		Short:   "Profit & loss statement over a day range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := days.bounds()
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &queries.GetProfitLossQuery{FromDay: from, ToDay: to})
				if err != nil {
					return err
				}
				response := resp.(*queries.GetProfitLossResponse)
				if printJSONIfRequested(response) {
					return nil
				}
				displayProfitLoss(response)
				return nil
			})
		},
	}

	days.register(cmd)
	return cmd
}

func newFinanceCashFlowCommand() *cobra.Command {
	var days dayRange

	cmd := &cobra.Command{
		Use:     "cashflow",
		Aliases: []string{"cash-flow"},
		Short:   "Cash flow statement grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := days.bounds()
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &queries.GetCashFlowQuery{FromDay: from, ToDay: to})
				if err != nil {
					return err
				}
				response := resp.(*queries.GetCashFlowResponse)
				if printJSONIfRequested(response) {
					return nil
				}
				displayCashFlow(response)
				return nil
			})
		},
	}

	days.register(cmd)
	return cmd
}

// displayTransactionList formats and displays transaction list
func displayTransactionList(response *queries.GetTransactionsResponse) {
	if len(response.Transactions) == 0 {
		fmt.Println("No transactions found")
		return
	}

	fmt.Printf("\nTRANSACTIONS (Showing %d of %d total)\n", len(response.Transactions), response.Total)
	fmt.Println("─────────────────────────────────────────────────────────────────────────────")

	w := newTable(os.Stdout)
	fmt.Fprintln(w, "Day\tType\tCategory\tReference\tAmount\tBalance")
	fmt.Fprintln(w, "───\t────\t────────\t─────────\t──────\t───────")
	for _, tx := range response.Transactions {
		ref := tx.Reference
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			tx.Day, tx.Type, tx.Category, ref, formatAmount(tx.Amount), formatCredits(tx.BalanceAfter))
	}
	_ = w.Flush()
	fmt.Println("─────────────────────────────────────────────────────────────────────────────")
}

// displayProfitLoss formats and displays P&L report
func displayProfitLoss(response *queries.GetProfitLossResponse) {
	fmt.Printf("\nPROFIT & LOSS STATEMENT\n")
	fmt.Printf("Period: %s\n", response.Period)
	fmt.Println("─────────────────────────────────────────────")

	fmt.Println("\nREVENUE")
	for _, category := range sortedKeys(response.RevenueBreakdown) {
		fmt.Printf("  %-25s %s\n", category+":", formatCredits(response.RevenueBreakdown[category]))
	}
	fmt.Printf("  %-25s %s\n", "Total Revenue:", formatCredits(response.TotalRevenue))

	fmt.Println("\nEXPENSES")
	for _, category := range sortedKeys(response.ExpenseBreakdown) {
		fmt.Printf("  %-25s %s\n", category+":", formatCredits(response.ExpenseBreakdown[category]))
	}
	fmt.Printf("  %-25s %s\n", "Total Expenses:", formatCredits(response.TotalExpenses))

	fmt.Println("\n─────────────────────────────────────────────")
	fmt.Printf("  %-25s %s\n\n", "NET PROFIT:", formatAmount(response.NetProfit))
}

// displayCashFlow formats and displays the cash flow report
func displayCashFlow(response *queries.GetCashFlowResponse) {
	fmt.Printf("\nCASH FLOW STATEMENT\n")
	fmt.Printf("Period: %s\n\n", response.Period)

	w := newTable(os.Stdout)
	fmt.Fprintln(w, "Category\tInflow\tOutflow\tNet\tCount")
	net := decimal.Zero
	for _, c := range response.Categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.Category, formatCredits(c.TotalInflow),
			formatCredits(c.TotalOutflow), formatAmount(c.NetFlow), c.Transactions)
		net = net.Add(c.NetFlow)
	}
	_ = w.Flush()
	fmt.Printf("\nNet cash flow: %s\n\n", formatAmount(net))
}

func formatCredits(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatAmount renders a signed amount with an explicit plus for income
func formatAmount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
