package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	purchasingCommands "github.com/andrescamacho/factorysim-go/internal/application/purchasing/commands"
	purchasingQueries "github.com/andrescamacho/factorysim-go/internal/application/purchasing/queries"
)

// NewPurchaseCommand creates the purchase command with subcommands
func NewPurchaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purchase",
		Aliases: []string{"po"},
		Short:   "Material purchase orders",
		Long: `Place, list and cancel purchase orders and compare provider quotes.

Purchases are paid when placed and arrive after the provider's lead time.
Quantities are rounded up to the provider's lot size.

Examples:
  factorysim purchase quotes mat-wood
  factorysim purchase place mat-wood prov-bulk 40
  factorysim purchase list --status PENDING
  factorysim purchase cancel 3`,
	}

	cmd.AddCommand(newPurchasePlaceCommand())
	cmd.AddCommand(newPurchaseListCommand())
	cmd.AddCommand(newPurchaseCancelCommand())
	cmd.AddCommand(newPurchaseQuotesCommand())

	return cmd
}

func newPurchasePlaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "place <material-id> <provider-id> <quantity>",
		Short: "Buy a material from a provider",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[2])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &purchasingCommands.PlacePurchaseOrderCommand{
					MaterialID: args[0],
					ProviderID: args[1],
					Quantity:   qty,
				})
				if err != nil {
					return err
				}
				po := resp.(*purchasingCommands.PlacePurchaseOrderResponse).PurchaseOrder
				if printJSONIfRequested(po) {
					return nil
				}
				fmt.Printf("✓ PO-%d placed: %d x %s from %s for %s, arriving day %d\n",
					po.ID, po.Quantity, po.MaterialID, po.ProviderID, po.TotalCost.StringFixed(2), po.ExpectedArrival)
				return nil
			})
		},
	}
}

func newPurchaseListCommand() *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &purchasingQueries.ListPurchaseOrdersQuery{Statuses: statuses})
				if err != nil {
					return err
				}
				pos := resp.(*purchasingQueries.ListPurchaseOrdersResponse).PurchaseOrders
				if printJSONIfRequested(pos) {
					return nil
				}
				if len(pos) == 0 {
					fmt.Println("No purchase orders found")
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "ID\tMATERIAL\tPROVIDER\tQTY\tCOST\tPLACED\tARRIVAL\tSTATUS\tFOR ORDER")
				for _, po := range pos {
					forOrder := "-"
					if po.ProductionOrderID != 0 {
						forOrder = fmt.Sprintf("%d", po.ProductionOrderID)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\t%d\t%s\t%s\n", po.ID, po.MaterialID, po.ProviderID,
						po.Quantity, po.TotalCost.StringFixed(2), po.PlacedDay, po.ExpectedArrival, po.Status, forOrder)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (PENDING, ARRIVED, CANCELLED)")
	return cmd
}

func newPurchaseCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <purchase-order-id>",
		Short: "Cancel a pending purchase order (no refund)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				if _, err := a.send(ctx, &purchasingCommands.CancelPurchaseOrderCommand{PurchaseOrderID: id}); err != nil {
					return err
				}
				fmt.Printf("✓ PO-%d cancelled\n", id)
				return nil
			})
		},
	}
}

func newPurchaseQuotesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quotes <material-id>",
		Short: "Compare provider offerings for a material, cheapest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &purchasingQueries.ListQuotesQuery{MaterialID: args[0]})
				if err != nil {
					return err
				}
				quotes := resp.(*purchasingQueries.ListQuotesResponse).Quotes
				if printJSONIfRequested(quotes) {
					return nil
				}
				if len(quotes) == 0 {
					fmt.Printf("No provider sells %s\n", args[0])
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "PROVIDER\tUNIT PRICE\tLOT SIZE\tLEAD TIME")
				for _, q := range quotes {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d days\n", q.ProviderID, q.Offering.UnitPrice.StringFixed(2),
						q.Offering.UnitSize, q.Offering.LeadTimeDays)
				}
				return w.Flush()
			})
		},
	}
}
