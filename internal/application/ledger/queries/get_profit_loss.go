package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
)

// GetProfitLossQuery builds a profit & loss statement over an inclusive day range.
// Nil bounds are open.
type GetProfitLossQuery struct {
	FromDay *int
	ToDay   *int
}

// GetProfitLossResponse represents the profit & loss statement result
type GetProfitLossResponse struct {
	Period           string
	TotalRevenue     decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetProfit        decimal.Decimal
	RevenueBreakdown map[string]decimal.Decimal
	ExpenseBreakdown map[string]decimal.Decimal
}

// GetProfitLossHandler handles the GetProfitLoss query
type GetProfitLossHandler struct {
	transactionRepo ledger.TransactionRepository
	session         *session.Session
}

// NewGetProfitLossHandler creates a new GetProfitLossHandler
func NewGetProfitLossHandler(transactionRepo ledger.TransactionRepository, s *session.Session) *GetProfitLossHandler {
	return &GetProfitLossHandler{
		transactionRepo: transactionRepo,
		session:         s,
	}
}

// Handle executes the GetProfitLoss query
func (h *GetProfitLossHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetProfitLossQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProfitLossQuery")
	}

	opts := ledger.QueryOptions{
		FromDay: query.FromDay,
		ToDay:   query.ToDay,
		OrderBy: "day ASC",
	}
	transactions, err := h.transactionRepo.FindBySimulation(ctx, h.session.Name(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	return calculateProfitLoss(query, transactions), nil
}

func calculateProfitLoss(query *GetProfitLossQuery, transactions []*ledger.Transaction) *GetProfitLossResponse {
	resp := &GetProfitLossResponse{
		Period:           period(query.FromDay, query.ToDay),
		TotalRevenue:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
		RevenueBreakdown: make(map[string]decimal.Decimal),
		ExpenseBreakdown: make(map[string]decimal.Decimal),
	}

	for _, tx := range transactions {
		category := tx.Category().String()
		if tx.IsIncome() {
			resp.RevenueBreakdown[category] = resp.RevenueBreakdown[category].Add(tx.Amount())
			resp.TotalRevenue = resp.TotalRevenue.Add(tx.Amount())
		} else {
			// expenses are reported as positive amounts
			resp.ExpenseBreakdown[category] = resp.ExpenseBreakdown[category].Add(tx.Amount().Neg())
			resp.TotalExpenses = resp.TotalExpenses.Add(tx.Amount().Neg())
		}
	}

	resp.NetProfit = resp.TotalRevenue.Sub(resp.TotalExpenses)
	return resp
}

func period(from, to *int) string {
	switch {
	case from == nil && to == nil:
		return "all days"
	case from == nil:
		return fmt.Sprintf("through day %d", *to)
	case to == nil:
		return fmt.Sprintf("from day %d", *from)
	default:
		return fmt.Sprintf("days %d to %d", *from, *to)
	}
}
