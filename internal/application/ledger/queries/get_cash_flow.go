package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
)

// GetCashFlowQuery represents a query to generate a cash flow statement per category
type GetCashFlowQuery struct {
	FromDay *int
	ToDay   *int
}

// GetCashFlowResponse represents the cash flow statement result
type GetCashFlowResponse struct {
	Period     string
	Categories []*CategoryCashFlow
}

// CategoryCashFlow represents cash flow for a specific category
type CategoryCashFlow struct {
	Category     string
	TotalInflow  decimal.Decimal
	TotalOutflow decimal.Decimal
	NetFlow      decimal.Decimal
	Transactions int
}

// GetCashFlowHandler handles the GetCashFlow query
type GetCashFlowHandler struct {
	transactionRepo ledger.TransactionRepository
	session         *session.Session
}

// NewGetCashFlowHandler creates a new GetCashFlowHandler
func NewGetCashFlowHandler(transactionRepo ledger.TransactionRepository, s *session.Session) *GetCashFlowHandler {
	return &GetCashFlowHandler{
		transactionRepo: transactionRepo,
		session:         s,
	}
}

// Handle executes the GetCashFlow query
func (h *GetCashFlowHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetCashFlowQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCashFlowQuery")
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

	return calculateCashFlow(query, transactions), nil
}

func calculateCashFlow(query *GetCashFlowQuery, transactions []*ledger.Transaction) *GetCashFlowResponse {
	flows := make(map[ledger.Category]*CategoryCashFlow)
	for _, cat := range ledger.AllCategories() {
		flows[cat] = &CategoryCashFlow{
			Category:     cat.String(),
			TotalInflow:  decimal.Zero,
			TotalOutflow: decimal.Zero,
			NetFlow:      decimal.Zero,
		}
	}

	for _, tx := range transactions {
		flow := flows[tx.Category()]
		flow.Transactions++
		if tx.Amount().IsPositive() {
			flow.TotalInflow = flow.TotalInflow.Add(tx.Amount())
		} else {
			flow.TotalOutflow = flow.TotalOutflow.Add(tx.Amount().Neg())
		}
		flow.NetFlow = flow.TotalInflow.Sub(flow.TotalOutflow)
	}

	// only categories with activity, in stable category order
	categories := make([]*CategoryCashFlow, 0, len(flows))
	for _, cat := range ledger.AllCategories() {
		if flows[cat].Transactions > 0 {
			categories = append(categories, flows[cat])
		}
	}

	return &GetCashFlowResponse{
		Period:     period(query.FromDay, query.ToDay),
		Categories: categories,
	}
}
