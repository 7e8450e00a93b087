package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
)

// GetTransactionsQuery represents a query to retrieve transactions
type GetTransactionsQuery struct {
	FromDay         *int
	ToDay           *int
	Category        *string
	TransactionType *string
	Reference       *string
	Limit           int
	Offset          int
	OrderBy         string
}

// GetTransactionsResponse represents the result of the query
type GetTransactionsResponse struct {
	Transactions []*TransactionDTO
	Total        int
}

// TransactionDTO represents a transaction data transfer object
type TransactionDTO struct {
	ID            string
	Day           int
	Timestamp     time.Time
	Type          string
	Category      string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reference     string
	Description   string
}

// GetTransactionsHandler handles the GetTransactions query
type GetTransactionsHandler struct {
	transactionRepo ledger.TransactionRepository
	session         *session.Session
}

// NewGetTransactionsHandler creates a new GetTransactionsHandler
func NewGetTransactionsHandler(transactionRepo ledger.TransactionRepository, s *session.Session) *GetTransactionsHandler {
	return &GetTransactionsHandler{
		transactionRepo: transactionRepo,
		session:         s,
	}
}

// Handle executes the GetTransactions query
func (h *GetTransactionsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetTransactionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTransactionsQuery")
	}

	opts, err := h.buildQueryOptions(query)
	if err != nil {
		return nil, err
	}

	transactions, err := h.transactionRepo.FindBySimulation(ctx, h.session.Name(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	total, err := h.transactionRepo.CountBySimulation(ctx, h.session.Name(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	dtos := make([]*TransactionDTO, len(transactions))
	for i, tx := range transactions {
		dtos[i] = toDTO(tx)
	}

	return &GetTransactionsResponse{
		Transactions: dtos,
		Total:        total,
	}, nil
}

func (h *GetTransactionsHandler) buildQueryOptions(query *GetTransactionsQuery) (ledger.QueryOptions, error) {
	opts := ledger.DefaultQueryOptions()
	opts.FromDay = query.FromDay
	opts.ToDay = query.ToDay

	if query.Category != nil {
		category, err := ledger.ParseCategory(*query.Category)
		if err != nil {
			return opts, fmt.Errorf("invalid category: %w", err)
		}
		opts.Category = &category
	}

	if query.TransactionType != nil {
		txType, err := ledger.ParseTransactionType(*query.TransactionType)
		if err != nil {
			return opts, fmt.Errorf("invalid transaction type: %w", err)
		}
		opts.TransactionType = &txType
	}

	opts.Reference = query.Reference

	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	opts.Offset = query.Offset

	if query.OrderBy != "" {
		if query.OrderBy != "day ASC" && query.OrderBy != "day DESC" {
			return opts, fmt.Errorf("invalid order: %q", query.OrderBy)
		}
		opts.OrderBy = query.OrderBy
	}

	return opts, nil
}

func toDTO(tx *ledger.Transaction) *TransactionDTO {
	return &TransactionDTO{
		ID:            tx.ID().String(),
		Day:           tx.Day(),
		Timestamp:     tx.Timestamp(),
		Type:          tx.TransactionType().String(),
		Category:      tx.Category().String(),
		Amount:        tx.Amount(),
		BalanceBefore: tx.BalanceBefore(),
		BalanceAfter:  tx.BalanceAfter(),
		Reference:     tx.Reference(),
		Description:   tx.Description(),
	}
}
