package ledger

import (
	"context"
)

// TransactionRepository persists a queryable copy of each simulation's transactions
type TransactionRepository interface {
	// Append stores transactions posted since the last call
	Append(ctx context.Context, simulation string, transactions []*Transaction) error

	// FindBySimulation retrieves transactions with optional filtering
	FindBySimulation(ctx context.Context, simulation string, opts QueryOptions) ([]*Transaction, error)

	// CountBySimulation returns the count of transactions matching the criteria
	CountBySimulation(ctx context.Context, simulation string, opts QueryOptions) (int, error)

	// DeleteBySimulation drops every transaction of a simulation
	DeleteBySimulation(ctx context.Context, simulation string) error
}

// QueryOptions defines filtering and pagination options for transaction queries
type QueryOptions struct {
	// Simulated day range, inclusive
	FromDay *int
	ToDay   *int

	Category        *Category
	TransactionType *TransactionType
	Reference       *string

	Limit  int
	Offset int

	// "day ASC" or "day DESC" (default DESC)
	OrderBy string
}

func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit:   50,
		Offset:  0,
		OrderBy: "day DESC",
	}
}
