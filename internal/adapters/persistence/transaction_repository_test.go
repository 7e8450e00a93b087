package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/test/helpers"
)

// postings builds a chained run of transactions starting from a 1000 balance
func postings(t *testing.T) []*ledger.Transaction {
	t.Helper()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	specs := []struct {
		day    int
		typ    ledger.TransactionType
		amount string
		ref    string
	}{
		{0, ledger.TransactionTypePurchase, "-100", "PO-1"},
		{1, ledger.TransactionTypeOperationalCost, "-50", ""},
		{2, ledger.TransactionTypeSale, "400", "ORD-1"},
		{2, ledger.TransactionTypeOperationalCost, "-50", ""},
	}

	balance := decimal.NewFromInt(1000)
	out := make([]*ledger.Transaction, 0, len(specs))
	for _, s := range specs {
		tx, err := ledger.NewTransaction(s.day, at, s.typ, decimal.RequireFromString(s.amount), balance, s.ref, "test posting")
		require.NoError(t, err)
		balance = tx.BalanceAfter()
		out = append(out, tx)
	}
	return out
}

func TestTransactionRepository_AppendAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTransactionRepository(db)
	ctx := context.Background()
	txs := postings(t)

	// Act
	require.NoError(t, repo.Append(ctx, "alpha", txs[:2]))
	require.NoError(t, repo.Append(ctx, "alpha", txs[2:]))

	// Assert: default order is newest first, posting order within a day
	found, err := repo.FindBySimulation(ctx, "alpha", ledger.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, found, 4)
	assert.Equal(t, txs[3].ID(), found[0].ID())
	assert.Equal(t, txs[2].ID(), found[1].ID())
	assert.Equal(t, txs[0].ID(), found[3].ID())
	assert.True(t, found[1].Amount().Equal(decimal.NewFromInt(400)))
	assert.Equal(t, ledger.CategorySalesRevenue, found[1].Category())

	ascending, err := repo.FindBySimulation(ctx, "alpha", ledger.QueryOptions{OrderBy: "day ASC"})
	require.NoError(t, err)
	assert.Equal(t, txs[0].ID(), ascending[0].ID())
	assert.Equal(t, txs[3].ID(), ascending[3].ID())
}

func TestTransactionRepository_Filters(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTransactionRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, "alpha", postings(t)))

	from, to := 1, 2
	category := ledger.CategoryOperationalCosts
	count, err := repo.CountBySimulation(ctx, "alpha", ledger.QueryOptions{FromDay: &from, ToDay: &to, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sale := ledger.TransactionTypeSale
	sales, err := repo.FindBySimulation(ctx, "alpha", ledger.QueryOptions{TransactionType: &sale})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "ORD-1", sales[0].Reference())

	ref := "PO-1"
	byRef, err := repo.FindBySimulation(ctx, "alpha", ledger.QueryOptions{Reference: &ref})
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	assert.Equal(t, 0, byRef[0].Day())
}

func TestTransactionRepository_Pagination(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTransactionRepository(db)
	ctx := context.Background()
	txs := postings(t)
	require.NoError(t, repo.Append(ctx, "alpha", txs))

	page, err := repo.FindBySimulation(ctx, "alpha", ledger.QueryOptions{Limit: 2, Offset: 2, OrderBy: "day ASC"})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, txs[2].ID(), page[0].ID())
	assert.Equal(t, txs[3].ID(), page[1].ID())
}

func TestTransactionRepository_DeleteBySimulation(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTransactionRepository(db)
	ctx := context.Background()
	txs := postings(t)
	require.NoError(t, repo.Append(ctx, "alpha", txs))
	require.NoError(t, repo.Append(ctx, "beta", txs[:1]))

	require.NoError(t, repo.DeleteBySimulation(ctx, "alpha"))

	alpha, err := repo.CountBySimulation(ctx, "alpha", ledger.QueryOptions{})
	require.NoError(t, err)
	assert.Zero(t, alpha)
	beta, err := repo.CountBySimulation(ctx, "beta", ledger.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, beta)
}
