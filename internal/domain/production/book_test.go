package production_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func TestBook_FullLifecycle(t *testing.T) {
	// Arrange
	book := production.NewBook()
	order, err := book.Create("prod-x", 2, 0, map[string]int{"mat-a": 4}, production.SourceManual)
	require.NoError(t, err)

	// Act
	_, err = book.Accept(order.ID(), false, map[string]int{"mat-a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mat-a": 3}, order.Shortfall())

	require.NoError(t, book.Commit(order.ID(), "mat-a", 3))
	assert.False(t, order.HasShortfall())

	_, err = book.Start(order.ID(), 1)
	require.NoError(t, err)
	_, err = book.Tick(order.ID())
	require.NoError(t, err)
	_, err = book.Complete(order.ID(), 2)
	require.NoError(t, err)
	_, err = book.Fulfill(order.ID(), 2, decimal.NewFromInt(40))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, production.StatusFulfilled, order.Status())
	assert.Equal(t, 1, order.DaysInProduction())
	assert.True(t, order.Revenue().Equal(decimal.NewFromInt(40)))
}

func TestBook_StartWithShortfallFails(t *testing.T) {
	book := production.NewBook()
	order, _ := book.Create("prod-x", 1, 0, map[string]int{"mat-a": 2}, production.SourceManual)
	_, err := book.Accept(order.ID(), false, nil)
	require.NoError(t, err)

	_, err = book.Start(order.ID(), 0)

	var shortage *shared.MaterialsShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, map[string]int{"mat-a": 2}, shortage.Shortfall)
	assert.Equal(t, production.StatusAccepted, order.Status())
}

func TestBook_FromStockOrderCannotStart(t *testing.T) {
	book := production.NewBook()
	order, _ := book.Create("prod-x", 1, 0, map[string]int{"mat-a": 2}, production.SourceDemand)
	_, err := book.Accept(order.ID(), true, nil)
	require.NoError(t, err)

	_, err = book.Start(order.ID(), 0)

	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))
	assert.Empty(t, order.Shortfall())
}

func TestBook_RejectsIllegalTransitions(t *testing.T) {
	book := production.NewBook()
	order, _ := book.Create("prod-x", 1, 0, nil, production.SourceManual)

	_, err := book.Complete(order.ID(), 0)
	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))

	_, err = book.Fulfill(order.ID(), 0, decimal.Zero)
	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))

	_, err = book.Accept(order.ID(), false, nil)
	require.NoError(t, err)
	_, err = book.Accept(order.ID(), false, nil)
	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))

	_, err = book.Accept(99, false, nil)
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestBook_CommitCannotExceedRequirement(t *testing.T) {
	book := production.NewBook()
	order, _ := book.Create("prod-x", 1, 0, map[string]int{"mat-a": 2}, production.SourceManual)
	_, _ = book.Accept(order.ID(), false, nil)

	err := book.Commit(order.ID(), "mat-a", 3)

	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))
}

func TestBook_AllIsFIFO(t *testing.T) {
	book := production.NewBook()
	_, _ = book.Create("prod-x", 1, 2, nil, production.SourceManual)
	_, _ = book.Create("prod-x", 1, 1, nil, production.SourceManual)
	_, _ = book.Create("prod-x", 1, 1, nil, production.SourceManual)

	all := book.All()

	require.Len(t, all, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{all[0].ID(), all[1].ID(), all[2].ID()})
}

func TestRestoreBook_KeepsIDSequence(t *testing.T) {
	book := production.NewBook()
	o, _ := book.Create("prod-x", 3, 0, map[string]int{"mat-a": 3}, production.SourceManual)
	_, _ = book.Accept(o.ID(), false, map[string]int{"mat-a": 3})

	restored, err := production.RestoreBook(book.Data(), book.NextID())
	require.NoError(t, err)

	again, err := restored.Get(o.ID())
	require.NoError(t, err)
	assert.Equal(t, o.Data(), again.Data())
	next, _ := restored.Create("prod-x", 1, 0, nil, production.SourceManual)
	assert.Equal(t, 2, next.ID())
}
