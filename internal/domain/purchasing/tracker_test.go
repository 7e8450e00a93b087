package purchasing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func newTracker(t *testing.T) (*purchasing.Tracker, *inventory.Ledger) {
	t.Helper()
	stock, err := inventory.NewLedger([]string{"mat-a", "mat-b"}, nil)
	require.NoError(t, err)
	return purchasing.NewTracker(stock), stock
}

func offering(material string, lead int) catalog.Offering {
	return catalog.Offering{MaterialID: material, UnitPrice: decimal.NewFromInt(2), UnitSize: 1, LeadTimeDays: lead}
}

func TestTracker_ArrivesExactlyOnExpectedDay(t *testing.T) {
	// Arrange
	tracker, stock := newTracker(t)
	po, err := tracker.Place(purchasing.PlaceRequest{ProviderID: "prov", Offering: offering("mat-a", 3), Quantity: 100, Day: 5})
	require.NoError(t, err)
	assert.Equal(t, 8, po.ExpectedArrivalDay())
	assert.True(t, po.TotalCost().Equal(decimal.NewFromInt(200)))

	// Act & Assert: days 6 and 7 see nothing
	for _, day := range []int{6, 7} {
		arrived, _, err := tracker.Advance(day, nil)
		require.NoError(t, err)
		assert.Empty(t, arrived)
	}
	rec, _ := stock.Record("mat-a")
	assert.Equal(t, 100, rec.OnOrder)

	arrived, _, err := tracker.Advance(8, nil)
	require.NoError(t, err)
	require.Len(t, arrived, 1)
	assert.Equal(t, purchasing.StatusArrived, arrived[0].Status())
	assert.Equal(t, 8, arrived[0].ArrivalDay())

	rec, _ = stock.Record("mat-a")
	assert.Equal(t, 100, rec.Physical)
	assert.Equal(t, 0, rec.OnOrder)

	// never received twice
	arrived, _, err = tracker.Advance(9, nil)
	require.NoError(t, err)
	assert.Empty(t, arrived)
}

func TestTracker_ArrivalsInAscendingIDOrder(t *testing.T) {
	tracker, _ := newTracker(t)
	_, err := tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-b", 1), Quantity: 1, Day: 0})
	require.NoError(t, err)
	_, err = tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 0), Quantity: 1, Day: 1})
	require.NoError(t, err)

	arrived, _, err := tracker.Advance(1, nil)

	require.NoError(t, err)
	require.Len(t, arrived, 2)
	assert.Equal(t, 1, arrived[0].ID())
	assert.Equal(t, 2, arrived[1].ID())
}

func TestTracker_DelayedOrderStaysPendingUntilAdmitted(t *testing.T) {
	tracker, stock := newTracker(t)
	_, err := tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 1), Quantity: 10, Day: 0})
	require.NoError(t, err)

	arrived, delayed, err := tracker.Advance(1, func(*purchasing.PurchaseOrder) bool { return false })
	require.NoError(t, err)
	assert.Empty(t, arrived)
	require.Len(t, delayed, 1)
	assert.True(t, delayed[0].IsPending())

	arrived, _, err = tracker.Advance(2, nil)
	require.NoError(t, err)
	require.Len(t, arrived, 1)
	rec, _ := stock.Record("mat-a")
	assert.Equal(t, 10, rec.Physical)
}

func TestTracker_EarmarkedAndScheduled(t *testing.T) {
	tracker, _ := newTracker(t)
	_, _ = tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 2), Quantity: 4, Day: 0, ProductionOrderID: 7})
	_, _ = tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 5), Quantity: 6, Day: 0, ProductionOrderID: 7})
	_, _ = tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 1), Quantity: 1, Day: 0})

	assert.Equal(t, map[string]int{"mat-a": 10}, tracker.EarmarkedFor(7))
	assert.Equal(t, 5, tracker.ScheduledArrivals("mat-a", 2))
	assert.Equal(t, 11, tracker.ScheduledArrivals("mat-a", 5))
}

func TestTracker_CancelOnlyPending(t *testing.T) {
	tracker, stock := newTracker(t)
	po, err := tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 0), Quantity: 3, Day: 0})
	require.NoError(t, err)

	_, err = tracker.Cancel(po.ID())
	require.NoError(t, err)
	rec, _ := stock.Record("mat-a")
	assert.Equal(t, 0, rec.OnOrder)

	_, err = tracker.Cancel(po.ID())
	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))
}

func TestTracker_RejectsNonPositiveQuantity(t *testing.T) {
	tracker, _ := newTracker(t)

	_, err := tracker.Place(purchasing.PlaceRequest{ProviderID: "p", Offering: offering("mat-a", 0), Quantity: 0})

	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.Equal(t, 1, tracker.NextID())
}
