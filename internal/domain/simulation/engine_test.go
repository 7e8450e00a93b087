package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

func snapshotJSON(t *testing.T, e *simulation.Engine) string {
	t.Helper()
	snap, err := e.Snapshot()
	require.NoError(t, err)
	data, err := simulation.MarshalSnapshot(snap)
	require.NoError(t, err)
	return string(data)
}

func TestNew_RejectsInvalidScenario(t *testing.T) {
	s := chairScenario()
	delete(s.Financial.SellingPrices, "prod-table")

	_, err := simulation.New(s)

	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestStartProduction_DailyCapacity(t *testing.T) {
	// Arrange
	e := newEngine(t, nil)
	first := acceptedOrder(t, e, "prod-chair", 6)
	second := acceptedOrder(t, e, "prod-chair", 5)

	// Act
	_, err := e.StartProduction(first)
	require.NoError(t, err)
	_, err = e.StartProduction(second)

	// Assert
	var capErr *shared.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 5, capErr.Requested)
	assert.Equal(t, 4, capErr.Remaining)
	assert.Equal(t, 4, e.RemainingCapacity())
	o, _ := e.Order(second)
	assert.Equal(t, production.StatusAccepted, o.Status)

	advance(t, e, 1)
	assert.Equal(t, 10, e.RemainingCapacity())
	_, err = e.StartProduction(second)
	require.NoError(t, err)
	assert.Equal(t, 5, e.RemainingCapacity())
}

func TestStartProduction_ConsumesCommittedMaterials(t *testing.T) {
	e := newEngine(t, nil)
	id := acceptedOrder(t, e, "prod-chair", 3)

	_, err := e.StartProduction(id)
	require.NoError(t, err)

	wood, _ := e.InventoryItem("mat-wood")
	screws, _ := e.InventoryItem("mat-screw")
	assert.Equal(t, 94, wood.Physical)
	assert.Equal(t, 0, wood.Committed)
	assert.Equal(t, 188, screws.Physical)
	require.NoError(t, e.CheckInvariants())
}

func TestStartProduction_CapacityCheckedBeforeMaterials(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.InitialInventory = nil })
	id := acceptedOrder(t, e, "prod-chair", 11)

	_, err := e.StartProduction(id)

	assert.True(t, shared.IsKind(err, shared.KindCapacityExceeded))
}

func TestStartProduction_FromStockOrderIsRejected(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.InitialInventory["prod-chair"] = 3 })
	id := acceptedOrder(t, e, "prod-chair", 2)

	_, err := e.StartProduction(id)

	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))
}

func TestPurchaseOrder_ArrivesOnExpectedDayOnly(t *testing.T) {
	// Arrange
	e := newEngine(t, nil)
	advance(t, e, 5)

	// Act
	po, err := e.PlacePurchaseOrder("mat-wood", "prov-bulk", 100)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 8, po.ExpectedArrival)
	for day := 6; day <= 7; day++ {
		advance(t, e, 1)
		wood, _ := e.InventoryItem("mat-wood")
		assert.Equal(t, 100, wood.Physical, "day %d", day)
		assert.Equal(t, 100, wood.OnOrder, "day %d", day)
	}
	advance(t, e, 1)
	wood, _ := e.InventoryItem("mat-wood")
	assert.Equal(t, 200, wood.Physical)
	assert.Equal(t, 0, wood.OnOrder)
	assert.Empty(t, e.PendingPurchaseOrders())
	arrived := e.PurchaseOrders(purchasing.StatusArrived)
	require.Len(t, arrived, 1)
	assert.Equal(t, 8, arrived[0].ArrivalDay)
}

func TestPlacePurchaseOrder_InsufficientFunds(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.Financial.InitialBalance = dec(50) })
	before := snapshotJSON(t, e)

	_, err := e.PlacePurchaseOrder("mat-wood", "prov-fast", 12)

	var funds *shared.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.True(t, funds.Required.Equal(dec(60)))
	assert.True(t, e.Balance().Equal(dec(50)))
	assert.Empty(t, e.PurchaseOrders())
	assert.Equal(t, before, snapshotJSON(t, e))
}

func TestPlacePurchaseOrder_Validation(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.Capacity.Storage = 500 })

	_, err := e.PlacePurchaseOrder("mat-wood", "prov-fast", 0)
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = e.PlacePurchaseOrder("mat-glue", "prov-fast", 1)
	assert.True(t, shared.IsKind(err, shared.KindNotFound))

	_, err = e.PlacePurchaseOrder("mat-screw", "prov-bulk", 1)
	assert.True(t, shared.IsKind(err, shared.KindNotFound))

	_, err = e.PlacePurchaseOrder("mat-wood", "prov-fast", 501)
	assert.True(t, shared.IsKind(err, shared.KindCapacityExceeded))
}

func TestFulfillOrder_FromStockPostsSale(t *testing.T) {
	// Arrange
	e := newEngine(t, func(s *simulation.Scenario) { s.InitialInventory["prod-chair"] = 3 })
	id := acceptedOrder(t, e, "prod-chair", 3)
	o, _ := e.Order(id)
	require.True(t, o.FromStock)

	// Act
	fulfilled, err := e.FulfillOrder(id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, production.StatusFulfilled, fulfilled.Status)
	assert.True(t, e.Balance().Equal(dec(10060)))
	txs := e.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "SALE", string(txs[0].TransactionType))
	assert.True(t, txs[0].Amount.Equal(dec(60)))
	chairs, _ := e.InventoryItem("prod-chair")
	assert.Equal(t, 0, chairs.Physical)
	assert.Equal(t, 0, chairs.Committed)
}

func TestFulfillOrder_AcceptedWithoutStockFails(t *testing.T) {
	e := newEngine(t, nil)
	id := acceptedOrder(t, e, "prod-chair", 2)
	before := snapshotJSON(t, e)

	_, err := e.FulfillOrder(id)

	assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
	assert.Equal(t, before, snapshotJSON(t, e))
}

func TestFulfillOrder_PendingIsInvalid(t *testing.T) {
	e := newEngine(t, nil)
	o, err := e.CreateOrder("prod-chair", 1)
	require.NoError(t, err)

	_, err = e.FulfillOrder(o.ID)

	assert.True(t, shared.IsKind(err, shared.KindInvalidStateTransition))
}

func TestAcceptOrder_PartialReservationAndPurchase(t *testing.T) {
	// Arrange
	e := newEngine(t, func(s *simulation.Scenario) { s.InitialInventory["mat-wood"] = 5 })
	id := acceptedOrder(t, e, "prod-chair", 5)

	o, _ := e.Order(id)
	assert.Equal(t, map[string]int{"mat-wood": 5, "mat-screw": 20}, o.Committed)
	_, err := e.StartProduction(id)
	var shortage *shared.MaterialsShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, map[string]int{"mat-wood": 5}, shortage.Shortfall)

	// Act
	outcome, err := e.OrderMissingMaterials(id)

	// Assert
	require.NoError(t, err)
	require.Len(t, outcome.Placed, 1)
	po := outcome.Placed[0]
	assert.Equal(t, "prov-bulk", po.ProviderID)
	assert.Equal(t, 10, po.Quantity)
	assert.Equal(t, id, po.ProductionOrderID)
	assert.True(t, e.Balance().Equal(dec(9960)))

	again, err := e.OrderMissingMaterials(id)
	require.NoError(t, err)
	assert.Empty(t, again.Placed)

	advance(t, e, 3)
	o, _ = e.Order(id)
	assert.Empty(t, shortfallOf(o))
	_, err = e.StartProduction(id)
	require.NoError(t, err)
	wood, _ := e.InventoryItem("mat-wood")
	assert.Equal(t, 5, wood.Physical)
	assert.Equal(t, 0, wood.Committed)
}

func shortfallOf(o production.Data) map[string]int {
	return production.ReconstructOrder(o).Shortfall()
}

func TestOrderMissingMaterials_SkipsUnaffordable(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) {
		s.InitialInventory = nil
		s.Financial.InitialBalance = dec(30)
	}, simulation.WithEventSink(&recordingSink{}, nil))
	o, err := e.CreateOrder("prod-chair", 2)
	require.NoError(t, err)

	outcome, err := e.OrderMissingMaterials(o.ID)

	require.NoError(t, err)
	// screws cost 4, wood needs a 10-lot at 40 or 4 units at 20
	require.Len(t, outcome.Placed, 2)
	assert.Equal(t, "mat-screw", outcome.Placed[0].MaterialID)
	assert.Equal(t, "prov-fast", outcome.Placed[1].ProviderID)
	assert.Empty(t, outcome.Skipped)
	assert.True(t, e.Balance().Equal(dec(6)))

	o2, err := e.CreateOrder("prod-table", 1)
	require.NoError(t, err)
	outcome, err = e.OrderMissingMaterials(o2.ID)
	require.NoError(t, err)
	require.Len(t, outcome.Placed, 1)
	assert.Equal(t, "mat-screw", outcome.Placed[0].MaterialID)
	assert.Equal(t, map[string]int{"mat-wood": 4}, outcome.Skipped)
	assert.True(t, e.Balance().Equal(dec(2)))
	skipped := e.Events(0, simulation.EventPurchaseSkippedFunds)
	assert.Len(t, skipped, 1)
}

func TestAdvanceDay_CompletesAfterProductionDays(t *testing.T) {
	e := newEngine(t, nil)
	id := acceptedOrder(t, e, "prod-chair", 2)
	_, err := e.StartProduction(id)
	require.NoError(t, err)

	summary, err := e.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CompletedOrders)
	assert.True(t, summary.OperationalCost.Equal(dec(60)))

	summary, err = e.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompletedOrders)
	assert.True(t, summary.OperationalCost.Equal(dec(50)))

	o, _ := e.Order(id)
	assert.Equal(t, production.StatusCompleted, o.Status)
	assert.Equal(t, 2, o.CompletedDay)
	chairs, _ := e.InventoryItem("prod-chair")
	assert.Equal(t, 2, chairs.Physical)
	assert.Equal(t, 2, chairs.Committed)

	_, err = e.FulfillOrder(id)
	require.NoError(t, err)
	assert.True(t, e.Balance().Equal(dec(10000-60-50+40)))
}

func TestAdvanceDay_AutoFulfillsCompletedOrders(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.AutoFulfill = true })
	id := acceptedOrder(t, e, "prod-chair", 2)
	_, err := e.StartProduction(id)
	require.NoError(t, err)

	advance(t, e, 1)
	summary, err := e.AdvanceDay()

	require.NoError(t, err)
	assert.Equal(t, 1, summary.FulfilledOrders)
	assert.True(t, summary.Revenue.Equal(dec(40)))
	o, _ := e.Order(id)
	assert.Equal(t, production.StatusFulfilled, o.Status)
	assert.Equal(t, 2, o.FulfilledDay)
	assert.True(t, e.Balance().Equal(dec(9930)))
}

func TestAdvanceDay_StorageDelaysArrival(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) {
		s.Capacity.Storage = 110
		s.InitialInventory = map[string]int{"mat-wood": 90, "prod-chair": 10}
	})
	_, err := e.PlacePurchaseOrder("mat-screw", "prov-fast", 20)
	require.NoError(t, err)

	summary, err := e.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DelayedPurchases)
	assert.Len(t, e.PendingPurchaseOrders(), 1)
	assert.Len(t, e.Events(0, simulation.EventArrivalDelayed), 1)

	id := acceptedOrder(t, e, "prod-chair", 10)
	_, err = e.FulfillOrder(id)
	require.NoError(t, err)

	summary, err = e.AdvanceDay()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ArrivedPurchases)
	screws, _ := e.InventoryItem("mat-screw")
	assert.Equal(t, 20, screws.Physical)
	assert.Equal(t, 110, e.Status().TotalUnits)
}

func TestAdvanceDay_AllocatesArrivalsFIFO(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) { s.InitialInventory = map[string]int{"mat-screw": 100} })
	older := acceptedOrder(t, e, "prod-chair", 3)
	newer := acceptedOrder(t, e, "prod-chair", 3)
	_, err := e.PlacePurchaseOrder("mat-wood", "prov-fast", 8)
	require.NoError(t, err)

	advance(t, e, 1)

	o1, _ := e.Order(older)
	o2, _ := e.Order(newer)
	assert.Equal(t, 6, o1.Committed["mat-wood"])
	assert.Equal(t, 2, o2.Committed["mat-wood"])
	assert.Len(t, e.Events(0, simulation.EventMaterialsAllocated), 2)
	require.NoError(t, e.CheckInvariants())
}

func TestAdvanceDay_DemandIsReproducible(t *testing.T) {
	withDemand := func(s *simulation.Scenario) {
		s.Demand.OrderProbability = 0.7
		s.Demand.MinOrdersPerDay = 0
		s.Demand.MaxOrdersPerDay = 3
	}
	a := newEngine(t, withDemand)
	b := newEngine(t, withDemand)

	advance(t, a, 15)
	advance(t, b, 15)

	assert.Equal(t, a.Orders(), b.Orders())
	for _, o := range a.Orders() {
		assert.Equal(t, production.SourceDemand, o.Source)
		assert.Equal(t, production.StatusPending, o.Status)
	}
}

func TestOperations_EmitEventsOnlyOnSuccess(t *testing.T) {
	sink := &recordingSink{}
	e := newEngine(t, func(s *simulation.Scenario) { s.Financial.InitialBalance = dec(10) }, simulation.WithEventSink(sink, nil))
	require.Len(t, sink.all(), 1)

	_, err := e.PlacePurchaseOrder("mat-wood", "prov-fast", 100)
	require.Error(t, err)
	assert.Len(t, sink.all(), 1)
	assert.Len(t, e.Events(0), 1)

	_, err = e.PlacePurchaseOrder("mat-screw", "prov-fast", 4)
	require.NoError(t, err)
	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, simulation.EventPurchaseOrderPlaced, events[1].Category)
	assert.Equal(t, "4", events[1].Payload["quantity"])
}

func TestSinkFailureDoesNotAffectState(t *testing.T) {
	sink := &recordingSink{fail: true}
	var sinkErrs []error
	e := newEngine(t, nil, simulation.WithEventSink(sink, func(err error) { sinkErrs = append(sinkErrs, err) }))

	o, err := e.CreateOrder("prod-chair", 1)

	require.NoError(t, err)
	assert.Equal(t, 1, o.ID)
	assert.Len(t, sinkErrs, 2)
	assert.Len(t, e.Events(0), 2)
}

func TestItemForecast(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.PlacePurchaseOrder("mat-wood", "prov-bulk", 30)
	require.NoError(t, err)
	id := acceptedOrder(t, e, "prod-chair", 1)

	points, err := e.ItemForecast("mat-wood", 4)

	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 98, points[0].Available)
	assert.Equal(t, 98, points[1].Available)
	assert.Equal(t, 128, points[2].Available)
	assert.Equal(t, 130, points[3].Physical)

	_, err = e.StartProduction(id)
	require.NoError(t, err)
	chairs, err := e.ItemForecast("prod-chair", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, chairs[0].Physical)
	assert.Equal(t, 1, chairs[1].Physical)
	assert.Equal(t, 0, chairs[1].Available)

	_, err = e.ItemForecast("ghost", 1)
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestItemForecast_ArrivalsCoverShortfallFirst(t *testing.T) {
	e := newEngine(t, nil)
	// 60 chairs need 120 wood: 100 committed, 20 short
	_ = acceptedOrder(t, e, "prod-chair", 60)
	_, err := e.PlacePurchaseOrder("mat-wood", "prov-bulk", 30)
	require.NoError(t, err)

	points, err := e.ItemForecast("mat-wood", 3)

	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 0, points[0].Available)
	assert.Equal(t, 100, points[1].Physical)
	assert.Equal(t, 130, points[2].Physical)
	assert.Equal(t, 10, points[2].Available)

	advance(t, e, 3)
	inv := e.InventoryStatus()
	for _, rec := range inv {
		if rec.ItemID == "mat-wood" {
			assert.Equal(t, points[2].Available, rec.Available)
			assert.Equal(t, points[2].Physical, rec.Physical)
		}
	}
}

func TestStatus(t *testing.T) {
	e := newEngine(t, nil)
	_ = acceptedOrder(t, e, "prod-chair", 1)
	_, err := e.CreateOrder("prod-table", 1)
	require.NoError(t, err)

	st := e.Status()

	assert.Equal(t, 300, st.TotalUnits)
	assert.InDelta(t, 3.0, st.StorageUtilization, 0.0001)
	assert.Equal(t, 1, st.OrdersByStatus[production.StatusAccepted])
	assert.Equal(t, 1, st.OrdersByStatus[production.StatusPending])
	assert.Equal(t, 0, st.OrdersByStatus[production.StatusFulfilled])
}
