package simulation_test

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

func busyScenario(s *simulation.Scenario) {
	s.Demand.OrderProbability = 0.8
	s.Demand.MinOrdersPerDay = 1
	s.Demand.MaxOrdersPerDay = 3
	s.AutoFulfill = true
}

// work drives the factory the way an operator would: accept, buy, start
func work(e *simulation.Engine) {
	for _, o := range e.Orders(production.StatusPending) {
		_, _ = e.AcceptOrder(o.ID)
	}
	for _, o := range e.Orders(production.StatusAccepted) {
		if o.FromStock {
			_, _ = e.FulfillOrder(o.ID)
			continue
		}
		_, _ = e.OrderMissingMaterials(o.ID)
		_, _ = e.StartProduction(o.ID)
	}
}

func txShape(txs []ledger.Data) [][3]string {
	out := make([][3]string, len(txs))
	for i, tx := range txs {
		out[i] = [3]string{tx.TransactionType.String(), tx.Amount.String(), tx.Reference}
	}
	return out
}

func TestSnapshot_RestoreBehavesIdentically(t *testing.T) {
	// Arrange
	original := newEngine(t, busyScenario)
	for i := 0; i < 6; i++ {
		work(original)
		advance(t, original, 1)
	}
	data, err := simulation.MarshalSnapshot(mustSnapshot(t, original))
	require.NoError(t, err)

	// Act
	decoded, err := simulation.UnmarshalSnapshot(data)
	require.NoError(t, err)
	restored, err := simulation.Restore(decoded, simulation.WithClock(shared.NewMockClock(time.Time{})))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, original.Day(), restored.Day())
	assert.Equal(t, original.Events(0), restored.Events(0))
	for i := 0; i < 10; i++ {
		work(original)
		work(restored)
		advance(t, original, 1)
		advance(t, restored, 1)
	}
	assert.JSONEq(t, toJSON(t, original.Orders()), toJSON(t, restored.Orders()))
	assert.JSONEq(t, toJSON(t, original.PurchaseOrders()), toJSON(t, restored.PurchaseOrders()))
	assert.Equal(t, original.InventoryStatus(), restored.InventoryStatus())
	assert.True(t, original.Balance().Equal(restored.Balance()))
	assert.Equal(t, txShape(original.Transactions()), txShape(restored.Transactions()))
	assert.JSONEq(t, toJSON(t, original.Status()), toJSON(t, restored.Status()))
}

func TestRestore_RejectsInconsistentSnapshot(t *testing.T) {
	e := newEngine(t, nil)
	acceptedOrder(t, e, "prod-chair", 1)
	snap := mustSnapshot(t, e)
	for i := range snap.Inventory {
		if snap.Inventory[i].ItemID == "mat-wood" {
			snap.Inventory[i].Committed = 0
		}
	}

	_, err := simulation.Restore(snap)

	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))
}

func TestRestore_RejectsUnknownVersion(t *testing.T) {
	snap := mustSnapshot(t, newEngine(t, nil))
	snap.Version = 99

	_, err := simulation.Restore(snap)

	assert.Error(t, err)
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func mustSnapshot(t *testing.T, e *simulation.Engine) *simulation.Snapshot {
	t.Helper()
	snap, err := e.Snapshot()
	require.NoError(t, err)
	return snap
}

// Random operation sequences must never break the cross-component invariants,
// and a failed operation must leave the state byte-for-byte unchanged.
func TestEngine_RandomOperationsKeepInvariants(t *testing.T) {
	e := newEngine(t, func(s *simulation.Scenario) {
		busyScenario(s)
		s.AutoFulfill = false
		s.Financial.InitialBalance = dec(800)
		s.Capacity.Storage = 400
	})
	rng := rand.New(rand.NewPCG(1, 2))
	products := []string{"prod-chair", "prod-table"}
	materials := []string{"mat-screw", "mat-wood"}
	providers := []string{"prov-bulk", "prov-fast"}

	for step := 0; step < 400; step++ {
		before := snapshotJSON(t, e)
		orderID := 1 + rng.IntN(max(len(e.Orders()), 1))
		var err error
		switch rng.IntN(8) {
		case 0:
			_, err = e.CreateOrder(products[rng.IntN(2)], 1+rng.IntN(6))
		case 1:
			_, err = e.AcceptOrder(orderID)
		case 2:
			_, err = e.OrderMissingMaterials(orderID)
		case 3:
			_, err = e.StartProduction(orderID)
		case 4:
			_, err = e.FulfillOrder(orderID)
		case 5:
			_, err = e.PlacePurchaseOrder(materials[rng.IntN(2)], providers[rng.IntN(2)], 1+rng.IntN(60))
		case 6:
			_, err = e.CancelPurchaseOrder(1 + rng.IntN(max(len(e.PurchaseOrders()), 1)))
		default:
			_, err = e.AdvanceDay()
		}

		require.NoError(t, e.CheckInvariants(), "step %d", step)
		if err != nil {
			assert.Equal(t, before, snapshotJSON(t, e), "step %d: failed operation mutated state: %v", step, err)
		}
		sum := e.Scenario().Financial.InitialBalance
		for _, tx := range e.Transactions() {
			sum = sum.Add(tx.Amount)
		}
		require.True(t, sum.Equal(e.Balance()), "step %d", step)
	}
}
