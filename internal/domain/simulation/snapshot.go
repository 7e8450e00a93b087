package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
)

// SnapshotVersion is bumped whenever the snapshot layout changes incompatibly
const SnapshotVersion = 1

// Snapshot is the complete engine state. Restoring it yields an engine whose
// future behaviour, including random demand, is identical to the original.
type Snapshot struct {
	Version               int                `json:"version"`
	Scenario              Scenario           `json:"scenario"`
	Day                   int                `json:"day"`
	RemainingCapacity     int                `json:"remaining_capacity"`
	Inventory             []inventory.Record `json:"inventory"`
	ProductionOrders      []production.Data  `json:"production_orders"`
	NextProductionOrderID int                `json:"next_production_order_id"`
	PurchaseOrders        []purchasing.Data  `json:"purchase_orders"`
	NextPurchaseOrderID   int                `json:"next_purchase_order_id"`
	Transactions          []ledger.Data      `json:"transactions"`
	RandomState           []byte             `json:"random_state"`
	Events                []Event            `json:"events"`
}

// Snapshot captures the engine state for persistence
func (e *Engine) Snapshot() (*Snapshot, error) {
	st, err := e.capture()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:               SnapshotVersion,
		Scenario:              e.scenario,
		Day:                   st.day,
		RemainingCapacity:     st.remainingCapacity,
		Inventory:             st.inventory,
		ProductionOrders:      st.productionOrders,
		NextProductionOrderID: st.nextProductionOrderID,
		PurchaseOrders:        st.purchaseOrders,
		NextPurchaseOrderID:   st.nextPurchaseOrderID,
		Transactions:          st.transactions,
		RandomState:           st.rng,
		Events:                e.Events(0),
	}, nil
}

// Restore rebuilds an engine from a snapshot and verifies its invariants
func Restore(snap *Snapshot, opts ...Option) (*Engine, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	cat, err := snap.Scenario.Validate()
	if err != nil {
		return nil, fmt.Errorf("snapshot scenario: %w", err)
	}
	e := newEngine(snap.Scenario, cat, opts)
	err = e.apply(state{
		day:                   snap.Day,
		remainingCapacity:     snap.RemainingCapacity,
		inventory:             snap.Inventory,
		productionOrders:      snap.ProductionOrders,
		nextProductionOrderID: snap.NextProductionOrderID,
		purchaseOrders:        snap.PurchaseOrders,
		nextPurchaseOrderID:   snap.NextPurchaseOrderID,
		transactions:          snap.Transactions,
		rng:                   snap.RandomState,
	})
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	if err := e.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	e.events = append([]Event(nil), snap.Events...)
	return e, nil
}

// MarshalSnapshot encodes a snapshot as JSON
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a JSON snapshot
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
