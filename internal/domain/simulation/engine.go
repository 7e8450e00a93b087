// Package simulation is the factory simulation engine. It owns all mutable
// factory state and advances it in whole-day steps.
//
// The engine is synchronous and performs no I/O. Every operation either
// applies completely or leaves the state untouched, and emits events that are
// forwarded to an optional sink only after the operation commits.
package simulation

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/demand"
	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

type Engine struct {
	scenario Scenario
	catalog  *catalog.Catalog
	resolver *catalog.BOMResolver

	stock     *inventory.Ledger
	purchases *purchasing.Tracker
	orders    *production.Book
	finance   *ledger.FinancialLedger
	demand    *demand.Generator
	source    *rand.PCG

	day               int
	remainingCapacity int

	// eventDay stamps events; during a day advance it is the day being entered
	eventDay int
	events   []Event
	pending  []Event

	clock       shared.Clock
	sink        EventSink
	onSinkError func(error)
}

type Option func(*Engine)

// WithClock sets the clock used to timestamp events and transactions
func WithClock(c shared.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithEventSink forwards committed events to sink. Sink failures are passed to
// onError and never affect engine state.
func WithEventSink(sink EventSink, onError func(error)) Option {
	return func(e *Engine) {
		e.sink = sink
		e.onSinkError = onError
	}
}

// New initializes a fresh simulation at day 0
func New(s Scenario, opts ...Option) (*Engine, error) {
	cat, err := s.Validate()
	if err != nil {
		return nil, err
	}
	e := newEngine(s, cat, opts)

	e.stock, err = inventory.NewLedger(cat.ItemIDs(), s.InitialInventory)
	if err != nil {
		return nil, err
	}
	e.purchases = purchasing.NewTracker(e.stock)
	e.orders = production.NewBook()
	e.finance = ledger.NewFinancialLedger(s.Financial.InitialBalance, e.clock)
	e.source = demand.NewSource(s.Seed)
	if e.demand, err = demand.NewGenerator(s.Demand, rand.New(e.source)); err != nil {
		return nil, err
	}
	e.remainingCapacity = s.Capacity.DailyProduction

	e.emit(EventSimulationInitialized, fmt.Sprintf("simulation initialized with balance %s", s.Financial.InitialBalance.StringFixed(2)),
		map[string]string{
			"materials": strconv.Itoa(len(s.Materials)),
			"products":  strconv.Itoa(len(s.Products)),
			"providers": strconv.Itoa(len(s.Providers)),
		})
	e.commit()
	return e, nil
}

func newEngine(s Scenario, cat *catalog.Catalog, opts []Option) *Engine {
	e := &Engine{
		scenario: s,
		catalog:  cat,
		resolver: catalog.NewBOMResolver(cat),
		clock:    shared.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// state is the mutable part of the engine, captured before each operation
// so a failure can be rolled back
type state struct {
	day                   int
	remainingCapacity     int
	inventory             []inventory.Record
	productionOrders      []production.Data
	nextProductionOrderID int
	purchaseOrders        []purchasing.Data
	nextPurchaseOrderID   int
	transactions          []ledger.Data
	rng                   []byte
}

func (e *Engine) capture() (state, error) {
	rng, err := e.source.MarshalBinary()
	if err != nil {
		return state{}, err
	}
	return state{
		day:                   e.day,
		remainingCapacity:     e.remainingCapacity,
		inventory:             e.stock.Records(),
		productionOrders:      e.orders.Data(),
		nextProductionOrderID: e.orders.NextID(),
		purchaseOrders:        e.purchases.Data(),
		nextPurchaseOrderID:   e.purchases.NextID(),
		transactions:          e.finance.Data(),
		rng:                   rng,
	}, nil
}

func (e *Engine) apply(st state) error {
	stock, err := inventory.RestoreLedger(st.inventory)
	if err != nil {
		return err
	}
	purchases, err := purchasing.RestoreTracker(stock, st.purchaseOrders, st.nextPurchaseOrderID)
	if err != nil {
		return err
	}
	orders, err := production.RestoreBook(st.productionOrders, st.nextProductionOrderID)
	if err != nil {
		return err
	}
	finance, err := ledger.RestoreFinancialLedger(e.scenario.Financial.InitialBalance, st.transactions, e.clock)
	if err != nil {
		return err
	}
	if e.source == nil {
		e.source = &rand.PCG{}
	}
	if err := e.source.UnmarshalBinary(st.rng); err != nil {
		return fmt.Errorf("restore random source: %w", err)
	}
	if e.demand == nil {
		if e.demand, err = demand.NewGenerator(e.scenario.Demand, rand.New(e.source)); err != nil {
			return err
		}
	}
	e.stock, e.purchases, e.orders, e.finance = stock, purchases, orders, finance
	e.day = st.day
	e.eventDay = st.day
	e.remainingCapacity = st.remainingCapacity
	return nil
}

// mutate runs fn as one atomic operation: on error the state is rolled back
// and the events fn emitted are discarded; on success they are committed.
func (e *Engine) mutate(fn func() error) error {
	before, err := e.capture()
	if err != nil {
		return err
	}
	e.eventDay = e.day
	if err := fn(); err != nil {
		e.pending = nil
		if rbErr := e.apply(before); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	e.commit()
	return nil
}

func (e *Engine) emit(category EventCategory, message string, payload map[string]string) {
	e.pending = append(e.pending, Event{
		ID:        uuid.NewString(),
		Day:       e.eventDay,
		Category:  category,
		Message:   message,
		Payload:   payload,
		Timestamp: e.clock.Now(),
	})
}

func (e *Engine) commit() {
	if len(e.pending) == 0 {
		return
	}
	batch := e.pending
	e.pending = nil
	e.events = append(e.events, batch...)
	if e.sink == nil {
		return
	}
	out := make([]Event, len(batch))
	copy(out, batch)
	if err := e.sink.Publish(out); err != nil && e.onSinkError != nil {
		e.onSinkError(err)
	}
}

// CheckInvariants cross-checks the sub-components against each other
func (e *Engine) CheckInvariants() error {
	if err := e.stock.CheckInvariants(); err != nil {
		return err
	}

	committed := make(map[string]int)
	for _, o := range e.orders.All(production.StatusAccepted, production.StatusCompleted) {
		switch {
		case o.Status() == production.StatusCompleted || o.FromStock():
			committed[o.ProductID()] += o.Quantity()
		default:
			for id, qty := range o.Committed() {
				committed[id] += qty
			}
		}
	}
	onOrder := make(map[string]int)
	for _, po := range e.purchases.Pending() {
		onOrder[po.MaterialID()] += po.Quantity()
	}
	for _, rec := range e.stock.Records() {
		if rec.Committed != committed[rec.ItemID] {
			return shared.NewInvariantViolationError("committed==sum(order reservations)",
				fmt.Sprintf("%s committed %d but orders hold %d", rec.ItemID, rec.Committed, committed[rec.ItemID]))
		}
		if rec.OnOrder != onOrder[rec.ItemID] {
			return shared.NewInvariantViolationError("on_order==sum(pending purchases)",
				fmt.Sprintf("%s on order %d but pending purchases total %d", rec.ItemID, rec.OnOrder, onOrder[rec.ItemID]))
		}
	}

	if e.stock.TotalPhysical() > e.scenario.Capacity.Storage {
		return shared.NewInvariantViolationError("storage",
			fmt.Sprintf("%d units stored, capacity %d", e.stock.TotalPhysical(), e.scenario.Capacity.Storage))
	}
	if e.remainingCapacity < 0 || e.remainingCapacity > e.scenario.Capacity.DailyProduction {
		return shared.NewInvariantViolationError("0<=remaining capacity<=daily",
			fmt.Sprintf("remaining capacity %d", e.remainingCapacity))
	}
	return nil
}
