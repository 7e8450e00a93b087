package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func (e *Engine) Day() int                    { return e.day }
func (e *Engine) RemainingCapacity() int      { return e.remainingCapacity }
func (e *Engine) Catalog() *catalog.Catalog   { return e.catalog }
func (e *Engine) Scenario() Scenario          { return e.scenario }
func (e *Engine) Balance() decimal.Decimal    { return e.finance.Balance() }
func (e *Engine) Summary() ledger.Summary     { return e.finance.Summary() }
func (e *Engine) Transactions() []ledger.Data { return e.finance.Data() }

// Status is a one-screen overview of the factory
type Status struct {
	Day                   int                       `json:"day"`
	Balance               decimal.Decimal           `json:"balance"`
	TotalUnits            int                       `json:"total_units"`
	StorageCapacity       int                       `json:"storage_capacity"`
	StorageUtilization    float64                   `json:"storage_utilization_pct"`
	DailyCapacity         int                       `json:"daily_capacity"`
	RemainingCapacity     int                       `json:"remaining_capacity"`
	UnitsInProgress       int                       `json:"units_in_progress"`
	OrdersByStatus        map[production.Status]int `json:"orders_by_status"`
	PendingPurchaseOrders int                       `json:"pending_purchase_orders"`
}

func (e *Engine) Status() Status {
	total := e.stock.TotalPhysical()
	storage := e.scenario.Capacity.Storage
	return Status{
		Day:                   e.day,
		Balance:               e.finance.Balance(),
		TotalUnits:            total,
		StorageCapacity:       storage,
		StorageUtilization:    float64(total) * 100 / float64(storage),
		DailyCapacity:         e.scenario.Capacity.DailyProduction,
		RemainingCapacity:     e.remainingCapacity,
		UnitsInProgress:       e.orders.UnitsInProgress(),
		OrdersByStatus:        e.orders.CountByStatus(),
		PendingPurchaseOrders: len(e.purchases.Pending()),
	}
}

// InventoryItem is a stock record with its catalogue details
type InventoryItem struct {
	inventory.Record
	Name               string           `json:"name"`
	Kind               catalog.ItemKind `json:"kind"`
	Available          int              `json:"available"`
	ProjectedAvailable int              `json:"projected_available"`
}

// InventoryStatus lists every item's stock position by item id
func (e *Engine) InventoryStatus() []InventoryItem {
	records := e.stock.Records()
	out := make([]InventoryItem, 0, len(records))
	for _, r := range records {
		out = append(out, e.inventoryItem(r))
	}
	return out
}

// InventoryItem returns one item's stock position
func (e *Engine) InventoryItem(itemID string) (InventoryItem, error) {
	r, err := e.stock.Record(itemID)
	if err != nil {
		return InventoryItem{}, err
	}
	return e.inventoryItem(r), nil
}

func (e *Engine) inventoryItem(r inventory.Record) InventoryItem {
	item := InventoryItem{Record: r, Available: r.Available(), ProjectedAvailable: r.ProjectedAvailable()}
	item.Kind, _ = e.catalog.Kind(r.ItemID)
	if item.Kind == catalog.ItemKindMaterial {
		m, _ := e.catalog.Material(r.ItemID)
		item.Name = m.Name
	} else {
		p, _ := e.catalog.Product(r.ItemID)
		item.Name = p.Name
	}
	return item
}

// Orders returns production orders in FIFO order, optionally filtered by status
func (e *Engine) Orders(statuses ...production.Status) []production.Data {
	all := e.orders.All(statuses...)
	out := make([]production.Data, len(all))
	for i, o := range all {
		out[i] = o.Data()
	}
	return out
}

func (e *Engine) Order(id int) (production.Data, error) {
	o, err := e.orders.Get(id)
	if err != nil {
		return production.Data{}, err
	}
	return o.Data(), nil
}

// PurchaseOrders returns purchase orders by id, optionally filtered by status
func (e *Engine) PurchaseOrders(statuses ...purchasing.Status) []purchasing.Data {
	all := e.purchases.All(statuses...)
	out := make([]purchasing.Data, len(all))
	for i, po := range all {
		out[i] = po.Data()
	}
	return out
}

// PendingPurchaseOrders is shorthand for PurchaseOrders(StatusPending)
func (e *Engine) PendingPurchaseOrders() []purchasing.Data {
	return e.PurchaseOrders(purchasing.StatusPending)
}

// FinancialHistory returns per-day performance from day 0 to today
func (e *Engine) FinancialHistory() []ledger.DailyPerformance {
	return e.finance.History(e.day)
}

func (e *Engine) FinancialForecast(days int) ([]ledger.ForecastPoint, error) {
	return e.finance.Forecast(days, e.day)
}

func (e *Engine) ProfitLoss() map[ledger.Category]decimal.Decimal {
	return e.finance.ProfitLoss()
}

// ItemForecastPoint projects an item's stock k days ahead
type ItemForecastPoint struct {
	DayOffset int `json:"day_offset"`
	Day       int `json:"day"`
	Physical  int `json:"physical"`
	Available int `json:"available"`
}

// ItemForecast projects an item's stock from what is already scheduled:
// pending purchase arrivals for materials and in-progress completions for
// products. Material that becomes available is first allocated to the
// outstanding shortfall of accepted orders, so it raises physical stock
// but only the remainder is available. Completed output is reserved for its
// order, so it raises physical stock only while it is retained (auto-fulfil
// off) and never raises available stock. Storage delays and new demand are ignored.
func (e *Engine) ItemForecast(itemID string, days int) ([]ItemForecastPoint, error) {
	if days < 0 {
		return nil, shared.NewValidationError("days", "cannot be negative")
	}
	kind, ok := e.catalog.Kind(itemID)
	if !ok {
		return nil, shared.NewNotFoundError("item", itemID)
	}
	rec, err := e.stock.Record(itemID)
	if err != nil {
		return nil, err
	}

	shortfall := 0
	if kind == catalog.ItemKindMaterial {
		shortfall = e.outstandingShortfall(itemID)
	}

	points := make([]ItemForecastPoint, 0, days)
	for k := 1; k <= days; k++ {
		target := e.day + k
		physical, available := rec.Physical, rec.Available()
		switch kind {
		case catalog.ItemKindMaterial:
			arriving := e.purchases.ScheduledArrivals(itemID, target)
			physical += arriving
			available = max(available+arriving-shortfall, 0)
		case catalog.ItemKindProduct:
			if !e.scenario.AutoFulfill {
				physical += e.completionsBy(itemID, target)
			}
		}
		points = append(points, ItemForecastPoint{DayOffset: k, Day: target, Physical: physical, Available: available})
	}
	return points, nil
}

// outstandingShortfall sums what accepted orders still miss of a material
func (e *Engine) outstandingShortfall(materialID string) int {
	total := 0
	for _, o := range e.orders.All(production.StatusAccepted) {
		total += o.Shortfall()[materialID]
	}
	return total
}

func (e *Engine) completionsBy(productID string, day int) int {
	p, err := e.catalog.Product(productID)
	if err != nil {
		return 0
	}
	total := 0
	for _, o := range e.orders.All(production.StatusInProgress) {
		if o.ProductID() != productID {
			continue
		}
		remaining := max(p.ProductionDays-o.DaysInProduction(), 1)
		if e.day+remaining <= day {
			total += o.Quantity()
		}
	}
	return total
}

// Events returns the newest limit events in log order, optionally restricted to
// some categories. A limit <= 0 returns everything.
func (e *Engine) Events(limit int, categories ...EventCategory) []Event {
	var filtered []Event
	if len(categories) == 0 {
		filtered = e.events
	} else {
		want := make(map[EventCategory]bool, len(categories))
		for _, c := range categories {
			want[c] = true
		}
		for _, ev := range e.events {
			if want[ev.Category] {
				filtered = append(filtered, ev)
			}
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	out := make([]Event, len(filtered))
	for i, ev := range filtered {
		out[i] = ev
		out[i].Payload = copyPayload(ev.Payload)
	}
	return out
}

func copyPayload(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
