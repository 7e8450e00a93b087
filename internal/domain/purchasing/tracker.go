package purchasing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Stock is the slice of the inventory ledger the tracker drives
type Stock interface {
	AddOnOrder(itemID string, qty int) error
	CancelOnOrder(itemID string, qty int) error
	Receive(itemID string, qty int) error
}

// AdmitFunc decides whether a due order can be received now.
// Returning false leaves the order pending for a later day.
type AdmitFunc func(po *PurchaseOrder) bool

// Tracker owns all purchase orders. Payment happens before Place is called.
type Tracker struct {
	orders map[int]*PurchaseOrder
	nextID int
	stock  Stock
}

func NewTracker(stock Stock) *Tracker {
	return &Tracker{orders: make(map[int]*PurchaseOrder), nextID: 1, stock: stock}
}

// RestoreTracker rebuilds a tracker from persisted orders
func RestoreTracker(stock Stock, orders []Data, nextID int) (*Tracker, error) {
	t := &Tracker{orders: make(map[int]*PurchaseOrder, len(orders)), nextID: nextID, stock: stock}
	for _, d := range orders {
		if !d.Status.IsValid() {
			return nil, shared.NewValidationError("purchase_orders", fmt.Sprintf("order %d has status %q", d.ID, d.Status))
		}
		if d.ID >= t.nextID {
			t.nextID = d.ID + 1
		}
		t.orders[d.ID] = ReconstructPurchaseOrder(d)
	}
	return t, nil
}

// PlaceRequest describes a paid purchase
type PlaceRequest struct {
	ProviderID        string
	Offering          catalog.Offering
	Quantity          int
	Day               int
	ProductionOrderID int
}

// Place records a new pending order arriving after the offering's lead time
func (t *Tracker) Place(req PlaceRequest) (*PurchaseOrder, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be positive")
	}
	if err := t.stock.AddOnOrder(req.Offering.MaterialID, req.Quantity); err != nil {
		return nil, err
	}
	po := &PurchaseOrder{
		id:                t.nextID,
		materialID:        req.Offering.MaterialID,
		providerID:        req.ProviderID,
		quantity:          req.Quantity,
		unitCost:          req.Offering.UnitPrice,
		placedDay:         req.Day,
		expectedArrival:   req.Day + req.Offering.LeadTimeDays,
		productionOrderID: req.ProductionOrderID,
		status:            StatusPending,
	}
	t.orders[po.id] = po
	t.nextID++
	return po, nil
}

// Advance receives every pending order due on or before day, lowest id first.
// Orders rejected by admit stay pending and are returned as delayed.
func (t *Tracker) Advance(day int, admit AdmitFunc) (arrived, delayed []*PurchaseOrder, err error) {
	for _, po := range t.Pending() {
		if po.expectedArrival > day {
			continue
		}
		if admit != nil && !admit(po) {
			delayed = append(delayed, po)
			continue
		}
		if err := t.stock.Receive(po.materialID, po.quantity); err != nil {
			return arrived, delayed, fmt.Errorf("receive %s: %w", po.label(), err)
		}
		po.status = StatusArrived
		po.arrivalDay = day
		arrived = append(arrived, po)
	}
	return arrived, delayed, nil
}

// Cancel withdraws a pending order. The payment is not refunded.
func (t *Tracker) Cancel(id int) (*PurchaseOrder, error) {
	po, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	if po.status != StatusPending {
		return nil, shared.NewInvalidStateTransitionError("purchase order", po.label(),
			string(po.status), string(StatusCancelled), "only pending orders can be cancelled")
	}
	if err := t.stock.CancelOnOrder(po.materialID, po.quantity); err != nil {
		return nil, err
	}
	po.status = StatusCancelled
	return po, nil
}

func (t *Tracker) Get(id int) (*PurchaseOrder, error) {
	po, ok := t.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("purchase order", strconv.Itoa(id))
	}
	return po, nil
}

// All returns orders in ascending id order, optionally filtered by status
func (t *Tracker) All(statuses ...Status) []*PurchaseOrder {
	out := make([]*PurchaseOrder, 0, len(t.orders))
	for _, po := range t.orders {
		if len(statuses) == 0 || containsStatus(statuses, po.status) {
			out = append(out, po)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (t *Tracker) Pending() []*PurchaseOrder {
	return t.All(StatusPending)
}

// EarmarkedFor sums pending quantities per material bought for a production order
func (t *Tracker) EarmarkedFor(productionOrderID int) map[string]int {
	out := make(map[string]int)
	for _, po := range t.orders {
		if po.status == StatusPending && po.productionOrderID == productionOrderID {
			out[po.materialID] += po.quantity
		}
	}
	return out
}

// ScheduledArrivals sums pending quantities of a material expected by throughDay
func (t *Tracker) ScheduledArrivals(materialID string, throughDay int) int {
	total := 0
	for _, po := range t.orders {
		if po.status == StatusPending && po.materialID == materialID && po.expectedArrival <= throughDay {
			total += po.quantity
		}
	}
	return total
}

func (t *Tracker) NextID() int { return t.nextID }

// Data returns persistable copies of all orders
func (t *Tracker) Data() []Data {
	all := t.All()
	out := make([]Data, len(all))
	for i, po := range all {
		out[i] = po.Data()
	}
	return out
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
