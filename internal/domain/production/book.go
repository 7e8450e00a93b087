package production

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Book is the production order state machine. It owns every order and is the
// only code allowed to change an order's status.
//
//	PENDING -> ACCEPTED -> IN_PROGRESS -> COMPLETED -> FULFILLED
//	                  \___________________________/
//	                     (fulfilled from stock)
type Book struct {
	orders map[int]*Order
	nextID int
}

func NewBook() *Book {
	return &Book{orders: make(map[int]*Order), nextID: 1}
}

// RestoreBook rebuilds the book from persisted orders
func RestoreBook(orders []Data, nextID int) (*Book, error) {
	b := &Book{orders: make(map[int]*Order, len(orders)), nextID: nextID}
	for _, d := range orders {
		if !d.Status.IsValid() {
			return nil, shared.NewValidationError("production_orders", fmt.Sprintf("order %d has status %q", d.ID, d.Status))
		}
		if d.ID >= b.nextID {
			b.nextID = d.ID + 1
		}
		b.orders[d.ID] = ReconstructOrder(d)
	}
	return b, nil
}

// Create registers a new PENDING order with its material requirements snapshot
func (b *Book) Create(productID string, quantity, day int, required map[string]int, source Source) (*Order, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be positive")
	}
	o := &Order{
		id:         b.nextID,
		productID:  productID,
		quantity:   quantity,
		createdDay: day,
		source:     source,
		status:     StatusPending,
		required:   copyCounts(required),
		committed:  make(map[string]int),
		revenue:    decimal.Zero,
	}
	b.orders[o.id] = o
	b.nextID++
	return o, nil
}

// Accept moves a PENDING order to ACCEPTED, recording what was reserved for it
func (b *Book) Accept(id int, fromStock bool, committed map[string]int) (*Order, error) {
	o, err := b.transition(id, StatusAccepted, StatusPending)
	if err != nil {
		return nil, err
	}
	o.status = StatusAccepted
	o.fromStock = fromStock
	for k, v := range committed {
		if v > 0 {
			o.committed[k] += v
		}
	}
	return o, nil
}

// Commit adds material reserved for an accepted order after acceptance
func (b *Book) Commit(id int, materialID string, qty int) error {
	o, err := b.Get(id)
	if err != nil {
		return err
	}
	if o.status != StatusAccepted || o.fromStock {
		return shared.NewInvalidStateTransitionError("production order", o.Label(), string(o.status), string(o.status),
			"materials can only be committed to accepted build orders")
	}
	if need := o.required[materialID] - o.committed[materialID]; qty > need {
		return shared.NewInvariantViolationError("committed<=required",
			fmt.Sprintf("%s: committing %d of %s exceeds the %d still needed", o.Label(), qty, materialID, need))
	}
	o.committed[materialID] += qty
	return nil
}

// Start moves an ACCEPTED order into production. The caller has already
// checked capacity and consumed the committed materials.
func (b *Book) Start(id, day int) (*Order, error) {
	o, err := b.transition(id, StatusInProgress, StatusAccepted)
	if err != nil {
		return nil, err
	}
	if o.fromStock {
		return nil, shared.NewInvalidStateTransitionError("production order", o.Label(),
			string(o.status), string(StatusInProgress), "order is served from stock")
	}
	if short := o.Shortfall(); len(short) > 0 {
		return nil, shared.NewMaterialsShortageError(o.id, short)
	}
	o.status = StatusInProgress
	o.startedDay = day
	o.daysInProduction = 0
	return o, nil
}

// Tick counts one more elapsed production day
func (b *Book) Tick(id int) (*Order, error) {
	o, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	if o.status != StatusInProgress {
		return nil, shared.NewInvalidStateTransitionError("production order", o.Label(),
			string(o.status), string(StatusInProgress), "only orders in production advance")
	}
	o.daysInProduction++
	return o, nil
}

// Complete marks production finished
func (b *Book) Complete(id, day int) (*Order, error) {
	o, err := b.transition(id, StatusCompleted, StatusInProgress)
	if err != nil {
		return nil, err
	}
	o.status = StatusCompleted
	o.completedDay = day
	return o, nil
}

// Fulfill closes an order after its goods have been shipped and invoiced
func (b *Book) Fulfill(id, day int, revenue decimal.Decimal) (*Order, error) {
	o, err := b.transition(id, StatusFulfilled, StatusAccepted, StatusCompleted)
	if err != nil {
		return nil, err
	}
	o.status = StatusFulfilled
	o.fulfilledDay = day
	o.revenue = revenue
	return o, nil
}

func (b *Book) transition(id int, to Status, from ...Status) (*Order, error) {
	o, err := b.Get(id)
	if err != nil {
		return nil, err
	}
	for _, f := range from {
		if o.status == f {
			return o, nil
		}
	}
	return nil, shared.NewInvalidStateTransitionError("production order", o.Label(), string(o.status), string(to), "")
}

func (b *Book) Get(id int) (*Order, error) {
	o, ok := b.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("production order", strconv.Itoa(id))
	}
	return o, nil
}

// All returns orders in FIFO order (creation day, then id), optionally filtered by status
func (b *Book) All(statuses ...Status) []*Order {
	out := make([]*Order, 0, len(b.orders))
	for _, o := range b.orders {
		if len(statuses) == 0 || hasStatus(statuses, o.status) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].createdDay != out[j].createdDay {
			return out[i].createdDay < out[j].createdDay
		}
		return out[i].id < out[j].id
	})
	return out
}

// CountByStatus returns how many orders sit in each status
func (b *Book) CountByStatus() map[Status]int {
	counts := make(map[Status]int, 5)
	for _, s := range AllStatuses() {
		counts[s] = 0
	}
	for _, o := range b.orders {
		counts[o.status]++
	}
	return counts
}

// UnitsInProgress sums quantities currently being produced
func (b *Book) UnitsInProgress() int {
	total := 0
	for _, o := range b.orders {
		if o.status == StatusInProgress {
			total += o.quantity
		}
	}
	return total
}

func (b *Book) NextID() int { return b.nextID }

// Data returns persistable copies of all orders ordered by id
func (b *Book) Data() []Data {
	all := b.All()
	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })
	out := make([]Data, len(all))
	for i, o := range all {
		out[i] = o.Data()
	}
	return out
}

func hasStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
