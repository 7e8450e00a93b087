package production

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Status is the lifecycle position of a production order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFulfilled  Status = "FULFILLED"
)

// AllStatuses lists statuses in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusFulfilled}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusFulfilled:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", shared.NewValidationError("status", "unknown production order status "+s)
	}
	return st, nil
}

// Source records where an order came from
type Source string

const (
	SourceManual Source = "MANUAL"
	SourceDemand Source = "DEMAND"
)

// Order is a customer order for a quantity of one product.
// Status changes only through Book.
type Order struct {
	id               int
	productID        string
	quantity         int
	createdDay       int
	source           Source
	status           Status
	fromStock        bool
	required         map[string]int
	committed        map[string]int
	startedDay       int
	daysInProduction int
	completedDay     int
	fulfilledDay     int
	revenue          decimal.Decimal
}

func (o *Order) ID() int                  { return o.id }
func (o *Order) ProductID() string        { return o.productID }
func (o *Order) Quantity() int            { return o.quantity }
func (o *Order) CreatedDay() int          { return o.createdDay }
func (o *Order) Source() Source           { return o.source }
func (o *Order) Status() Status           { return o.status }
func (o *Order) FromStock() bool          { return o.fromStock }
func (o *Order) StartedDay() int          { return o.startedDay }
func (o *Order) DaysInProduction() int    { return o.daysInProduction }
func (o *Order) CompletedDay() int        { return o.completedDay }
func (o *Order) FulfilledDay() int        { return o.fulfilledDay }
func (o *Order) Revenue() decimal.Decimal { return o.revenue }

// Label is the human-facing order reference
func (o *Order) Label() string { return "ORD-" + strconv.Itoa(o.id) }

// Required returns a copy of the material requirements captured at creation
func (o *Order) Required() map[string]int { return copyCounts(o.required) }

// Committed returns a copy of the materials reserved for this order
func (o *Order) Committed() map[string]int { return copyCounts(o.committed) }

// Shortfall is required minus committed, positive entries only.
// From-stock orders need no materials and report none.
func (o *Order) Shortfall() map[string]int {
	out := make(map[string]int)
	if o.fromStock {
		return out
	}
	for id, need := range o.required {
		if missing := need - o.committed[id]; missing > 0 {
			out[id] = missing
		}
	}
	return out
}

// HasShortfall reports whether any material is still missing
func (o *Order) HasShortfall() bool {
	return len(o.Shortfall()) > 0
}

// MaterialIDs returns required material ids in ascending order
func (o *Order) MaterialIDs() []string {
	ids := make([]string, 0, len(o.required))
	for id := range o.required {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Data is the persistable form of an order
type Data struct {
	ID               int             `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	CreatedDay       int             `json:"created_day"`
	Source           Source          `json:"source"`
	Status           Status          `json:"status"`
	FromStock        bool            `json:"from_stock"`
	Required         map[string]int  `json:"required_materials"`
	Committed        map[string]int  `json:"committed_materials"`
	StartedDay       int             `json:"started_day,omitempty"`
	DaysInProduction int             `json:"days_in_production"`
	CompletedDay     int             `json:"completed_day,omitempty"`
	FulfilledDay     int             `json:"fulfilled_day,omitempty"`
	Revenue          decimal.Decimal `json:"revenue"`
}

func (o *Order) Data() Data {
	return Data{
		ID:               o.id,
		ProductID:        o.productID,
		Quantity:         o.quantity,
		CreatedDay:       o.createdDay,
		Source:           o.source,
		Status:           o.status,
		FromStock:        o.fromStock,
		Required:         copyCounts(o.required),
		Committed:        copyCounts(o.committed),
		StartedDay:       o.startedDay,
		DaysInProduction: o.daysInProduction,
		CompletedDay:     o.completedDay,
		FulfilledDay:     o.fulfilledDay,
		Revenue:          o.revenue,
	}
}

// ReconstructOrder rebuilds an order from persistence
func ReconstructOrder(d Data) *Order {
	return &Order{
		id:               d.ID,
		productID:        d.ProductID,
		quantity:         d.Quantity,
		createdDay:       d.CreatedDay,
		source:           d.Source,
		status:           d.Status,
		fromStock:        d.FromStock,
		required:         copyCounts(d.Required),
		committed:        copyCounts(d.Committed),
		startedDay:       d.StartedDay,
		daysInProduction: d.DaysInProduction,
		completedDay:     d.CompletedDay,
		fulfilledDay:     d.FulfilledDay,
		revenue:          d.Revenue,
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
