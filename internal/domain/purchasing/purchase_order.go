package purchasing

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Status is the lifecycle position of a purchase order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusArrived   Status = "ARRIVED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusArrived, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus parses a status name, case-sensitive
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", shared.NewValidationError("status", "unknown purchase order status "+s)
	}
	return st, nil
}

// PurchaseOrder is an already-paid order for material from one provider.
// It is received exactly once and never partially.
type PurchaseOrder struct {
	id                int
	materialID        string
	providerID        string
	quantity          int
	unitCost          decimal.Decimal
	placedDay         int
	expectedArrival   int
	arrivalDay        int
	productionOrderID int
	status            Status
}

func (p *PurchaseOrder) ID() int                   { return p.id }
func (p *PurchaseOrder) MaterialID() string        { return p.materialID }
func (p *PurchaseOrder) ProviderID() string        { return p.providerID }
func (p *PurchaseOrder) Quantity() int             { return p.quantity }
func (p *PurchaseOrder) UnitCost() decimal.Decimal { return p.unitCost }
func (p *PurchaseOrder) PlacedDay() int            { return p.placedDay }
func (p *PurchaseOrder) ExpectedArrivalDay() int   { return p.expectedArrival }
func (p *PurchaseOrder) Status() Status            { return p.status }
func (p *PurchaseOrder) IsPending() bool           { return p.status == StatusPending }
func (p *PurchaseOrder) TotalCost() decimal.Decimal {
	return p.unitCost.Mul(decimal.NewFromInt(int64(p.quantity)))
}

// ArrivalDay is the day the order was received, 0 while not arrived
func (p *PurchaseOrder) ArrivalDay() int { return p.arrivalDay }

// ProductionOrderID is the production order this purchase was made for, 0 if none
func (p *PurchaseOrder) ProductionOrderID() int { return p.productionOrderID }

func (p *PurchaseOrder) label() string { return "PO-" + strconv.Itoa(p.id) }

// Data is the persistable form of a purchase order
type Data struct {
	ID                int             `json:"id"`
	MaterialID        string          `json:"material_id"`
	ProviderID        string          `json:"provider_id"`
	Quantity          int             `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	PlacedDay         int             `json:"placed_day"`
	ExpectedArrival   int             `json:"expected_arrival_day"`
	ArrivalDay        int             `json:"arrival_day,omitempty"`
	ProductionOrderID int             `json:"production_order_id,omitempty"`
	Status            Status          `json:"status"`
}

func (p *PurchaseOrder) Data() Data {
	return Data{
		ID:                p.id,
		MaterialID:        p.materialID,
		ProviderID:        p.providerID,
		Quantity:          p.quantity,
		UnitCost:          p.unitCost,
		TotalCost:         p.TotalCost(),
		PlacedDay:         p.placedDay,
		ExpectedArrival:   p.expectedArrival,
		ArrivalDay:        p.arrivalDay,
		ProductionOrderID: p.productionOrderID,
		Status:            p.status,
	}
}

// ReconstructPurchaseOrder rebuilds an order from persistence
func ReconstructPurchaseOrder(d Data) *PurchaseOrder {
	return &PurchaseOrder{
		id:                d.ID,
		materialID:        d.MaterialID,
		providerID:        d.ProviderID,
		quantity:          d.Quantity,
		unitCost:          d.UnitCost,
		placedDay:         d.PlacedDay,
		expectedArrival:   d.ExpectedArrival,
		arrivalDay:        d.ArrivalDay,
		productionOrderID: d.ProductionOrderID,
		status:            d.Status,
	}
}
