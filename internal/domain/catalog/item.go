package catalog

import (
	"github.com/shopspring/decimal"
)

// ItemKind distinguishes raw materials from finished products
type ItemKind string

const (
	ItemKindMaterial ItemKind = "MATERIAL"
	ItemKindProduct  ItemKind = "PRODUCT"
)

// Material is a raw input purchased from providers
type Material struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// BOMLine is one material requirement per unit of a product
type BOMLine struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// Product is a finished good assembled from its bill of materials
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BOM            []BOMLine `json:"bom"`
	ProductionDays int       `json:"production_days"`
}

// Offering is a provider's price and delivery terms for one material.
// UnitPrice is per single unit; UnitSize is the lot size purchases are rounded up to.
type Offering struct {
	MaterialID   string          `json:"material_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitSize     int             `json:"unit_size"`
	LeadTimeDays int             `json:"lead_time_days"`
}

// LotQuantity rounds needed up to a whole number of lots
func (o Offering) LotQuantity(needed int) int {
	size := o.UnitSize
	if size <= 1 {
		return needed
	}
	lots := (needed + size - 1) / size
	return lots * size
}

// Cost returns the total price of qty units
func (o Offering) Cost(qty int) decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Provider sells materials under a catalogue of offerings
type Provider struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Catalogue []Offering `json:"catalogue"`
}

// Quote pairs an offering with the provider selling it
type Quote struct {
	ProviderID string
	Offering   Offering
}
