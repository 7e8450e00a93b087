package simulation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/demand"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Capacity limits production per day and total units held in storage
type Capacity struct {
	DailyProduction int `json:"daily_production"`
	Storage         int `json:"storage"`
}

// FinancialConfig holds prices and recurring costs
type FinancialConfig struct {
	InitialBalance        decimal.Decimal            `json:"initial_balance"`
	SellingPrices         map[string]decimal.Decimal `json:"selling_prices"`
	BaseDailyCost         decimal.Decimal            `json:"base_daily_cost"`
	PerItemInProgressCost decimal.Decimal            `json:"per_item_in_progress_cost"`
}

// Scenario is everything needed to start a simulation at day 0
type Scenario struct {
	Name             string             `json:"name,omitempty"`
	Materials        []catalog.Material `json:"materials"`
	Products         []catalog.Product  `json:"products"`
	Providers        []catalog.Provider `json:"providers"`
	InitialInventory map[string]int     `json:"initial_inventory"`
	Capacity         Capacity           `json:"capacity"`
	Financial        FinancialConfig    `json:"financial"`
	Demand           demand.Config      `json:"demand"`
	Seed             uint64             `json:"seed"`
	AutoFulfill      bool               `json:"auto_fulfill"`
}

// Validate checks the scenario is self-consistent and returns its catalog
func (s Scenario) Validate() (*catalog.Catalog, error) {
	cat, err := catalog.NewCatalog(s.Materials, s.Products, s.Providers)
	if err != nil {
		return nil, err
	}
	if s.Capacity.DailyProduction < 1 {
		return nil, shared.NewValidationError("capacity.daily_production", "must be at least 1")
	}
	if s.Capacity.Storage < 1 {
		return nil, shared.NewValidationError("capacity.storage", "must be at least 1")
	}
	if s.Financial.InitialBalance.IsNegative() {
		return nil, shared.NewValidationError("financial.initial_balance", "cannot be negative")
	}
	if s.Financial.BaseDailyCost.IsNegative() || s.Financial.PerItemInProgressCost.IsNegative() {
		return nil, shared.NewValidationError("financial", "operational costs cannot be negative")
	}
	for _, id := range cat.ProductIDs() {
		price, ok := s.Financial.SellingPrices[id]
		if !ok || !price.IsPositive() {
			return nil, shared.NewValidationError("financial.selling_prices",
				fmt.Sprintf("product %s needs a positive selling price", id))
		}
	}
	for id := range s.Financial.SellingPrices {
		if kind, ok := cat.Kind(id); !ok || kind != catalog.ItemKindProduct {
			return nil, shared.NewValidationError("financial.selling_prices", fmt.Sprintf("%s is not a product", id))
		}
	}
	total := 0
	for id, qty := range s.InitialInventory {
		if _, ok := cat.Kind(id); !ok {
			return nil, shared.NewValidationError("initial_inventory", fmt.Sprintf("unknown item %s", id))
		}
		if qty < 0 {
			return nil, shared.NewValidationError("initial_inventory", fmt.Sprintf("%s cannot be negative", id))
		}
		total += qty
	}
	if total > s.Capacity.Storage {
		return nil, shared.NewValidationError("initial_inventory",
			fmt.Sprintf("%d units exceed storage capacity %d", total, s.Capacity.Storage))
	}
	if err := s.Demand.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
