package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/demand"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ScenarioDocument is the on-disk scenario format. JSON documents parse too,
// JSON being a subset of YAML.
type ScenarioDocument struct {
	Name             string             `yaml:"name"`
	Seed             uint64             `yaml:"seed"`
	AutoFulfill      *bool              `yaml:"auto_fulfill"`
	Materials        []MaterialDocument `yaml:"materials" validate:"required,min=1,dive"`
	Products         []ProductDocument  `yaml:"products" validate:"required,min=1,dive"`
	Providers        []ProviderDocument `yaml:"providers" validate:"dive"`
	InitialInventory map[string]int     `yaml:"initial_inventory" validate:"dive,gte=0"`
	Capacity         CapacityDocument   `yaml:"capacity"`
	Financial        FinancialDocument  `yaml:"financial"`
	Demand           DemandDocument     `yaml:"demand"`
}

type MaterialDocument struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
}

type ProductDocument struct {
	ID             string        `yaml:"id" validate:"required"`
	Name           string        `yaml:"name" validate:"required"`
	ProductionDays int           `yaml:"production_days" validate:"min=1"`
	BOM            []BOMDocument `yaml:"bom" validate:"required,min=1,dive"`
}

type BOMDocument struct {
	MaterialID string `yaml:"material_id" validate:"required"`
	Quantity   int    `yaml:"quantity" validate:"min=1"`
}

type ProviderDocument struct {
	ID        string             `yaml:"id" validate:"required"`
	Name      string             `yaml:"name"`
	Catalogue []OfferingDocument `yaml:"catalogue" validate:"required,min=1,dive"`
}

type OfferingDocument struct {
	MaterialID   string          `yaml:"material_id" validate:"required"`
	UnitPrice    decimal.Decimal `yaml:"unit_price" validate:"gte=0"`
	UnitSize     int             `yaml:"unit_size" validate:"gte=0"`
	LeadTimeDays int             `yaml:"lead_time_days" validate:"gte=0"`
}

type CapacityDocument struct {
	DailyProduction int `yaml:"daily_production" validate:"min=1"`
	Storage         int `yaml:"storage" validate:"min=1"`
}

type FinancialDocument struct {
	InitialBalance        decimal.Decimal            `yaml:"initial_balance" validate:"gte=0"`
	SellingPrices         map[string]decimal.Decimal `yaml:"selling_prices" validate:"required,dive,gte=0"`
	BaseDailyCost         decimal.Decimal            `yaml:"base_daily_cost" validate:"gte=0"`
	PerItemInProgressCost decimal.Decimal            `yaml:"per_item_in_progress_cost" validate:"gte=0"`
}

type DemandDocument struct {
	OrderProbability float64 `yaml:"order_probability" validate:"gte=0,lte=1"`
	MinOrdersPerDay  int     `yaml:"min_orders_per_day" validate:"gte=0"`
	MaxOrdersPerDay  int     `yaml:"max_orders_per_day" validate:"gtefield=MinOrdersPerDay"`
	MinQuantity      int     `yaml:"min_quantity" validate:"gte=0"`
	MaxQuantity      int     `yaml:"max_quantity" validate:"gtefield=MinQuantity"`
}

// LoadScenario reads, validates and converts a scenario document.
// Cross-references (BOM materials, prices per product) are checked again by the engine.
func LoadScenario(path string) (simulation.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return simulation.Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML or JSON scenario document
func ParseScenario(data []byte) (simulation.Scenario, error) {
	var doc ScenarioDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return simulation.Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := NewValidator().Validate(&doc); err != nil {
		return simulation.Scenario{}, fmt.Errorf("invalid scenario: %w", err)
	}
	return doc.ToScenario(), nil
}

// ToScenario converts the document into the engine's scenario type.
// auto_fulfill defaults to true when omitted.
func (d *ScenarioDocument) ToScenario() simulation.Scenario {
	s := simulation.Scenario{
		Name:             d.Name,
		Seed:             d.Seed,
		AutoFulfill:      true,
		InitialInventory: make(map[string]int, len(d.InitialInventory)),
		Capacity: simulation.Capacity{
			DailyProduction: d.Capacity.DailyProduction,
			Storage:         d.Capacity.Storage,
		},
		Financial: simulation.FinancialConfig{
			InitialBalance:        d.Financial.InitialBalance,
			SellingPrices:         make(map[string]decimal.Decimal, len(d.Financial.SellingPrices)),
			BaseDailyCost:         d.Financial.BaseDailyCost,
			PerItemInProgressCost: d.Financial.PerItemInProgressCost,
		},
		Demand: demand.Config{
			OrderProbability: d.Demand.OrderProbability,
			MinOrdersPerDay:  d.Demand.MinOrdersPerDay,
			MaxOrdersPerDay:  d.Demand.MaxOrdersPerDay,
			MinQuantity:      d.Demand.MinQuantity,
			MaxQuantity:      d.Demand.MaxQuantity,
		},
	}
	if d.AutoFulfill != nil {
		s.AutoFulfill = *d.AutoFulfill
	}

	for _, m := range d.Materials {
		s.Materials = append(s.Materials, catalog.Material{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	for _, p := range d.Products {
		product := catalog.Product{ID: p.ID, Name: p.Name, ProductionDays: p.ProductionDays}
		for _, line := range p.BOM {
			product.BOM = append(product.BOM, catalog.BOMLine{MaterialID: line.MaterialID, Quantity: line.Quantity})
		}
		s.Products = append(s.Products, product)
	}
	for _, p := range d.Providers {
		provider := catalog.Provider{ID: p.ID, Name: p.Name}
		for _, o := range p.Catalogue {
			provider.Catalogue = append(provider.Catalogue, catalog.Offering{
				MaterialID:   o.MaterialID,
				UnitPrice:    o.UnitPrice,
				UnitSize:     o.UnitSize,
				LeadTimeDays: o.LeadTimeDays,
			})
		}
		s.Providers = append(s.Providers, provider)
	}
	for id, qty := range d.InitialInventory {
		s.InitialInventory[id] = qty
	}
	for id, price := range d.Financial.SellingPrices {
		s.Financial.SellingPrices[id] = price
	}
	return s
}
