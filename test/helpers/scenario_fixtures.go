package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// Dec is shorthand for building decimals in fixtures
func Dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// ChairScenario is a small two-material, two-product factory with random
// demand switched off and auto-fulfillment disabled.
//
//	prod-chair: 2 days, 2 x mat-wood + 4 x mat-screw, sells for 20
//	prod-table: 3 days, 4 x mat-wood + 8 x mat-screw, sells for 50
//	prov-fast:  wood 5.00, screw 0.50, lead time 1
//	prov-bulk:  wood 4.00 in lots of 10, lead time 3
func ChairScenario() simulation.Scenario {
	return simulation.Scenario{
		Name: "chairs",
		Materials: []catalog.Material{
			{ID: "mat-screw", Name: "Screw"},
			{ID: "mat-wood", Name: "Wood"},
		},
		Products: []catalog.Product{
			{ID: "prod-chair", Name: "Chair", ProductionDays: 2, BOM: []catalog.BOMLine{
				{MaterialID: "mat-wood", Quantity: 2},
				{MaterialID: "mat-screw", Quantity: 4},
			}},
			{ID: "prod-table", Name: "Table", ProductionDays: 3, BOM: []catalog.BOMLine{
				{MaterialID: "mat-wood", Quantity: 4},
				{MaterialID: "mat-screw", Quantity: 8},
			}},
		},
		Providers: []catalog.Provider{
			{ID: "prov-fast", Name: "Fast Supplies", Catalogue: []catalog.Offering{
				{MaterialID: "mat-wood", UnitPrice: Dec("5"), UnitSize: 1, LeadTimeDays: 1},
				{MaterialID: "mat-screw", UnitPrice: Dec("0.5"), UnitSize: 1, LeadTimeDays: 1},
			}},
			{ID: "prov-bulk", Name: "Bulk Timber", Catalogue: []catalog.Offering{
				{MaterialID: "mat-wood", UnitPrice: Dec("4"), UnitSize: 10, LeadTimeDays: 3},
			}},
		},
		InitialInventory: map[string]int{"mat-wood": 100, "mat-screw": 200},
		Capacity:         simulation.Capacity{DailyProduction: 10, Storage: 10000},
		Financial: simulation.FinancialConfig{
			InitialBalance: Dec("10000"),
			SellingPrices: map[string]decimal.Decimal{
				"prod-chair": Dec("20"),
				"prod-table": Dec("50"),
			},
			BaseDailyCost:         Dec("50"),
			PerItemInProgressCost: Dec("5"),
		},
		Seed: 42,
	}
}
