package simulation_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/demand"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// chairScenario is a small factory: chairs take 2 days, tables 3.
// Random demand is off unless a test turns it on.
func chairScenario() simulation.Scenario {
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
				{MaterialID: "mat-wood", UnitPrice: dec(5), UnitSize: 1, LeadTimeDays: 1},
				{MaterialID: "mat-screw", UnitPrice: dec(0.5), UnitSize: 1, LeadTimeDays: 1},
			}},
			{ID: "prov-bulk", Name: "Bulk Timber", Catalogue: []catalog.Offering{
				{MaterialID: "mat-wood", UnitPrice: dec(4), UnitSize: 10, LeadTimeDays: 3},
			}},
		},
		InitialInventory: map[string]int{"mat-wood": 100, "mat-screw": 200},
		Capacity:         simulation.Capacity{DailyProduction: 10, Storage: 10000},
		Financial: simulation.FinancialConfig{
			InitialBalance:        dec(10000),
			SellingPrices:         map[string]decimal.Decimal{"prod-chair": dec(20), "prod-table": dec(50)},
			BaseDailyCost:         dec(50),
			PerItemInProgressCost: dec(5),
		},
		Demand: demand.Config{MinQuantity: 1, MaxQuantity: 5},
		Seed:   42,
	}
}

type recordingSink struct {
	mu      sync.Mutex
	batches [][]simulation.Event
	fail    bool
}

func (s *recordingSink) Publish(events []simulation.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.batches = append(s.batches, events)
	return nil
}

func (s *recordingSink) all() []simulation.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []simulation.Event
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func newEngine(t *testing.T, edit func(*simulation.Scenario), opts ...simulation.Option) *simulation.Engine {
	t.Helper()
	s := chairScenario()
	if edit != nil {
		edit(&s)
	}
	opts = append([]simulation.Option{simulation.WithClock(shared.NewMockClock(time.Time{}))}, opts...)
	e, err := simulation.New(s, opts...)
	require.NoError(t, err)
	return e
}

// acceptedOrder creates and accepts an order, failing the test on error
func acceptedOrder(t *testing.T, e *simulation.Engine, product string, qty int) int {
	t.Helper()
	o, err := e.CreateOrder(product, qty)
	require.NoError(t, err)
	_, err = e.AcceptOrder(o.ID)
	require.NoError(t, err)
	return o.ID
}

func advance(t *testing.T, e *simulation.Engine, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		_, err := e.AdvanceDay()
		require.NoError(t, err)
	}
}
