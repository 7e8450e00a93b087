package simulation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func tinyScenario() Scenario {
	return Scenario{
		Materials: []catalog.Material{{ID: "m"}},
		Products:  []catalog.Product{{ID: "p", ProductionDays: 1, BOM: []catalog.BOMLine{{MaterialID: "m", Quantity: 1}}}},
		Providers: []catalog.Provider{{ID: "v", Catalogue: []catalog.Offering{
			{MaterialID: "m", UnitPrice: decimal.NewFromInt(1), UnitSize: 1, LeadTimeDays: 1},
		}}},
		Capacity: Capacity{DailyProduction: 5, Storage: 100},
		Financial: FinancialConfig{
			InitialBalance: decimal.NewFromInt(100),
			SellingPrices:  map[string]decimal.Decimal{"p": decimal.NewFromInt(3)},
			BaseDailyCost:  decimal.NewFromInt(1),
		},
	}
}

func TestAdvanceDay_FailureRollsBackAndNamesStep(t *testing.T) {
	// Arrange: a pending purchase whose on-order quantity has been lost
	e, err := New(tinyScenario())
	require.NoError(t, err)
	_, err = e.PlacePurchaseOrder("m", "v", 10)
	require.NoError(t, err)
	require.NoError(t, e.stock.CancelOnOrder("m", 10))
	eventsBefore := len(e.events)
	balanceBefore := e.Balance()

	// Act
	_, err = e.AdvanceDay()

	// Assert
	var dayErr *DayAdvanceError
	require.ErrorAs(t, err, &dayErr)
	assert.Equal(t, StepReceiveMaterials, dayErr.Step)
	assert.Equal(t, 1, dayErr.Day)
	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))
	assert.Equal(t, 0, e.Day())
	assert.Len(t, e.events, eventsBefore)
	assert.Empty(t, e.pending)
	assert.True(t, e.Balance().Equal(balanceBefore))
	assert.Len(t, e.PendingPurchaseOrders(), 1)
}

func TestAdvanceDay_InvariantCheckRunsLast(t *testing.T) {
	e, err := New(tinyScenario())
	require.NoError(t, err)
	require.NoError(t, e.stock.AddOnOrder("m", 3))

	_, err = e.AdvanceDay()

	var dayErr *DayAdvanceError
	require.True(t, errors.As(err, &dayErr))
	assert.Equal(t, StepVerifyInvariants, dayErr.Step)
	assert.Equal(t, 0, e.Day())
	assert.Equal(t, 5, e.RemainingCapacity())
}
