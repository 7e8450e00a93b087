package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewCatalog(
		[]catalog.Material{{ID: "mat-frame", Name: "Frame"}, {ID: "mat-screw", Name: "Screw"}},
		[]catalog.Product{{
			ID:             "prod-chair",
			Name:           "Chair",
			ProductionDays: 2,
			BOM: []catalog.BOMLine{
				{MaterialID: "mat-frame", Quantity: 1},
				{MaterialID: "mat-screw", Quantity: 4},
				{MaterialID: "mat-screw", Quantity: 2},
			},
		}},
		[]catalog.Provider{
			{ID: "prov-b", Catalogue: []catalog.Offering{
				{MaterialID: "mat-screw", UnitPrice: decimal.NewFromFloat(0.5), UnitSize: 10, LeadTimeDays: 3},
			}},
			{ID: "prov-a", Catalogue: []catalog.Offering{
				{MaterialID: "mat-screw", UnitPrice: decimal.NewFromFloat(0.5), UnitSize: 1, LeadTimeDays: 3},
				{MaterialID: "mat-frame", UnitPrice: decimal.NewFromInt(20), LeadTimeDays: 2},
			}},
		},
	)
	require.NoError(t, err)
	return c
}

func TestBOMResolver_SumsDuplicateLines(t *testing.T) {
	// Arrange
	resolver := catalog.NewBOMResolver(newTestCatalog(t))

	// Act
	req, err := resolver.Resolve("prod-chair", 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mat-frame": 3, "mat-screw": 18}, req)
}

func TestBOMResolver_IsDeterministic(t *testing.T) {
	resolver := catalog.NewBOMResolver(newTestCatalog(t))

	first, err := resolver.Resolve("prod-chair", 5)
	require.NoError(t, err)
	second, err := resolver.Resolve("prod-chair", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBOMResolver_UnknownProduct(t *testing.T) {
	resolver := catalog.NewBOMResolver(newTestCatalog(t))

	_, err := resolver.Resolve("prod-missing", 1)

	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestBOMResolver_RejectsNonPositiveQuantity(t *testing.T) {
	resolver := catalog.NewBOMResolver(newTestCatalog(t))

	_, err := resolver.Resolve("prod-chair", 0)

	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestCatalog_QuotesOrderedByPriceLeadTimeProvider(t *testing.T) {
	c := newTestCatalog(t)

	quotes := c.Quotes("mat-screw")

	require.Len(t, quotes, 2)
	assert.Equal(t, "prov-a", quotes[0].ProviderID)
	assert.Equal(t, "prov-b", quotes[1].ProviderID)
}

func TestCatalog_DefaultsUnitSizeToOne(t *testing.T) {
	c := newTestCatalog(t)

	offer, err := c.Offering("prov-a", "mat-frame")

	require.NoError(t, err)
	assert.Equal(t, 1, offer.UnitSize)
	assert.Equal(t, 7, offer.LotQuantity(7))
}

func TestOffering_LotQuantityRoundsUp(t *testing.T) {
	offer := catalog.Offering{UnitSize: 10, UnitPrice: decimal.NewFromInt(2)}

	assert.Equal(t, 10, offer.LotQuantity(1))
	assert.Equal(t, 20, offer.LotQuantity(11))
	assert.Equal(t, 20, offer.LotQuantity(20))
	assert.True(t, offer.Cost(20).Equal(decimal.NewFromInt(40)))
}

func TestNewCatalog_RejectsUnknownBOMMaterial(t *testing.T) {
	_, err := catalog.NewCatalog(
		nil,
		[]catalog.Product{{ID: "p", ProductionDays: 1, BOM: []catalog.BOMLine{{MaterialID: "ghost", Quantity: 1}}}},
		nil,
	)

	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.Contains(t, err.Error(), "ghost")
}

func TestNewCatalog_RejectsIDClash(t *testing.T) {
	_, err := catalog.NewCatalog(
		[]catalog.Material{{ID: "x"}},
		[]catalog.Product{{ID: "x", ProductionDays: 1, BOM: []catalog.BOMLine{{MaterialID: "x", Quantity: 1}}}},
		nil,
	)

	assert.Error(t, err)
}

func TestCatalog_Kind(t *testing.T) {
	c := newTestCatalog(t)

	kind, ok := c.Kind("prod-chair")
	assert.True(t, ok)
	assert.Equal(t, catalog.ItemKindProduct, kind)

	kind, ok = c.Kind("mat-frame")
	assert.True(t, ok)
	assert.Equal(t, catalog.ItemKindMaterial, kind)

	_, ok = c.Kind("nope")
	assert.False(t, ok)
}
