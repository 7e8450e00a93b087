package demand_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/demand"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

var products = []string{"prod-a", "prod-b", "prod-c"}

func cfg() demand.Config {
	return demand.Config{OrderProbability: 1, MinOrdersPerDay: 1, MaxOrdersPerDay: 3, MinQuantity: 1, MaxQuantity: 5}
}

func TestGenerator_SameSeedSameOrders(t *testing.T) {
	// Arrange
	g1, err := demand.NewGenerator(cfg(), rand.New(demand.NewSource(42)))
	require.NoError(t, err)
	g2, err := demand.NewGenerator(cfg(), rand.New(demand.NewSource(42)))
	require.NoError(t, err)

	// Act & Assert
	for day := 0; day < 20; day++ {
		assert.Equal(t, g1.Generate(products), g2.Generate(products))
	}
}

func TestGenerator_RespectsBounds(t *testing.T) {
	g, err := demand.NewGenerator(cfg(), rand.New(demand.NewSource(7)))
	require.NoError(t, err)

	for day := 0; day < 100; day++ {
		reqs := g.Generate(products)
		assert.GreaterOrEqual(t, len(reqs), 1)
		assert.LessOrEqual(t, len(reqs), 3)
		for _, r := range reqs {
			assert.Contains(t, products, r.ProductID)
			assert.GreaterOrEqual(t, r.Quantity, 1)
			assert.LessOrEqual(t, r.Quantity, 5)
		}
	}
}

func TestGenerator_ZeroProbabilityCreatesNothing(t *testing.T) {
	c := cfg()
	c.OrderProbability = 0
	g, err := demand.NewGenerator(c, rand.New(demand.NewSource(1)))
	require.NoError(t, err)

	for day := 0; day < 10; day++ {
		assert.Empty(t, g.Generate(products))
	}
}

func TestGenerator_RestoredSourceContinuesSequence(t *testing.T) {
	src := demand.NewSource(99)
	g, _ := demand.NewGenerator(cfg(), rand.New(src))
	g.Generate(products)

	state, err := src.MarshalBinary()
	require.NoError(t, err)
	clone := &rand.PCG{}
	require.NoError(t, clone.UnmarshalBinary(state))
	g2, _ := demand.NewGenerator(cfg(), rand.New(clone))

	assert.Equal(t, g.Generate(products), g2.Generate(products))
}

func TestConfig_Validate(t *testing.T) {
	bad := cfg()
	bad.MaxOrdersPerDay = 0
	bad.MinOrdersPerDay = 2

	err := bad.Validate()

	assert.True(t, shared.IsKind(err, shared.KindValidation))
}
