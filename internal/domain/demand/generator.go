// Package demand produces random customer orders from an injected, seedable source.
package demand

import (
	"fmt"
	"math/rand/v2"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Config bounds the random demand created each day
type Config struct {
	OrderProbability float64 `json:"order_probability"`
	MinOrdersPerDay  int     `json:"min_orders_per_day"`
	MaxOrdersPerDay  int     `json:"max_orders_per_day"`
	MinQuantity      int     `json:"min_quantity"`
	MaxQuantity      int     `json:"max_quantity"`
}

func (c Config) Validate() error {
	switch {
	case c.OrderProbability < 0 || c.OrderProbability > 1:
		return shared.NewValidationError("demand.order_probability", "must be between 0 and 1")
	case c.MinOrdersPerDay < 0 || c.MaxOrdersPerDay < c.MinOrdersPerDay:
		return shared.NewValidationError("demand.orders_per_day",
			fmt.Sprintf("need 0 <= min <= max, got %d..%d", c.MinOrdersPerDay, c.MaxOrdersPerDay))
	case c.MaxOrdersPerDay > 0 && (c.MinQuantity < 1 || c.MaxQuantity < c.MinQuantity):
		return shared.NewValidationError("demand.quantity",
			fmt.Sprintf("need 1 <= min <= max, got %d..%d", c.MinQuantity, c.MaxQuantity))
	}
	return nil
}

// RandomSource is the subset of *rand.Rand the generator draws from
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// Request is one generated customer order
type Request struct {
	ProductID string
	Quantity  int
}

type Generator struct {
	cfg Config
	rng RandomSource
}

func NewGenerator(cfg Config, rng RandomSource) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, shared.NewValidationError("rng", "random source is required")
	}
	return &Generator{cfg: cfg, rng: rng}, nil
}

// Generate draws today's orders. productIDs must be sorted so that the same
// seed always picks the same products.
func (g *Generator) Generate(productIDs []string) []Request {
	if len(productIDs) == 0 || g.cfg.MaxOrdersPerDay == 0 {
		return nil
	}
	if g.rng.Float64() >= g.cfg.OrderProbability {
		return nil
	}
	n := g.cfg.MinOrdersPerDay + g.rng.IntN(g.cfg.MaxOrdersPerDay-g.cfg.MinOrdersPerDay+1)
	out := make([]Request, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Request{
			ProductID: productIDs[g.rng.IntN(len(productIDs))],
			Quantity:  g.cfg.MinQuantity + g.rng.IntN(g.cfg.MaxQuantity-g.cfg.MinQuantity+1),
		})
	}
	return out
}

func (g *Generator) Config() Config { return g.cfg }

// NewSource returns a serializable PCG source for a seed
func NewSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
