package catalog

import (
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// BOMResolver expands a product quantity into its material requirements
type BOMResolver struct {
	catalog *Catalog
}

func NewBOMResolver(c *Catalog) *BOMResolver {
	return &BOMResolver{catalog: c}
}

// Resolve returns material id -> total units needed for qty units of product.
// Repeated lines for the same material are summed.
func (r *BOMResolver) Resolve(productID string, qty int) (map[string]int, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("quantity", "must be positive")
	}
	p, err := r.catalog.Product(productID)
	if err != nil {
		return nil, err
	}
	req := make(map[string]int, len(p.BOM))
	for _, line := range p.BOM {
		req[line.MaterialID] += line.Quantity * qty
	}
	return req, nil
}
