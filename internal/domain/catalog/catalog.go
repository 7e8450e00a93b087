package catalog

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Catalog is the immutable set of items and providers a simulation runs with
type Catalog struct {
	materials map[string]Material
	products  map[string]Product
	providers map[string]Provider
}

// NewCatalog validates the definitions and builds a catalog.
// Item ids are shared between materials and products and must be unique across both.
func NewCatalog(materials []Material, products []Product, providers []Provider) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]Material, len(materials)),
		products:  make(map[string]Product, len(products)),
		providers: make(map[string]Provider, len(providers)),
	}

	for _, m := range materials {
		if m.ID == "" {
			return nil, shared.NewValidationError("materials", "material id cannot be empty")
		}
		if _, dup := c.materials[m.ID]; dup {
			return nil, shared.NewValidationError("materials", fmt.Sprintf("duplicate material id %s", m.ID))
		}
		c.materials[m.ID] = m
	}

	for _, p := range products {
		if p.ID == "" {
			return nil, shared.NewValidationError("products", "product id cannot be empty")
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, shared.NewValidationError("products", fmt.Sprintf("duplicate product id %s", p.ID))
		}
		if _, clash := c.materials[p.ID]; clash {
			return nil, shared.NewValidationError("products", fmt.Sprintf("id %s is used by a material and a product", p.ID))
		}
		if p.ProductionDays < 1 {
			return nil, shared.NewValidationError("products", fmt.Sprintf("product %s: production days must be at least 1", p.ID))
		}
		if len(p.BOM) == 0 {
			return nil, shared.NewValidationError("products", fmt.Sprintf("product %s has an empty bill of materials", p.ID))
		}
		bom := make([]BOMLine, len(p.BOM))
		for i, line := range p.BOM {
			if _, ok := c.materials[line.MaterialID]; !ok {
				return nil, shared.NewValidationError("products",
					fmt.Sprintf("product %s references unknown material %s", p.ID, line.MaterialID))
			}
			if line.Quantity <= 0 {
				return nil, shared.NewValidationError("products",
					fmt.Sprintf("product %s: quantity of %s must be positive", p.ID, line.MaterialID))
			}
			bom[i] = line
		}
		p.BOM = bom
		c.products[p.ID] = p
	}

	for _, pr := range providers {
		if pr.ID == "" {
			return nil, shared.NewValidationError("providers", "provider id cannot be empty")
		}
		if _, dup := c.providers[pr.ID]; dup {
			return nil, shared.NewValidationError("providers", fmt.Sprintf("duplicate provider id %s", pr.ID))
		}
		seen := make(map[string]bool, len(pr.Catalogue))
		offers := make([]Offering, len(pr.Catalogue))
		for i, o := range pr.Catalogue {
			if _, ok := c.materials[o.MaterialID]; !ok {
				return nil, shared.NewValidationError("providers",
					fmt.Sprintf("provider %s offers unknown material %s", pr.ID, o.MaterialID))
			}
			if seen[o.MaterialID] {
				return nil, shared.NewValidationError("providers",
					fmt.Sprintf("provider %s offers %s more than once", pr.ID, o.MaterialID))
			}
			seen[o.MaterialID] = true
			if o.UnitPrice.IsNegative() {
				return nil, shared.NewValidationError("providers",
					fmt.Sprintf("provider %s: price of %s cannot be negative", pr.ID, o.MaterialID))
			}
			if o.LeadTimeDays < 0 {
				return nil, shared.NewValidationError("providers",
					fmt.Sprintf("provider %s: lead time of %s cannot be negative", pr.ID, o.MaterialID))
			}
			if o.UnitSize < 1 {
				o.UnitSize = 1
			}
			offers[i] = o
		}
		pr.Catalogue = offers
		c.providers[pr.ID] = pr
	}

	return c, nil
}

// Kind reports whether id names a material or a product
func (c *Catalog) Kind(id string) (ItemKind, bool) {
	if _, ok := c.materials[id]; ok {
		return ItemKindMaterial, true
	}
	if _, ok := c.products[id]; ok {
		return ItemKindProduct, true
	}
	return "", false
}

func (c *Catalog) Material(id string) (Material, error) {
	m, ok := c.materials[id]
	if !ok {
		return Material{}, shared.NewNotFoundError("material", id)
	}
	return m, nil
}

func (c *Catalog) Product(id string) (Product, error) {
	p, ok := c.products[id]
	if !ok {
		return Product{}, shared.NewNotFoundError("product", id)
	}
	return p, nil
}

func (c *Catalog) Provider(id string) (Provider, error) {
	p, ok := c.providers[id]
	if !ok {
		return Provider{}, shared.NewNotFoundError("provider", id)
	}
	return p, nil
}

// Offering returns the terms provider has for material
func (c *Catalog) Offering(providerID, materialID string) (Offering, error) {
	p, err := c.Provider(providerID)
	if err != nil {
		return Offering{}, err
	}
	for _, o := range p.Catalogue {
		if o.MaterialID == materialID {
			return o, nil
		}
	}
	return Offering{}, shared.NewNotFoundError("offering", providerID+"/"+materialID)
}

// Quotes lists every offering for a material, cheapest first.
// Ties break on shorter lead time, then provider id.
func (c *Catalog) Quotes(materialID string) []Quote {
	var quotes []Quote
	for _, id := range c.ProviderIDs() {
		for _, o := range c.providers[id].Catalogue {
			if o.MaterialID == materialID {
				quotes = append(quotes, Quote{ProviderID: id, Offering: o})
			}
		}
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i].Offering, quotes[j].Offering
		if !a.UnitPrice.Equal(b.UnitPrice) {
			return a.UnitPrice.LessThan(b.UnitPrice)
		}
		if a.LeadTimeDays != b.LeadTimeDays {
			return a.LeadTimeDays < b.LeadTimeDays
		}
		return quotes[i].ProviderID < quotes[j].ProviderID
	})
	return quotes
}

func (c *Catalog) MaterialIDs() []string { return sortedKeys(c.materials) }
func (c *Catalog) ProductIDs() []string  { return sortedKeys(c.products) }
func (c *Catalog) ProviderIDs() []string { return sortedKeys(c.providers) }

// ItemIDs returns all material and product ids in ascending order
func (c *Catalog) ItemIDs() []string {
	ids := append(c.MaterialIDs(), c.ProductIDs()...)
	sort.Strings(ids)
	return ids
}

func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.materials))
	for _, id := range c.MaterialIDs() {
		out = append(out, c.materials[id])
	}
	return out
}

func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.products))
	for _, id := range c.ProductIDs() {
		out = append(out, c.products[id])
	}
	return out
}

func (c *Catalog) Providers() []Provider {
	out := make([]Provider, 0, len(c.providers))
	for _, id := range c.ProviderIDs() {
		out = append(out, c.providers[id])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
