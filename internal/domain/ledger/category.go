package ledger

import "fmt"

// Category groups transactions for profit and loss reporting
type Category string

const (
	CategorySalesRevenue     Category = "SALES_REVENUE"
	CategoryMaterialCosts    Category = "MATERIAL_COSTS"
	CategoryOperationalCosts Category = "OPERATIONAL_COSTS"
)

func AllCategories() []Category {
	return []Category{
		CategorySalesRevenue,
		CategoryMaterialCosts,
		CategoryOperationalCosts,
	}
}

// TypeToCategoryMap maps transaction types to their categories
var TypeToCategoryMap = map[TransactionType]Category{
	TransactionTypePurchase:        CategoryMaterialCosts,
	TransactionTypeSale:            CategorySalesRevenue,
	TransactionTypeOperationalCost: CategoryOperationalCosts,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategorySalesRevenue, CategoryMaterialCosts, CategoryOperationalCosts:
		return true
	default:
		return false
	}
}

func (c Category) IsIncome() bool {
	return c == CategorySalesRevenue
}

func (c Category) IsExpense() bool {
	return !c.IsIncome()
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
