package ledger

import "fmt"

// TransactionType represents the type of financial transaction
type TransactionType string

const (
	// TransactionTypePurchase is a payment to a provider for materials
	TransactionTypePurchase TransactionType = "PURCHASE"

	// TransactionTypeSale is revenue from a fulfilled customer order
	TransactionTypeSale TransactionType = "SALE"

	// TransactionTypeOperationalCost is the daily cost of running the factory
	TransactionTypeOperationalCost TransactionType = "OPERATIONAL_COST"
)

func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypePurchase,
		TransactionTypeSale,
		TransactionTypeOperationalCost,
	}
}

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	_, ok := TypeToCategoryMap[t]
	return ok
}

// ToCategory maps the transaction type to its reporting category
func (t TransactionType) ToCategory() (Category, error) {
	category, exists := TypeToCategoryMap[t]
	if !exists {
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
	return category, nil
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
