package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable posting against the factory's cash balance
type Transaction struct {
	id              TransactionID
	day             int
	timestamp       time.Time
	transactionType TransactionType
	category        Category
	amount          decimal.Decimal // positive for income, negative for expenses
	balanceBefore   decimal.Decimal
	balanceAfter    decimal.Decimal
	reference       string // e.g. "PO-3", "ORD-12"
	description     string
}

// NewTransaction creates a new transaction with validation
func NewTransaction(
	day int,
	timestamp time.Time,
	transactionType TransactionType,
	amount decimal.Decimal,
	balanceBefore decimal.Decimal,
	reference string,
	description string,
) (*Transaction, error) {
	if !transactionType.IsValid() {
		return nil, &ErrInvalidTransaction{
			Field:  "transaction_type",
			Reason: fmt.Sprintf("invalid transaction type: %s", transactionType),
		}
	}
	category, err := transactionType.ToCategory()
	if err != nil {
		return nil, &ErrInvalidTransaction{Field: "category", Reason: err.Error()}
	}

	t := &Transaction{
		id:              NewTransactionID(),
		day:             day,
		timestamp:       timestamp,
		transactionType: transactionType,
		category:        category,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceBefore.Add(amount),
		reference:       reference,
		description:     description,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the transaction satisfies all invariants
func (t *Transaction) Validate() error {
	if t.amount.IsZero() {
		return &ErrInvalidTransaction{Field: "amount", Reason: "amount cannot be zero"}
	}
	if t.category.IsIncome() && t.amount.IsNegative() {
		return &ErrInvalidTransaction{Field: "amount", Reason: "income must be positive"}
	}
	if t.category.IsExpense() && t.amount.IsPositive() {
		return &ErrInvalidTransaction{Field: "amount", Reason: "expenses must be negative"}
	}
	if t.day < 0 {
		return &ErrInvalidTransaction{Field: "day", Reason: "day cannot be negative"}
	}

	expected := t.balanceBefore.Add(t.amount)
	if !t.balanceAfter.Equal(expected) {
		return &ErrBalanceInvariantViolation{
			BalanceBefore: t.balanceBefore,
			Amount:        t.amount,
			BalanceAfter:  t.balanceAfter,
			Expected:      expected,
		}
	}
	return nil
}

func (t *Transaction) ID() TransactionID                { return t.id }
func (t *Transaction) Day() int                         { return t.day }
func (t *Transaction) Timestamp() time.Time             { return t.timestamp }
func (t *Transaction) TransactionType() TransactionType { return t.transactionType }
func (t *Transaction) Category() Category               { return t.category }
func (t *Transaction) Amount() decimal.Decimal          { return t.amount }
func (t *Transaction) BalanceBefore() decimal.Decimal   { return t.balanceBefore }
func (t *Transaction) BalanceAfter() decimal.Decimal    { return t.balanceAfter }
func (t *Transaction) Reference() string                { return t.reference }
func (t *Transaction) Description() string              { return t.description }

func (t *Transaction) IsIncome() bool  { return t.amount.IsPositive() }
func (t *Transaction) IsExpense() bool { return t.amount.IsNegative() }

// Data is the persistable form of a transaction
type Data struct {
	ID              TransactionID   `json:"id"`
	Day             int             `json:"day"`
	Timestamp       time.Time       `json:"timestamp"`
	TransactionType TransactionType `json:"type"`
	Category        Category        `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Reference       string          `json:"reference,omitempty"`
	Description     string          `json:"description"`
}

func (t *Transaction) Data() Data {
	return Data{
		ID:              t.id,
		Day:             t.day,
		Timestamp:       t.timestamp,
		TransactionType: t.transactionType,
		Category:        t.category,
		Amount:          t.amount,
		BalanceBefore:   t.balanceBefore,
		BalanceAfter:    t.balanceAfter,
		Reference:       t.reference,
		Description:     t.description,
	}
}

// ReconstructTransaction rebuilds a transaction from persistence and re-checks its invariants
func ReconstructTransaction(d Data) (*Transaction, error) {
	t := &Transaction{
		id:              d.ID,
		day:             d.Day,
		timestamp:       d.Timestamp,
		transactionType: d.TransactionType,
		category:        d.Category,
		amount:          d.Amount,
		balanceBefore:   d.BalanceBefore,
		balanceAfter:    d.BalanceAfter,
		reference:       d.Reference,
		description:     d.Description,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
