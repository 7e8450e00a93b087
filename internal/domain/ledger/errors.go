package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction represents validation errors for transactions
type ErrInvalidTransaction struct {
	Field  string
	Reason string
}

func (e *ErrInvalidTransaction) Error() string {
	return fmt.Sprintf("invalid transaction: %s - %s", e.Field, e.Reason)
}

// ErrBalanceInvariantViolation means balance_before + amount != balance_after
type ErrBalanceInvariantViolation struct {
	BalanceBefore decimal.Decimal
	Amount        decimal.Decimal
	BalanceAfter  decimal.Decimal
	Expected      decimal.Decimal
}

func (e *ErrBalanceInvariantViolation) Error() string {
	return fmt.Sprintf("balance invariant violated: balance_before=%s + amount=%s should equal %s, but got %s",
		e.BalanceBefore, e.Amount, e.Expected, e.BalanceAfter)
}

// ErrTransactionNotFound represents errors when a transaction cannot be found
type ErrTransactionNotFound struct {
	ID         string
	Simulation string
}

func (e *ErrTransactionNotFound) Error() string {
	return fmt.Sprintf("transaction not found: id=%s, simulation=%s", e.ID, e.Simulation)
}
