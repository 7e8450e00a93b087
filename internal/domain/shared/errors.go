package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies domain failures so callers can react without string matching
type ErrorKind string

const (
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindInsufficientFunds      ErrorKind = "INSUFFICIENT_FUNDS"
	KindCapacityExceeded       ErrorKind = "CAPACITY_EXCEEDED"
	KindMaterialsShortage      ErrorKind = "MATERIALS_SHORTAGE"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvariantViolation     ErrorKind = "INVARIANT_VIOLATION"
	KindValidation             ErrorKind = "VALIDATION"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// ErrorKind exposes the classification of the error
func (e *DomainError) ErrorKind() ErrorKind {
	return e.Kind
}

func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

type kinded interface {
	ErrorKind() ErrorKind
}

// KindOf returns the kind of the first classified error in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return ""
}

// IsKind reports whether err (or anything it wraps) is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Inventory errors

type InsufficientStockError struct {
	*DomainError
	ItemID    string
	Requested int
	Available int
}

func NewInsufficientStockError(itemID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		DomainError: NewDomainError(KindInsufficientStock,
			fmt.Sprintf("insufficient stock of %s: requested %d, available %d", itemID, requested, available)),
		ItemID:    itemID,
		Requested: requested,
		Available: available,
	}
}

// Financial errors

type InsufficientFundsError struct {
	*DomainError
	Required decimal.Decimal
	Balance  decimal.Decimal
}

func NewInsufficientFundsError(required, balance decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{
		DomainError: NewDomainError(KindInsufficientFunds,
			fmt.Sprintf("insufficient funds: need %s, have %s", required.StringFixed(2), balance.StringFixed(2))),
		Required: required,
		Balance:  balance,
	}
}

// Capacity errors

type CapacityExceededError struct {
	*DomainError
	Resource  string
	Requested int
	Remaining int
}

func NewCapacityExceededError(resource string, requested, remaining int) *CapacityExceededError {
	return &CapacityExceededError{
		DomainError: NewDomainError(KindCapacityExceeded,
			fmt.Sprintf("%s capacity exceeded: requested %d, remaining %d", resource, requested, remaining)),
		Resource:  resource,
		Requested: requested,
		Remaining: remaining,
	}
}

// Production errors

type MaterialsShortageError struct {
	*DomainError
	OrderID   int
	Shortfall map[string]int
}

func NewMaterialsShortageError(orderID int, shortfall map[string]int) *MaterialsShortageError {
	ids := make([]string, 0, len(shortfall))
	for id := range shortfall {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, shortfall[id]))
	}
	return &MaterialsShortageError{
		DomainError: NewDomainError(KindMaterialsShortage,
			fmt.Sprintf("order %d is short of materials: %s", orderID, strings.Join(parts, ", "))),
		OrderID:   orderID,
		Shortfall: shortfall,
	}
}

type InvalidStateTransitionError struct {
	*DomainError
	Entity string
	ID     string
	From   string
	To     string
}

func NewInvalidStateTransitionError(entity, id, from, to, reason string) *InvalidStateTransitionError {
	msg := fmt.Sprintf("invalid %s transition for %s: %s -> %s", entity, id, from, to)
	if reason != "" {
		msg += ": " + reason
	}
	return &InvalidStateTransitionError{
		DomainError: NewDomainError(KindInvalidStateTransition, msg),
		Entity:      entity,
		ID:          id,
		From:        from,
		To:          to,
	}
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(KindNotFound, fmt.Sprintf("%s not found: %s", entity, id)),
		Entity:      entity,
		ID:          id,
	}
}

// InvariantViolationError signals corrupted state. Callers must abort and surface it.
type InvariantViolationError struct {
	*DomainError
	Invariant string
}

func NewInvariantViolationError(invariant, detail string) *InvariantViolationError {
	return &InvariantViolationError{
		DomainError: NewDomainError(KindInvariantViolation,
			fmt.Sprintf("invariant violated (%s): %s", invariant, detail)),
		Invariant: invariant,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) ErrorKind() ErrorKind {
	return KindValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
