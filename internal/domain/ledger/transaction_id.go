package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// TransactionID is a value object representing a transaction's unique identifier
type TransactionID struct {
	value string
}

// NewTransactionID creates a new TransactionID with a generated UUID
func NewTransactionID() TransactionID {
	return TransactionID{value: uuid.NewString()}
}

// ParseTransactionID validates an existing UUID string
func ParseTransactionID(id string) (TransactionID, error) {
	if id == "" {
		return TransactionID{}, fmt.Errorf("transaction_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return TransactionID{}, fmt.Errorf("invalid transaction_id format: %w", err)
	}
	return TransactionID{value: id}, nil
}

func (t TransactionID) String() string {
	return t.value
}

func (t TransactionID) IsZero() bool {
	return t.value == ""
}

func (t TransactionID) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

func (t *TransactionID) UnmarshalText(b []byte) error {
	id, err := ParseTransactionID(string(b))
	if err != nil {
		return err
	}
	*t = id
	return nil
}
