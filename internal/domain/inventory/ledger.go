package inventory

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// Ledger holds the stock records of every catalogued item.
// Operations either apply fully or return an error without mutating anything.
type Ledger struct {
	records map[string]*Record
}

// NewLedger creates a record for each item, seeded with the given physical stock
func NewLedger(itemIDs []string, initial map[string]int) (*Ledger, error) {
	l := &Ledger{records: make(map[string]*Record, len(itemIDs))}
	for _, id := range itemIDs {
		l.records[id] = &Record{ItemID: id}
	}
	for id, qty := range initial {
		rec, ok := l.records[id]
		if !ok {
			return nil, shared.NewNotFoundError("item", id)
		}
		if qty < 0 {
			return nil, shared.NewValidationError("initial_inventory", fmt.Sprintf("%s cannot be negative", id))
		}
		rec.Physical = qty
	}
	return l, nil
}

// RestoreLedger rebuilds a ledger from persisted records, rejecting corrupt state
func RestoreLedger(records []Record) (*Ledger, error) {
	l := &Ledger{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		rec := r
		l.records[r.ItemID] = &rec
	}
	if err := l.CheckInvariants(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) record(itemID string, qty int) (*Record, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("quantity", fmt.Sprintf("must be positive, got %d", qty))
	}
	rec, ok := l.records[itemID]
	if !ok {
		return nil, shared.NewNotFoundError("item", itemID)
	}
	return rec, nil
}

// Reserve commits qty units of uncommitted physical stock
func (l *Ledger) Reserve(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	if rec.Available() < qty {
		return shared.NewInsufficientStockError(itemID, qty, rec.Available())
	}
	rec.Committed += qty
	return nil
}

// Release returns committed stock to the available pool; committed never drops below zero
func (l *Ledger) Release(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	rec.Committed -= qty
	if rec.Committed < 0 {
		rec.Committed = 0
	}
	return nil
}

// CanConsume checks Consume's precondition without mutating
func (l *Ledger) CanConsume(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	if qty > rec.Committed {
		return shared.NewInvariantViolationError("consume<=committed",
			fmt.Sprintf("consume %d of %s exceeds committed %d", qty, itemID, rec.Committed))
	}
	return nil
}

// Consume removes committed stock from the building
func (l *Ledger) Consume(itemID string, qty int) error {
	if err := l.CanConsume(itemID, qty); err != nil {
		return err
	}
	rec := l.records[itemID]
	rec.Physical -= qty
	rec.Committed -= qty
	return nil
}

// AddOnOrder records stock that has been purchased but not delivered
func (l *Ledger) AddOnOrder(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	rec.OnOrder += qty
	return nil
}

// CancelOnOrder withdraws an undelivered purchase
func (l *Ledger) CancelOnOrder(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	if rec.OnOrder < qty {
		return shared.NewInvariantViolationError("on_order>=0",
			fmt.Sprintf("cancel %d of %s exceeds on order %d", qty, itemID, rec.OnOrder))
	}
	rec.OnOrder -= qty
	return nil
}

// Receive moves delivered stock from on-order into physical stock
func (l *Ledger) Receive(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	if rec.OnOrder < qty {
		return shared.NewInvariantViolationError("on_order>=0",
			fmt.Sprintf("receive %d of %s exceeds on order %d", qty, itemID, rec.OnOrder))
	}
	rec.OnOrder -= qty
	rec.Physical += qty
	return nil
}

// AddProduced books finished output into physical stock
func (l *Ledger) AddProduced(itemID string, qty int) error {
	rec, err := l.record(itemID, qty)
	if err != nil {
		return err
	}
	rec.Physical += qty
	return nil
}

// Record returns a copy of an item's stock position
func (l *Ledger) Record(itemID string) (Record, error) {
	rec, ok := l.records[itemID]
	if !ok {
		return Record{}, shared.NewNotFoundError("item", itemID)
	}
	return *rec, nil
}

// Available returns uncommitted physical stock, or 0 for unknown items
func (l *Ledger) Available(itemID string) int {
	if rec, ok := l.records[itemID]; ok {
		return rec.Available()
	}
	return 0
}

// Records returns copies of all records ordered by item id
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// TotalPhysical is the number of units occupying storage
func (l *Ledger) TotalPhysical() int {
	total := 0
	for _, rec := range l.records {
		total += rec.Physical
	}
	return total
}

// CheckInvariants verifies every record is internally consistent
func (l *Ledger) CheckInvariants() error {
	for _, rec := range l.Records() {
		switch {
		case rec.Physical < 0:
			return shared.NewInvariantViolationError("physical>=0",
				fmt.Sprintf("%s physical is %d", rec.ItemID, rec.Physical))
		case rec.Committed < 0 || rec.Committed > rec.Physical:
			return shared.NewInvariantViolationError("0<=committed<=physical",
				fmt.Sprintf("%s committed %d, physical %d", rec.ItemID, rec.Committed, rec.Physical))
		case rec.OnOrder < 0:
			return shared.NewInvariantViolationError("on_order>=0",
				fmt.Sprintf("%s on order is %d", rec.ItemID, rec.OnOrder))
		}
	}
	return nil
}
