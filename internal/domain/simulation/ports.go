package simulation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SavedSimulation describes a stored snapshot without loading it
type SavedSimulation struct {
	Name      string
	Day       int
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

// SnapshotRepository persists whole-engine snapshots keyed by simulation name
type SnapshotRepository interface {
	Save(ctx context.Context, name string, snap *Snapshot) error

	// Load returns a shared.NotFoundError when no snapshot exists
	Load(ctx context.Context, name string) (*Snapshot, error)

	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]SavedSimulation, error)
}

// EventRepository keeps a queryable history of committed events
type EventRepository interface {
	Append(ctx context.Context, simulation string, events []Event) error

	// FindBySimulation returns the newest events first. A limit <= 0 returns all.
	FindBySimulation(ctx context.Context, simulation string, limit int, categories ...EventCategory) ([]Event, error)

	DeleteBySimulation(ctx context.Context, simulation string) error
}
