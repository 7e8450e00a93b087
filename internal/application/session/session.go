// Package session owns the single running simulation engine of a process and
// serializes access to it. Mutations take an exclusive lock, queries a shared
// one. After every successful mutation the session mirrors new transactions,
// autosaves the snapshot and refreshes metrics.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrescamacho/factorysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/factorysim-go/internal/application/logging"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ErrNotInitialized is returned by operations issued before Initialize, Load or Import
var ErrNotInitialized = errors.New("simulation not initialized")

// PersistenceError reports an applied operation whose result could not be
// stored. The engine keeps the result and the next mutation or Save retries.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("operation %s applied but not persisted: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Options configures a Session. Every repository is optional.
type Options struct {
	Name         string
	Snapshots    simulation.SnapshotRepository
	Events       simulation.EventRepository
	Transactions ledger.TransactionRepository
	Autosave     bool
	Clock        shared.Clock
	Logger       logging.Logger
}

type Session struct {
	mu     sync.RWMutex
	opts   Options
	engine *simulation.Engine

	// mirrored counts the transactions already appended to opts.Transactions
	mirrored int

	// unsaved holds the last persistence failure until a later write succeeds
	unsaved *PersistenceError
}

func New(opts Options) *Session {
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOp()
	}
	return &Session{opts: opts}
}

func (s *Session) Name() string { return s.opts.Name }

// Initialized reports whether an engine is loaded
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine != nil
}

// Initialize discards any current simulation and its stored history and
// starts a fresh one at day 0.
func (s *Session) Initialize(ctx context.Context, scenario simulation.Scenario) error {
	if _, err := scenario.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clearHistory(ctx); err != nil {
		return err
	}
	engine, err := simulation.New(scenario, s.engineOptions()...)
	if err != nil {
		return err
	}
	s.engine = engine
	s.mirrored = 0

	s.opts.Logger.Log(logging.LevelInfo, "simulation initialized", map[string]interface{}{
		"simulation": s.opts.Name,
		"scenario":   scenario.Name,
		"balance":    scenario.Financial.InitialBalance.StringFixed(2),
	})
	return s.afterMutation(ctx, true)
}

// Load restores the simulation from the snapshot repository
func (s *Session) Load(ctx context.Context) error {
	if s.opts.Snapshots == nil {
		return fmt.Errorf("no snapshot repository configured")
	}
	snap, err := s.opts.Snapshots.Load(ctx, s.opts.Name)
	if err != nil {
		return err
	}
	engine, err := simulation.Restore(snap, s.engineOptions()...)
	if err != nil {
		return err
	}

	mirrored := len(engine.Transactions())
	if s.opts.Transactions != nil {
		if mirrored, err = s.opts.Transactions.CountBySimulation(ctx, s.opts.Name, ledger.QueryOptions{}); err != nil {
			return fmt.Errorf("count mirrored transactions: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
	s.mirrored = mirrored
	metrics.RecordSimulationState(s.opts.Name, engine.Status(), engine.InventoryStatus())
	return nil
}

// Import replaces the running simulation with one rebuilt from snap
func (s *Session) Import(ctx context.Context, snap *simulation.Snapshot) error {
	engine, err := simulation.Restore(snap, s.engineOptions()...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clearHistory(ctx); err != nil {
		return err
	}
	if s.opts.Events != nil && len(snap.Events) > 0 {
		if err := s.opts.Events.Append(ctx, s.opts.Name, snap.Events); err != nil {
			return fmt.Errorf("store imported events: %w", err)
		}
	}
	s.engine = engine
	s.mirrored = 0

	s.opts.Logger.Log(logging.LevelInfo, "simulation imported", map[string]interface{}{
		"simulation": s.opts.Name,
		"day":        snap.Day,
	})
	return s.afterMutation(ctx, true)
}

// Export returns a snapshot of the running simulation
func (s *Session) Export() (*simulation.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNotInitialized
	}
	return s.engine.Snapshot()
}

// Execute runs fn under the exclusive lock. The engine guarantees fn either
// applies fully or not at all, and only a rejection is returned. When storing
// an applied result fails, Execute still returns nil; the failure is logged and
// kept in PersistenceErr until a later write succeeds.
func (s *Session) Execute(ctx context.Context, operation string, fn func(*simulation.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return ErrNotInitialized
	}

	logger := s.logger(ctx)
	if err := fn(s.engine); err != nil {
		level := logging.LevelWarn
		if shared.IsKind(err, shared.KindInvariantViolation) {
			level = logging.LevelError
		}
		logger.Log(level, "operation rejected", map[string]interface{}{
			"simulation": s.opts.Name,
			"operation":  operation,
			"error":      err.Error(),
		})
		return err
	}

	logger.Log(logging.LevelDebug, "operation applied", map[string]interface{}{
		"simulation": s.opts.Name,
		"operation":  operation,
		"day":        s.engine.Day(),
	})
	if err := s.afterMutation(ctx, s.opts.Autosave); err != nil {
		s.unsaved = &PersistenceError{Operation: operation, Err: err}
		logger.Log(logging.LevelError, "operation applied but not persisted", map[string]interface{}{
			"simulation": s.opts.Name,
			"operation":  operation,
			"error":      err.Error(),
		})
	}
	return nil
}

// PersistenceErr returns the pending persistence failure, or nil when every
// applied operation has been stored
func (s *Session) PersistenceErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unsaved == nil {
		return nil
	}
	return s.unsaved
}

// Query runs fn under the shared lock. fn must not mutate the engine.
func (s *Session) Query(fn func(*simulation.Engine) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return ErrNotInitialized
	}
	return fn(s.engine)
}

// Save mirrors pending transactions and writes the current snapshot
// regardless of the autosave setting
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return ErrNotInitialized
	}
	if err := s.mirrorTransactions(ctx); err != nil {
		return err
	}
	if err := s.saveSnapshot(ctx); err != nil {
		return err
	}
	s.unsaved = nil
	return nil
}

func (s *Session) afterMutation(ctx context.Context, save bool) error {
	if err := s.mirrorTransactions(ctx); err != nil {
		return err
	}
	if save {
		if err := s.saveSnapshot(ctx); err != nil {
			return err
		}
	}
	s.unsaved = nil
	metrics.RecordSimulationState(s.opts.Name, s.engine.Status(), s.engine.InventoryStatus())
	return nil
}

func (s *Session) mirrorTransactions(ctx context.Context) error {
	all := s.engine.Transactions()
	if s.mirrored >= len(all) {
		return nil
	}
	fresh := all[s.mirrored:]
	metrics.RecordTransactions(s.opts.Name, fresh)

	if s.opts.Transactions != nil {
		batch := make([]*ledger.Transaction, 0, len(fresh))
		for _, d := range fresh {
			tx, err := ledger.ReconstructTransaction(d)
			if err != nil {
				return fmt.Errorf("mirror transaction %s: %w", d.ID, err)
			}
			batch = append(batch, tx)
		}
		if err := s.opts.Transactions.Append(ctx, s.opts.Name, batch); err != nil {
			return fmt.Errorf("mirror transactions: %w", err)
		}
	}
	s.mirrored = len(all)
	return nil
}

func (s *Session) saveSnapshot(ctx context.Context) error {
	if s.opts.Snapshots == nil {
		return nil
	}
	snap, err := s.engine.Snapshot()
	if err != nil {
		return err
	}
	if err := s.opts.Snapshots.Save(ctx, s.opts.Name, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Session) clearHistory(ctx context.Context) error {
	if s.opts.Events != nil {
		if err := s.opts.Events.DeleteBySimulation(ctx, s.opts.Name); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
	}
	if s.opts.Transactions != nil {
		if err := s.opts.Transactions.DeleteBySimulation(ctx, s.opts.Name); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
	}
	return nil
}

func (s *Session) engineOptions() []simulation.Option {
	opts := []simulation.Option{simulation.WithClock(s.opts.Clock)}
	if s.opts.Events != nil {
		opts = append(opts, simulation.WithEventSink(&eventSink{repo: s.opts.Events, name: s.opts.Name}, s.onSinkError))
	}
	return opts
}

func (s *Session) onSinkError(err error) {
	s.opts.Logger.Log(logging.LevelError, "event sink failed", map[string]interface{}{
		"simulation": s.opts.Name,
		"error":      err.Error(),
	})
}

func (s *Session) logger(ctx context.Context) logging.Logger {
	return logging.LoggerFromContextOr(ctx, s.opts.Logger)
}

// eventSink forwards committed engine events to the event repository
type eventSink struct {
	repo simulation.EventRepository
	name string
}

func (s *eventSink) Publish(events []simulation.Event) error {
	return s.repo.Append(context.Background(), s.name, events)
}
