package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/factorysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/factorysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/factorysim-go/internal/application/logging"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/application/setup"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/database"
)

// app is everything one CLI invocation needs, wired from configuration
type app struct {
	cfg        *config.Config
	name       string
	logger     logging.Logger
	logOutput  io.Closer
	db         *gorm.DB
	sims       *persistence.GormSimulationRepository
	events     *persistence.GormEventRepository
	txs        *persistence.GormTransactionRepository
	session    *session.Session
	mediator   mediator.Mediator
	collectors *metrics.Collectors
}

type appOptions struct {
	// enableMetrics registers the Prometheus collectors and the command middleware
	enableMetrics bool
}

// openApp loads configuration, connects to the database and restores the
// selected simulation if one has been saved.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}
	if a.name, err = resolveSimulationName(cfg); err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = logging.LevelDebug
	}
	out, closer, err := openLogOutput(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a.logger = logging.NewStdLogger(out, level, cfg.Logging.Format)
	a.logOutput = closer

	a.db, err = database.NewConnection(&cfg.Database)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(a.db); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a.sims = persistence.NewGormSimulationRepository(a.db)
	a.events = persistence.NewGormEventRepository(a.db)
	a.txs = persistence.NewGormTransactionRepository(a.db)

	var middlewares []mediator.Middleware
	if opts.enableMetrics || cfg.Metrics.Enabled {
		if a.collectors, err = metrics.Enable(); err != nil {
			a.close()
			return nil, err
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(a.collectors.Commands))
	}

	a.session = session.New(session.Options{
		Name:         a.name,
		Snapshots:    a.sims,
		Events:       a.events,
		Transactions: a.txs,
		Autosave:     cfg.Simulation.Autosave,
		Logger:       a.logger,
	})
	if err := a.session.Load(ctx); err != nil && !shared.IsKind(err, shared.KindNotFound) {
		a.close()
		return nil, fmt.Errorf("failed to load simulation %q: %w", a.name, err)
	}

	a.mediator, err = setup.NewHandlerRegistry(a.session, a.txs, a.events).CreateConfiguredMediator(middlewares...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to configure handlers: %w", err)
	}
	return a, nil
}

// context returns ctx carrying the app logger
func (a *app) context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// send dispatches a request and turns the uninitialized error into a hint
func (a *app) send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	resp, err := a.mediator.Send(a.context(ctx), request)
	if errors.Is(err, session.ErrNotInitialized) {
		return nil, fmt.Errorf("simulation %q has not been initialized: run 'factorysim init --scenario <file>'", a.name)
	}
	return resp, err
}

// close saves the running simulation, then releases the database and log file
func (a *app) close() {
	if a.session != nil && a.session.Initialized() && (!a.cfg.Simulation.Autosave || a.session.PersistenceErr() != nil) {
		if err := a.session.Save(context.Background()); err != nil {
			a.logger.Log(logging.LevelError, "failed to save simulation", map[string]interface{}{
				"simulation": a.name,
				"error":      err.Error(),
			})
		}
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
	if a.logOutput != nil {
		_ = a.logOutput.Close()
	}
}

// openLogOutput returns the configured log destination. The closer is nil for
// stdout and stderr.
func openLogOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch cfg.Output {
	case "stdout":
		return os.Stdout, nil, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f, nil
	default:
		return os.Stderr, nil, nil
	}
}

// withApp opens the app, runs fn and closes the app
func withApp(ctx context.Context, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()
	if err := fn(a.context(ctx), a); err != nil {
		return err
	}
	return a.flush(ctx)
}

// flush retries a failed autosave so the applied change is not lost. The
// returned error names the operation as applied, not rejected.
func (a *app) flush(ctx context.Context) error {
	if a.session == nil || a.session.PersistenceErr() == nil {
		return nil
	}
	if err := a.session.Save(ctx); err != nil {
		return a.session.PersistenceErr()
	}
	return nil
}
