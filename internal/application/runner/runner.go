// Package runner advances a simulation continuously at a paced rate until
// its context is cancelled, a day limit is reached or a day fails.
package runner

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/factorysim-go/internal/application/logging"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	simulationCommands "github.com/andrescamacho/factorysim-go/internal/application/simulation/commands"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// Options configures pacing. MaxDays <= 0 runs until cancelled.
type Options struct {
	DaysPerSecond float64
	Burst         int
	MaxDays       int
}

// Result summarizes a finished run
type Result struct {
	DaysAdvanced int
	LastDay      simulation.DaySummary
}

type Runner struct {
	mediator mediator.Mediator
	limiter  *rate.Limiter
	maxDays  int
	onDay    func(simulation.DaySummary)
}

func New(m mediator.Mediator, opts Options) *Runner {
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(opts.DaysPerSecond)
	if opts.DaysPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Runner{
		mediator: m,
		limiter:  rate.NewLimiter(limit, burst),
		maxDays:  opts.MaxDays,
	}
}

// OnDay registers a callback invoked after each successful day
func (r *Runner) OnDay(fn func(simulation.DaySummary)) {
	r.onDay = fn
}

// Run blocks until ctx is done, MaxDays days have passed or a day advance
// fails. Cancellation is a normal stop and returns a nil error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	logger := logging.LoggerFromContext(ctx)
	var res Result

	for r.maxDays <= 0 || res.DaysAdvanced < r.maxDays {
		if err := r.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return res, nil
			}
			return res, fmt.Errorf("pacing: %w", err)
		}

		resp, err := r.mediator.Send(ctx, &simulationCommands.AdvanceDayCommand{Days: 1})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res, nil
			}
			logger.Log(logging.LevelError, "runner stopped", map[string]interface{}{
				"days_advanced": res.DaysAdvanced,
				"error":         err.Error(),
			})
			return res, err
		}

		advanced, ok := resp.(*simulationCommands.AdvanceDayResponse)
		if !ok || len(advanced.Summaries) == 0 {
			return res, fmt.Errorf("unexpected advance response %T", resp)
		}
		res.DaysAdvanced++
		res.LastDay = advanced.Summaries[len(advanced.Summaries)-1]
		if r.onDay != nil {
			r.onDay(res.LastDay)
		}
	}
	return res, nil
}
