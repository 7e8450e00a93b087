package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/factorysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/factorysim-go/internal/application/logging"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// AdvanceDayCommand advances the simulation Days times (default 1). Each day is
// atomic on its own: if day k fails, days before k stay applied.
type AdvanceDayCommand struct {
	Days int
}

type AdvanceDayResponse struct {
	Summaries []simulation.DaySummary
}

type AdvanceDayHandler struct {
	session *session.Session
}

func NewAdvanceDayHandler(s *session.Session) *AdvanceDayHandler {
	return &AdvanceDayHandler{session: s}
}

func (h *AdvanceDayHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AdvanceDayCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AdvanceDayCommand")
	}

	days := cmd.Days
	if days == 0 {
		days = 1
	}
	if days < 0 {
		return nil, shared.NewValidationError("days", "must be positive")
	}

	logger := logging.LoggerFromContext(ctx)
	resp := &AdvanceDayResponse{Summaries: make([]simulation.DaySummary, 0, days)}

	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		var summary simulation.DaySummary
		start := time.Now()
		err := h.session.Execute(ctx, "advance_day", func(e *simulation.Engine) error {
			var err error
			summary, err = e.AdvanceDay()
			return err
		})
		if err != nil {
			var dayErr *simulation.DayAdvanceError
			if errors.As(err, &dayErr) {
				metrics.RecordDayAdvanceFailure(h.session.Name(), dayErr.Step)
			}
			return resp, fmt.Errorf("failed to advance day: %w", err)
		}

		metrics.RecordDayAdvanced(h.session.Name(), summary, time.Since(start).Seconds())
		logger.Log(logging.LevelInfo, "day advanced", map[string]interface{}{
			"day":            summary.Day,
			"new_orders":     summary.NewOrders,
			"completed":      summary.CompletedOrders,
			"fulfilled":      summary.FulfilledOrders,
			"arrived_pos":    summary.ArrivedPurchases,
			"balance":        summary.Balance.StringFixed(2),
			"operating_cost": summary.OperationalCost.StringFixed(2),
		})
		resp.Summaries = append(resp.Summaries, summary)
	}

	return resp, nil
}
