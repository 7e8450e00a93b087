package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// StartProductionCommand starts each listed order independently, in the given order
type StartProductionCommand struct {
	OrderIDs []int
}

// StartResult is the outcome for one order. Error is empty on success.
type StartResult struct {
	OrderID int
	Order   *production.Data
	Error   string
}

type StartProductionResponse struct {
	Results           []StartResult
	Started           int
	RemainingCapacity int
}

type StartProductionHandler struct {
	session *session.Session
}

func NewStartProductionHandler(s *session.Session) *StartProductionHandler {
	return &StartProductionHandler{session: s}
}

// Handle never fails as a whole because of one order: per-order failures are
// reported in the results.
func (h *StartProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartProductionCommand")
	}
	if len(cmd.OrderIDs) == 0 {
		return nil, fmt.Errorf("at least one order id is required")
	}

	resp := &StartProductionResponse{Results: make([]StartResult, 0, len(cmd.OrderIDs))}
	for _, id := range cmd.OrderIDs {
		var order production.Data
		err := h.session.Execute(ctx, "start_production", func(e *simulation.Engine) error {
			var err error
			order, err = e.StartProduction(id)
			return err
		})
		if errors.Is(err, session.ErrNotInitialized) {
			return nil, err
		}
		result := StartResult{OrderID: id}
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Order = &order
			resp.Started++
		}
		resp.Results = append(resp.Results, result)
	}

	err := h.session.Query(func(e *simulation.Engine) error {
		resp.RemainingCapacity = e.RemainingCapacity()
		return nil
	})
	return resp, err
}
