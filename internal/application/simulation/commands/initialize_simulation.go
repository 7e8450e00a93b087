package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// InitializeSimulationCommand discards the current simulation and starts the scenario at day 0
type InitializeSimulationCommand struct {
	Scenario simulation.Scenario
}

type InitializeSimulationResponse struct {
	Status simulation.Status
}

type InitializeSimulationHandler struct {
	session *session.Session
}

func NewInitializeSimulationHandler(s *session.Session) *InitializeSimulationHandler {
	return &InitializeSimulationHandler{session: s}
}

func (h *InitializeSimulationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*InitializeSimulationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *InitializeSimulationCommand")
	}

	if err := h.session.Initialize(ctx, cmd.Scenario); err != nil {
		return nil, fmt.Errorf("failed to initialize simulation: %w", err)
	}

	resp := &InitializeSimulationResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Status = e.Status()
		return nil
	})
	return resp, err
}
