package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ImportSimulationCommand replaces the running simulation with an exported snapshot
type ImportSimulationCommand struct {
	Snapshot *simulation.Snapshot
}

type ImportSimulationResponse struct {
	Status simulation.Status
}

type ImportSimulationHandler struct {
	session *session.Session
}

func NewImportSimulationHandler(s *session.Session) *ImportSimulationHandler {
	return &ImportSimulationHandler{session: s}
}

func (h *ImportSimulationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ImportSimulationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportSimulationCommand")
	}
	if cmd.Snapshot == nil {
		return nil, fmt.Errorf("snapshot is required")
	}

	if err := h.session.Import(ctx, cmd.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to import simulation: %w", err)
	}

	resp := &ImportSimulationResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Status = e.Status()
		return nil
	})
	return resp, err
}
