package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ExportSimulationQuery returns the complete simulation state
type ExportSimulationQuery struct{}

type ExportSimulationResponse struct {
	Snapshot *simulation.Snapshot
}

type ExportSimulationHandler struct {
	session *session.Session
}

func NewExportSimulationHandler(s *session.Session) *ExportSimulationHandler {
	return &ExportSimulationHandler{session: s}
}

func (h *ExportSimulationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ExportSimulationQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExportSimulationQuery")
	}

	snap, err := h.session.Export()
	if err != nil {
		return nil, fmt.Errorf("failed to export simulation: %w", err)
	}
	return &ExportSimulationResponse{Snapshot: snap}, nil
}
