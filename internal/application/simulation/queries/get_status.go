package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GetStatusQuery returns the one-screen factory overview
type GetStatusQuery struct{}

type GetStatusResponse struct {
	Simulation string
	Status     simulation.Status
}

type GetStatusHandler struct {
	session *session.Session
}

func NewGetStatusHandler(s *session.Session) *GetStatusHandler {
	return &GetStatusHandler{session: s}
}

func (h *GetStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetStatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatusQuery")
	}

	resp := &GetStatusResponse{Simulation: h.session.Name()}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Status = e.Status()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
