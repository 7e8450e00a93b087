package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ListEventsQuery returns the most recent events, oldest first.
// Limit <= 0 returns the whole log.
type ListEventsQuery struct {
	Limit      int
	Categories []string
}

type ListEventsResponse struct {
	Events []simulation.Event
}

// ListEventsHandler reads from the event repository when one is configured and
// from the in-memory log otherwise.
type ListEventsHandler struct {
	session *session.Session
	repo    simulation.EventRepository
}

func NewListEventsHandler(s *session.Session, repo simulation.EventRepository) *ListEventsHandler {
	return &ListEventsHandler{session: s, repo: repo}
}

func (h *ListEventsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListEventsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListEventsQuery")
	}

	categories := make([]simulation.EventCategory, len(query.Categories))
	for i, c := range query.Categories {
		categories[i] = simulation.EventCategory(c)
	}

	if h.repo != nil {
		events, err := h.repo.FindBySimulation(ctx, h.session.Name(), query.Limit, categories...)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
		// repository returns newest first
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
		return &ListEventsResponse{Events: events}, nil
	}

	resp := &ListEventsResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Events = e.Events(query.Limit, categories...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
