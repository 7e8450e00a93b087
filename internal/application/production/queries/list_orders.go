package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ListOrdersQuery lists production orders in FIFO order. Statuses filters when
// non-empty; OrderID, when set, returns just that order.
type ListOrdersQuery struct {
	Statuses []string
	OrderID  *int
}

type ListOrdersResponse struct {
	Orders []production.Data
}

type ListOrdersHandler struct {
	session *session.Session
}

func NewListOrdersHandler(s *session.Session) *ListOrdersHandler {
	return &ListOrdersHandler{session: s}
}

func (h *ListOrdersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListOrdersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListOrdersQuery")
	}

	statuses := make([]production.Status, 0, len(query.Statuses))
	for _, s := range query.Statuses {
		st, err := production.ParseStatus(s)
		if err != nil {
			return nil, fmt.Errorf("invalid status: %w", err)
		}
		statuses = append(statuses, st)
	}

	resp := &ListOrdersResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		if query.OrderID != nil {
			o, err := e.Order(*query.OrderID)
			if err != nil {
				return err
			}
			resp.Orders = []production.Data{o}
			return nil
		}
		resp.Orders = e.Orders(statuses...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
