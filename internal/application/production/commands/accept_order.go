package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// AcceptOrderCommand accepts a PENDING order, reserving finished stock or materials
type AcceptOrderCommand struct {
	OrderID int
}

type AcceptOrderResponse struct {
	Order     production.Data
	Shortfall map[string]int
}

type AcceptOrderHandler struct {
	session *session.Session
}

func NewAcceptOrderHandler(s *session.Session) *AcceptOrderHandler {
	return &AcceptOrderHandler{session: s}
}

func (h *AcceptOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AcceptOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AcceptOrderCommand")
	}

	var order production.Data
	err := h.session.Execute(ctx, "accept_order", func(e *simulation.Engine) error {
		var err error
		order, err = e.AcceptOrder(cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept order %d: %w", cmd.OrderID, err)
	}

	shortfall := make(map[string]int)
	if !order.FromStock {
		for id, need := range order.Required {
			if missing := need - order.Committed[id]; missing > 0 {
				shortfall[id] = missing
			}
		}
	}
	return &AcceptOrderResponse{Order: order, Shortfall: shortfall}, nil
}
