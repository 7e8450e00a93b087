package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// FulfillOrderCommand ships a COMPLETED order, or an ACCEPTED order served from stock
type FulfillOrderCommand struct {
	OrderID int
}

type FulfillOrderResponse struct {
	Order production.Data
}

type FulfillOrderHandler struct {
	session *session.Session
}

func NewFulfillOrderHandler(s *session.Session) *FulfillOrderHandler {
	return &FulfillOrderHandler{session: s}
}

func (h *FulfillOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*FulfillOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FulfillOrderCommand")
	}

	var order production.Data
	err := h.session.Execute(ctx, "fulfill_order", func(e *simulation.Engine) error {
		var err error
		order, err = e.FulfillOrder(cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fulfill order %d: %w", cmd.OrderID, err)
	}
	return &FulfillOrderResponse{Order: order}, nil
}
