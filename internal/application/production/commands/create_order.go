package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// CreateOrderCommand opens a PENDING production order on behalf of a customer
type CreateOrderCommand struct {
	ProductID string
	Quantity  int
}

type CreateOrderResponse struct {
	Order production.Data
}

type CreateOrderHandler struct {
	session *session.Session
}

func NewCreateOrderHandler(s *session.Session) *CreateOrderHandler {
	return &CreateOrderHandler{session: s}
}

func (h *CreateOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateOrderCommand")
	}

	var order production.Data
	err := h.session.Execute(ctx, "create_order", func(e *simulation.Engine) error {
		var err error
		order, err = e.CreateOrder(cmd.ProductID, cmd.Quantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &CreateOrderResponse{Order: order}, nil
}
