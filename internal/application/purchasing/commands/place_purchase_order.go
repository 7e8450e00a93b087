package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// PlacePurchaseOrderCommand buys Quantity units of a material from a specific provider.
// The quantity is rounded up to the provider's unit size.
type PlacePurchaseOrderCommand struct {
	MaterialID string
	ProviderID string
	Quantity   int
}

type PlacePurchaseOrderResponse struct {
	PurchaseOrder purchasing.Data
}

type PlacePurchaseOrderHandler struct {
	session *session.Session
}

func NewPlacePurchaseOrderHandler(s *session.Session) *PlacePurchaseOrderHandler {
	return &PlacePurchaseOrderHandler{session: s}
}

func (h *PlacePurchaseOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PlacePurchaseOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlacePurchaseOrderCommand")
	}

	var po purchasing.Data
	err := h.session.Execute(ctx, "place_purchase_order", func(e *simulation.Engine) error {
		var err error
		po, err = e.PlacePurchaseOrder(cmd.MaterialID, cmd.ProviderID, cmd.Quantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place purchase order: %w", err)
	}
	return &PlacePurchaseOrderResponse{PurchaseOrder: po}, nil
}
