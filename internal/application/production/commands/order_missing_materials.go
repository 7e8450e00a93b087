package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// OrderMissingMaterialsCommand buys an order's uncovered materials from the cheapest affordable providers
type OrderMissingMaterialsCommand struct {
	OrderID int
}

type OrderMissingMaterialsResponse struct {
	Placed  []purchasing.Data
	Skipped map[string]int
}

type OrderMissingMaterialsHandler struct {
	session *session.Session
}

func NewOrderMissingMaterialsHandler(s *session.Session) *OrderMissingMaterialsHandler {
	return &OrderMissingMaterialsHandler{session: s}
}

func (h *OrderMissingMaterialsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*OrderMissingMaterialsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *OrderMissingMaterialsCommand")
	}

	var outcome simulation.PurchaseOutcome
	err := h.session.Execute(ctx, "order_missing_materials", func(e *simulation.Engine) error {
		var err error
		outcome, err = e.OrderMissingMaterials(cmd.OrderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to order materials for order %d: %w", cmd.OrderID, err)
	}
	return &OrderMissingMaterialsResponse{Placed: outcome.Placed, Skipped: outcome.Skipped}, nil
}
