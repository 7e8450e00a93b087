package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// CancelPurchaseOrderCommand cancels a PENDING purchase order. Payment is not refunded.
type CancelPurchaseOrderCommand struct {
	PurchaseOrderID int
}

type CancelPurchaseOrderResponse struct {
	PurchaseOrder purchasing.Data
}

type CancelPurchaseOrderHandler struct {
	session *session.Session
}

func NewCancelPurchaseOrderHandler(s *session.Session) *CancelPurchaseOrderHandler {
	return &CancelPurchaseOrderHandler{session: s}
}

func (h *CancelPurchaseOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelPurchaseOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelPurchaseOrderCommand")
	}

	var po purchasing.Data
	err := h.session.Execute(ctx, "cancel_purchase_order", func(e *simulation.Engine) error {
		var err error
		po, err = e.CancelPurchaseOrder(cmd.PurchaseOrderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order %d: %w", cmd.PurchaseOrderID, err)
	}
	return &CancelPurchaseOrderResponse{PurchaseOrder: po}, nil
}
