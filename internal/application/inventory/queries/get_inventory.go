package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GetInventoryQuery returns stock positions for every item, or one item when ItemID is set
type GetInventoryQuery struct {
	ItemID string
}

type GetInventoryResponse struct {
	Items           []simulation.InventoryItem
	TotalUnits      int
	StorageCapacity int
}

type GetInventoryHandler struct {
	session *session.Session
}

func NewGetInventoryHandler(s *session.Session) *GetInventoryHandler {
	return &GetInventoryHandler{session: s}
}

func (h *GetInventoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetInventoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetInventoryQuery")
	}

	resp := &GetInventoryResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		status := e.Status()
		resp.TotalUnits = status.TotalUnits
		resp.StorageCapacity = status.StorageCapacity

		if query.ItemID == "" {
			resp.Items = e.InventoryStatus()
			return nil
		}
		item, err := e.InventoryItem(query.ItemID)
		if err != nil {
			return err
		}
		resp.Items = []simulation.InventoryItem{item}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
