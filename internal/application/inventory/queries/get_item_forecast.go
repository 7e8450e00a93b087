package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GetItemForecastQuery projects one item's stock over the next Days days
type GetItemForecastQuery struct {
	ItemID string
	Days   int
}

type GetItemForecastResponse struct {
	ItemID string
	Points []simulation.ItemForecastPoint
}

type GetItemForecastHandler struct {
	session *session.Session
}

func NewGetItemForecastHandler(s *session.Session) *GetItemForecastHandler {
	return &GetItemForecastHandler{session: s}
}

func (h *GetItemForecastHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetItemForecastQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetItemForecastQuery")
	}

	resp := &GetItemForecastResponse{ItemID: query.ItemID}
	err := h.session.Query(func(e *simulation.Engine) error {
		var err error
		resp.Points, err = e.ItemForecast(query.ItemID, query.Days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
