package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/catalog"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ListPurchaseOrdersQuery lists purchase orders by id, optionally filtered by status
type ListPurchaseOrdersQuery struct {
	Statuses []string
}

type ListPurchaseOrdersResponse struct {
	PurchaseOrders []purchasing.Data
}

type ListPurchaseOrdersHandler struct {
	session *session.Session
}

func NewListPurchaseOrdersHandler(s *session.Session) *ListPurchaseOrdersHandler {
	return &ListPurchaseOrdersHandler{session: s}
}

func (h *ListPurchaseOrdersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListPurchaseOrdersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPurchaseOrdersQuery")
	}

	statuses := make([]purchasing.Status, 0, len(query.Statuses))
	for _, s := range query.Statuses {
		st, err := purchasing.ParseStatus(s)
		if err != nil {
			return nil, fmt.Errorf("invalid status: %w", err)
		}
		statuses = append(statuses, st)
	}

	resp := &ListPurchaseOrdersResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.PurchaseOrders = e.PurchaseOrders(statuses...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListQuotesQuery lists every provider offering for a material, cheapest first
type ListQuotesQuery struct {
	MaterialID string
}

type ListQuotesResponse struct {
	Quotes []catalog.Quote
}

type ListQuotesHandler struct {
	session *session.Session
}

func NewListQuotesHandler(s *session.Session) *ListQuotesHandler {
	return &ListQuotesHandler{session: s}
}

func (h *ListQuotesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListQuotesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListQuotesQuery")
	}

	resp := &ListQuotesResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		if _, err := e.Catalog().Material(query.MaterialID); err != nil {
			return err
		}
		resp.Quotes = e.Catalog().Quotes(query.MaterialID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
