package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GetFinancialSummaryQuery returns the cumulative position and per-category totals
type GetFinancialSummaryQuery struct{}

type GetFinancialSummaryResponse struct {
	Day            int
	InitialBalance decimal.Decimal
	Summary        ledger.Summary
	ProfitLoss     map[ledger.Category]decimal.Decimal
}

type GetFinancialSummaryHandler struct {
	session *session.Session
}

func NewGetFinancialSummaryHandler(s *session.Session) *GetFinancialSummaryHandler {
	return &GetFinancialSummaryHandler{session: s}
}

func (h *GetFinancialSummaryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetFinancialSummaryQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFinancialSummaryQuery")
	}

	resp := &GetFinancialSummaryResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Day = e.Day()
		resp.InitialBalance = e.Scenario().Financial.InitialBalance
		resp.Summary = e.Summary()
		resp.ProfitLoss = e.ProfitLoss()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFinancialHistoryQuery returns one entry per day from day 0 to today
type GetFinancialHistoryQuery struct{}

type GetFinancialHistoryResponse struct {
	Days []ledger.DailyPerformance
}

type GetFinancialHistoryHandler struct {
	session *session.Session
}

func NewGetFinancialHistoryHandler(s *session.Session) *GetFinancialHistoryHandler {
	return &GetFinancialHistoryHandler{session: s}
}

func (h *GetFinancialHistoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetFinancialHistoryQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFinancialHistoryQuery")
	}

	resp := &GetFinancialHistoryResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		resp.Days = e.FinancialHistory()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFinancialForecastQuery projects the balance Days days ahead
type GetFinancialForecastQuery struct {
	Days int
}

type GetFinancialForecastResponse struct {
	Points []ledger.ForecastPoint
}

type GetFinancialForecastHandler struct {
	session *session.Session
}

func NewGetFinancialForecastHandler(s *session.Session) *GetFinancialForecastHandler {
	return &GetFinancialForecastHandler{session: s}
}

func (h *GetFinancialForecastHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetFinancialForecastQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetFinancialForecastQuery")
	}

	resp := &GetFinancialForecastResponse{}
	err := h.session.Query(func(e *simulation.Engine) error {
		var err error
		resp.Points, err = e.FinancialForecast(query.Days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
