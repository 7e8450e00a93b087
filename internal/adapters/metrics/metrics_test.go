package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

type AdvanceDayCommand struct{}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "AdvanceDayCommand", extractCommandName(&AdvanceDayCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}

func TestPrometheusMiddleware_RecordsOutcome(t *testing.T) {
	collector := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(collector)
	ok := func(ctx context.Context, r mediator.Request) (mediator.Response, error) { return "done", nil }
	fail := func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	}

	_, err := mw(context.Background(), &AdvanceDayCommand{}, ok)
	require.NoError(t, err)
	_, err = mw(context.Background(), &AdvanceDayCommand{}, fail)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("AdvanceDayCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("AdvanceDayCommand", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.rejections.WithLabelValues("AdvanceDayCommand", "UNCLASSIFIED")))
}

func TestPrometheusMiddleware_CountsRejectionsByKind(t *testing.T) {
	collector := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(collector)
	rejected := func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, fmt.Errorf("start ORD-1: %w", shared.NewCapacityExceededError("daily production", 6, 4))
	}

	for i := 0; i < 2; i++ {
		_, err := mw(context.Background(), &AdvanceDayCommand{}, rejected)
		require.Error(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.rejections.WithLabelValues("AdvanceDayCommand", "CAPACITY_EXCEEDED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.rejections.WithLabelValues("AdvanceDayCommand", "UNCLASSIFIED")))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := PrometheusMiddleware(nil)

	resp, err := mw(context.Background(), &AdvanceDayCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", resp)
}

func TestSimulationMetricsCollector_RecordState(t *testing.T) {
	c := NewSimulationMetricsCollector()
	status := simulation.Status{
		Day:                3,
		Balance:            decimal.RequireFromString("1234.50"),
		StorageUtilization: 12.5,
		RemainingCapacity:  4,
		OrdersByStatus:     map[production.Status]int{production.StatusAccepted: 2},
	}
	inv := []simulation.InventoryItem{{Record: inventory.Record{ItemID: "mat-wood", Physical: 40, Committed: 10, OnOrder: 5}}}

	c.RecordState("sim", status, inv)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.day.WithLabelValues("sim")))
	assert.Equal(t, 1234.5, testutil.ToFloat64(c.balance.WithLabelValues("sim")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ordersByStatus.WithLabelValues("sim", "ACCEPTED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ordersByStatus.WithLabelValues("sim", "PENDING")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.inventoryUnits.WithLabelValues("sim", "mat-wood", "committed")))
}

func TestSimulationMetricsCollector_DayAdvances(t *testing.T) {
	c := NewSimulationMetricsCollector()

	c.RecordDayAdvanced("sim", simulation.DaySummary{NewOrders: 2, CompletedOrders: 1}, 0.001)
	c.RecordDayAdvanceFailure("sim", simulation.StepGenerateDemand)
	c.RecordTransactions("sim", []ledger.Data{{TransactionType: ledger.TransactionTypePurchase, Category: ledger.CategoryMaterialCosts, Amount: decimal.NewFromInt(-50)}})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.daysAdvanced.WithLabelValues("sim")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ordersGenerated.WithLabelValues("sim")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dayAdvanceFailures.WithLabelValues("sim", "generate_demand")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactionsTotal.WithLabelValues("sim", "PURCHASE", "MATERIAL_COSTS")))
}

func TestRegister_NoopWithoutRegistry(t *testing.T) {
	Registry = nil

	assert.NoError(t, NewSimulationMetricsCollector().Register())
	assert.NoError(t, NewCommandMetricsCollector().Register())
}

func TestRegister_WithRegistry(t *testing.T) {
	InitRegistry()
	defer func() { Registry = nil }()

	require.NoError(t, NewSimulationMetricsCollector().Register())
	require.NoError(t, NewCommandMetricsCollector().Register())
	assert.True(t, IsEnabled())
}

func TestEnable_ServesSimulationMetrics(t *testing.T) {
	c, err := Enable()
	require.NoError(t, err)
	defer func() {
		Registry = nil
		SetGlobalSimulationCollector(nil)
	}()

	RecordDayAdvanced("sim", simulation.DaySummary{Day: 1, NewOrders: 1}, 0.01)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Simulation.daysAdvanced.WithLabelValues("sim")))

	srv := NewServer("127.0.0.1", 9464, "/metrics")
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "factorysim_engine_days_advanced_total")
	assert.Equal(t, "127.0.0.1:9464", srv.Addr())
}
