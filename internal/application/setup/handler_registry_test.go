package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryQueries "github.com/andrescamacho/factorysim-go/internal/application/inventory/queries"
	ledgerQueries "github.com/andrescamacho/factorysim-go/internal/application/ledger/queries"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	productionCommands "github.com/andrescamacho/factorysim-go/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/factorysim-go/internal/application/production/queries"
	purchasingCommands "github.com/andrescamacho/factorysim-go/internal/application/purchasing/commands"
	purchasingQueries "github.com/andrescamacho/factorysim-go/internal/application/purchasing/queries"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/application/setup"
	simulationCommands "github.com/andrescamacho/factorysim-go/internal/application/simulation/commands"
	simulationQueries "github.com/andrescamacho/factorysim-go/internal/application/simulation/queries"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
	"github.com/andrescamacho/factorysim-go/test/helpers"
)

type fixture struct {
	mediator mediator.Mediator
	session  *session.Session
	repos    *helpers.TestRepositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := helpers.NewTestRepositories(helpers.NewTestDB(t))
	s := session.New(session.Options{
		Name:         "alpha",
		Snapshots:    repos.Simulations,
		Events:       repos.Events,
		Transactions: repos.Transactions,
		Autosave:     true,
		Clock:        shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	m, err := setup.NewHandlerRegistry(s, repos.Transactions, repos.Events).CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &simulationCommands.InitializeSimulationCommand{Scenario: helpers.ChairScenario()})
	require.NoError(t, err)
	return &fixture{mediator: m, session: s, repos: repos}
}

func send[T any](t *testing.T, m mediator.Mediator, request mediator.Request) T {
	t.Helper()
	resp, err := m.Send(context.Background(), request)
	require.NoError(t, err)
	typed, ok := resp.(T)
	require.True(t, ok, "unexpected response type %T", resp)
	return typed
}

func TestMediator_RejectsRequestsBeforeInitialize(t *testing.T) {
	s := session.New(session.Options{Name: "alpha"})
	m, err := setup.NewHandlerRegistry(s, nil, nil).CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &simulationQueries.GetStatusQuery{})
	assert.ErrorIs(t, err, session.ErrNotInitialized)

	_, err = m.Send(context.Background(), &simulationCommands.AdvanceDayCommand{Days: 1})
	assert.ErrorIs(t, err, session.ErrNotInitialized)
}

func TestMediator_RepositoryQueriesNeedTransactionRepository(t *testing.T) {
	s := session.New(session.Options{Name: "alpha"})
	m, err := setup.NewHandlerRegistry(s, nil, nil).CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &ledgerQueries.GetProfitLossQuery{})
	assert.Error(t, err)
}

func TestMediator_OrderLifecycle(t *testing.T) {
	f := newFixture(t)

	created := send[*productionCommands.CreateOrderResponse](t, f.mediator,
		&productionCommands.CreateOrderCommand{ProductID: "prod-chair", Quantity: 3})
	assert.Equal(t, production.StatusPending, created.Order.Status)
	id := created.Order.ID

	accepted := send[*productionCommands.AcceptOrderResponse](t, f.mediator, &productionCommands.AcceptOrderCommand{OrderID: id})
	assert.Equal(t, production.StatusAccepted, accepted.Order.Status)
	assert.Empty(t, accepted.Shortfall)

	started := send[*productionCommands.StartProductionResponse](t, f.mediator,
		&productionCommands.StartProductionCommand{OrderIDs: []int{id}})
	assert.Equal(t, 1, started.Started)
	assert.Equal(t, 7, started.RemainingCapacity)

	advanced := send[*simulationCommands.AdvanceDayResponse](t, f.mediator, &simulationCommands.AdvanceDayCommand{Days: 2})
	require.Len(t, advanced.Summaries, 2)
	assert.Equal(t, 1, advanced.Summaries[1].CompletedOrders)

	fulfilled := send[*productionCommands.FulfillOrderResponse](t, f.mediator, &productionCommands.FulfillOrderCommand{OrderID: id})
	assert.Equal(t, production.StatusFulfilled, fulfilled.Order.Status)
	assert.Equal(t, "60.00", fulfilled.Order.Revenue.StringFixed(2))

	listed := send[*productionQueries.ListOrdersResponse](t, f.mediator,
		&productionQueries.ListOrdersQuery{Statuses: []string{"FULFILLED"}})
	require.Len(t, listed.Orders, 1)
	assert.Equal(t, id, listed.Orders[0].ID)

	// profit & loss from the mirrored transactions agrees with the engine balance
	status := send[*simulationQueries.GetStatusResponse](t, f.mediator, &simulationQueries.GetStatusQuery{})
	pnl := send[*ledgerQueries.GetProfitLossResponse](t, f.mediator, &ledgerQueries.GetProfitLossQuery{})
	assert.Equal(t, "60.00", pnl.TotalRevenue.StringFixed(2))
	assert.True(t, status.Status.Balance.Sub(helpers.Dec("10000")).Equal(pnl.NetProfit))
}

func TestMediator_StartProductionReportsEachOrder(t *testing.T) {
	f := newFixture(t)

	var ids []int
	for _, qty := range []int{6, 6} {
		created := send[*productionCommands.CreateOrderResponse](t, f.mediator,
			&productionCommands.CreateOrderCommand{ProductID: "prod-chair", Quantity: qty})
		send[*productionCommands.AcceptOrderResponse](t, f.mediator, &productionCommands.AcceptOrderCommand{OrderID: created.Order.ID})
		ids = append(ids, created.Order.ID)
	}

	resp := send[*productionCommands.StartProductionResponse](t, f.mediator,
		&productionCommands.StartProductionCommand{OrderIDs: append(ids, 999)})

	require.Len(t, resp.Results, 3)
	assert.Empty(t, resp.Results[0].Error)
	assert.Contains(t, resp.Results[1].Error, "capacity")
	assert.NotEmpty(t, resp.Results[2].Error)
	assert.Equal(t, 1, resp.Started)
	assert.Equal(t, 4, resp.RemainingCapacity)
}

func TestMediator_PurchasingFlow(t *testing.T) {
	f := newFixture(t)

	quotes := send[*purchasingQueries.ListQuotesResponse](t, f.mediator, &purchasingQueries.ListQuotesQuery{MaterialID: "mat-wood"})
	assert.Len(t, quotes.Quotes, 2)

	placed := send[*purchasingCommands.PlacePurchaseOrderResponse](t, f.mediator,
		&purchasingCommands.PlacePurchaseOrderCommand{MaterialID: "mat-wood", ProviderID: "prov-bulk", Quantity: 20})
	assert.Equal(t, purchasing.StatusPending, placed.PurchaseOrder.Status)

	cancelled := send[*purchasingCommands.CancelPurchaseOrderResponse](t, f.mediator,
		&purchasingCommands.CancelPurchaseOrderCommand{PurchaseOrderID: placed.PurchaseOrder.ID})
	assert.Equal(t, purchasing.StatusCancelled, cancelled.PurchaseOrder.Status)

	pending := send[*purchasingQueries.ListPurchaseOrdersResponse](t, f.mediator,
		&purchasingQueries.ListPurchaseOrdersQuery{Statuses: []string{"PENDING"}})
	assert.Empty(t, pending.PurchaseOrders)

	// the payment is not refunded
	summary := send[*ledgerQueries.GetFinancialSummaryResponse](t, f.mediator, &ledgerQueries.GetFinancialSummaryQuery{})
	assert.Equal(t, "9920.00", summary.Summary.Balance.StringFixed(2))
}

func TestMediator_OrderMissingMaterials(t *testing.T) {
	f := newFixture(t)

	// 30 tables need 120 wood and 240 screws against 100 and 200 in stock
	created := send[*productionCommands.CreateOrderResponse](t, f.mediator,
		&productionCommands.CreateOrderCommand{ProductID: "prod-table", Quantity: 30})
	accepted := send[*productionCommands.AcceptOrderResponse](t, f.mediator,
		&productionCommands.AcceptOrderCommand{OrderID: created.Order.ID})
	assert.Equal(t, map[string]int{"mat-wood": 20, "mat-screw": 40}, accepted.Shortfall)

	bought := send[*productionCommands.OrderMissingMaterialsResponse](t, f.mediator,
		&productionCommands.OrderMissingMaterialsCommand{OrderID: created.Order.ID})
	require.Len(t, bought.Placed, 2)
	assert.Empty(t, bought.Skipped)

	forecast := send[*inventoryQueries.GetItemForecastResponse](t, f.mediator,
		&inventoryQueries.GetItemForecastQuery{ItemID: "mat-screw", Days: 2})
	require.NotEmpty(t, forecast.Points)
}

func TestMediator_InventoryAndEvents(t *testing.T) {
	f := newFixture(t)

	inv := send[*inventoryQueries.GetInventoryResponse](t, f.mediator, &inventoryQueries.GetInventoryQuery{})
	assert.Equal(t, 300, inv.TotalUnits)
	assert.Equal(t, 10000, inv.StorageCapacity)

	send[*simulationCommands.AdvanceDayResponse](t, f.mediator, &simulationCommands.AdvanceDayCommand{Days: 1})

	events := send[*simulationQueries.ListEventsResponse](t, f.mediator,
		&simulationQueries.ListEventsQuery{Categories: []string{string(simulation.EventDaySummary)}})
	require.Len(t, events.Events, 1)
	assert.Equal(t, 1, events.Events[0].Day)

	all := send[*simulationQueries.ListEventsResponse](t, f.mediator, &simulationQueries.ListEventsQuery{})
	require.NotEmpty(t, all.Events)
	assert.Equal(t, simulation.EventSimulationInitialized, all.Events[0].Category)
}

func TestMediator_ExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	send[*simulationCommands.AdvanceDayResponse](t, f.mediator, &simulationCommands.AdvanceDayCommand{Days: 3})
	exported := send[*simulationQueries.ExportSimulationResponse](t, f.mediator, &simulationQueries.ExportSimulationQuery{})

	other := newFixture(t)
	imported := send[*simulationCommands.ImportSimulationResponse](t, other.mediator,
		&simulationCommands.ImportSimulationCommand{Snapshot: exported.Snapshot})

	assert.Equal(t, 3, imported.Status.Day)
	assert.True(t, exported.Snapshot.Transactions[len(exported.Snapshot.Transactions)-1].BalanceAfter.Equal(imported.Status.Balance))
}
