package setup

import (
	"reflect"

	inventoryQueries "github.com/andrescamacho/factorysim-go/internal/application/inventory/queries"
	ledgerQueries "github.com/andrescamacho/factorysim-go/internal/application/ledger/queries"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	productionCommands "github.com/andrescamacho/factorysim-go/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/factorysim-go/internal/application/production/queries"
	purchasingCommands "github.com/andrescamacho/factorysim-go/internal/application/purchasing/commands"
	purchasingQueries "github.com/andrescamacho/factorysim-go/internal/application/purchasing/queries"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	simulationCommands "github.com/andrescamacho/factorysim-go/internal/application/simulation/commands"
	simulationQueries "github.com/andrescamacho/factorysim-go/internal/application/simulation/queries"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	session         *session.Session
	transactionRepo ledger.TransactionRepository
	eventRepo       simulation.EventRepository
}

// NewHandlerRegistry creates a new handler registry. transactionRepo and
// eventRepo may be nil; the repository-backed ledger queries are then not registered.
func NewHandlerRegistry(
	s *session.Session,
	transactionRepo ledger.TransactionRepository,
	eventRepo simulation.EventRepository,
) *HandlerRegistry {
	return &HandlerRegistry{
		session:         s,
		transactionRepo: transactionRepo,
		eventRepo:       eventRepo,
	}
}

type registration struct {
	request mediator.Request
	handler mediator.RequestHandler
}

func register(m mediator.Mediator, regs []registration) error {
	for _, r := range regs {
		if err := m.Register(reflect.TypeOf(r.request), r.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterSimulationHandlers registers initialize, import, advance, status, events and export
func (r *HandlerRegistry) RegisterSimulationHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&simulationCommands.InitializeSimulationCommand{}, simulationCommands.NewInitializeSimulationHandler(r.session)},
		{&simulationCommands.ImportSimulationCommand{}, simulationCommands.NewImportSimulationHandler(r.session)},
		{&simulationCommands.AdvanceDayCommand{}, simulationCommands.NewAdvanceDayHandler(r.session)},
		{&simulationQueries.GetStatusQuery{}, simulationQueries.NewGetStatusHandler(r.session)},
		{&simulationQueries.ListEventsQuery{}, simulationQueries.NewListEventsHandler(r.session, r.eventRepo)},
		{&simulationQueries.ExportSimulationQuery{}, simulationQueries.NewExportSimulationHandler(r.session)},
	})
}

// RegisterProductionHandlers registers the production order lifecycle handlers
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&productionCommands.CreateOrderCommand{}, productionCommands.NewCreateOrderHandler(r.session)},
		{&productionCommands.AcceptOrderCommand{}, productionCommands.NewAcceptOrderHandler(r.session)},
		{&productionCommands.StartProductionCommand{}, productionCommands.NewStartProductionHandler(r.session)},
		{&productionCommands.FulfillOrderCommand{}, productionCommands.NewFulfillOrderHandler(r.session)},
		{&productionCommands.OrderMissingMaterialsCommand{}, productionCommands.NewOrderMissingMaterialsHandler(r.session)},
		{&productionQueries.ListOrdersQuery{}, productionQueries.NewListOrdersHandler(r.session)},
	})
}

// RegisterPurchasingHandlers registers purchase order and quote handlers
func (r *HandlerRegistry) RegisterPurchasingHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&purchasingCommands.PlacePurchaseOrderCommand{}, purchasingCommands.NewPlacePurchaseOrderHandler(r.session)},
		{&purchasingCommands.CancelPurchaseOrderCommand{}, purchasingCommands.NewCancelPurchaseOrderHandler(r.session)},
		{&purchasingQueries.ListPurchaseOrdersQuery{}, purchasingQueries.NewListPurchaseOrdersHandler(r.session)},
		{&purchasingQueries.ListQuotesQuery{}, purchasingQueries.NewListQuotesHandler(r.session)},
	})
}

// RegisterInventoryHandlers registers stock and item forecast queries
func (r *HandlerRegistry) RegisterInventoryHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&inventoryQueries.GetInventoryQuery{}, inventoryQueries.NewGetInventoryHandler(r.session)},
		{&inventoryQueries.GetItemForecastQuery{}, inventoryQueries.NewGetItemForecastHandler(r.session)},
	})
}

// RegisterLedgerHandlers registers the financial queries. Transaction listing,
// profit & loss and cash flow need the transaction repository.
func (r *HandlerRegistry) RegisterLedgerHandlers(m mediator.Mediator) error {
	regs := []registration{
		{&ledgerQueries.GetFinancialSummaryQuery{}, ledgerQueries.NewGetFinancialSummaryHandler(r.session)},
		{&ledgerQueries.GetFinancialHistoryQuery{}, ledgerQueries.NewGetFinancialHistoryHandler(r.session)},
		{&ledgerQueries.GetFinancialForecastQuery{}, ledgerQueries.NewGetFinancialForecastHandler(r.session)},
	}
	if r.transactionRepo != nil {
		regs = append(regs,
			registration{&ledgerQueries.GetTransactionsQuery{}, ledgerQueries.NewGetTransactionsHandler(r.transactionRepo, r.session)},
			registration{&ledgerQueries.GetProfitLossQuery{}, ledgerQueries.NewGetProfitLossHandler(r.transactionRepo, r.session)},
			registration{&ledgerQueries.GetCashFlowQuery{}, ledgerQueries.NewGetCashFlowHandler(r.transactionRepo, r.session)},
		)
	}
	return register(m, regs)
}

// CreateConfiguredMediator creates a mediator with every handler registered
// and the given middlewares installed in order.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		m.Use(mw)
	}

	steps := []func(mediator.Mediator) error{
		r.RegisterSimulationHandlers,
		r.RegisterProductionHandlers,
		r.RegisterPurchasingHandlers,
		r.RegisterInventoryHandlers,
		r.RegisterLedgerHandlers,
	}
	for _, step := range steps {
		if err := step(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
