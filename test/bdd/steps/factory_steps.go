package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ledgerQueries "github.com/andrescamacho/factorysim-go/internal/application/ledger/queries"
	"github.com/andrescamacho/factorysim-go/internal/application/mediator"
	productionCommands "github.com/andrescamacho/factorysim-go/internal/application/production/commands"
	purchasingCommands "github.com/andrescamacho/factorysim-go/internal/application/purchasing/commands"
	"github.com/andrescamacho/factorysim-go/internal/application/session"
	"github.com/andrescamacho/factorysim-go/internal/application/setup"
	simulationCommands "github.com/andrescamacho/factorysim-go/internal/application/simulation/commands"
	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
	"github.com/andrescamacho/factorysim-go/test/helpers"
)

const bddSimulation = "bdd"

// factoryContext drives a persisted simulation through the mediator, the same
// path the CLI takes
type factoryContext struct {
	scenario      simulation.Scenario
	repos         *helpers.TestRepositories
	clock         *shared.MockClock
	session       *session.Session
	mediator      mediator.Mediator
	lastErr       error
	balanceBefore decimal.Decimal
	savedSurface  string
}

// querySurface is everything a caller can read from an engine
type querySurface struct {
	Status         simulation.Status
	Inventory      []simulation.InventoryItem
	Orders         []production.Data
	PurchaseOrders []purchasing.Data
	Summary        ledger.Summary
	History        []ledger.DailyPerformance
	Transactions   []ledger.Data
	Events         []simulation.Event
}

func InitializeFactoryScenario(ctx *godog.ScenarioContext) {
	fc := &factoryContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, fc.reset()
	})

	// Given
	ctx.Step(`^the chairs factory scenario$`, fc.theChairsFactoryScenario)
	ctx.Step(`^daily production capacity is (\d+) units$`, fc.dailyProductionCapacityIs)
	ctx.Step(`^the starting balance is (-?[\d.]+)$`, fc.theStartingBalanceIs)
	ctx.Step(`^the initial inventory is:$`, fc.theInitialInventoryIs)
	ctx.Step(`^automatic fulfillment is (enabled|disabled)$`, fc.automaticFulfillmentIs)
	ctx.Step(`^the simulation is initialized$`, fc.theSimulationIsInitialized)
	ctx.Step(`^an accepted order for (\d+) "([^"]*)"$`, fc.anAcceptedOrderFor)

	// When
	ctx.Step(`^I create an order for (\d+) "([^"]*)"$`, fc.iCreateAnOrderFor)
	ctx.Step(`^I accept order (\d+)$`, fc.iAcceptOrder)
	ctx.Step(`^I start production of order (\d+)$`, fc.iStartProductionOfOrder)
	ctx.Step(`^I fulfill order (\d+)$`, fc.iFulfillOrder)
	ctx.Step(`^I order the missing materials for order (\d+)$`, fc.iOrderTheMissingMaterialsForOrder)
	ctx.Step(`^I place a purchase order for (\d+) "([^"]*)" from "([^"]*)"$`, fc.iPlaceAPurchaseOrder)
	ctx.Step(`^I cancel purchase order (\d+)$`, fc.iCancelPurchaseOrder)
	ctx.Step(`^I advance (\d+) days?$`, fc.iAdvanceDays)
	ctx.Step(`^I save and reload the simulation$`, fc.iSaveAndReloadTheSimulation)

	// Then
	ctx.Step(`^the operation should succeed$`, fc.theOperationShouldSucceed)
	ctx.Step(`^the operation should fail with "([^"]*)"$`, fc.theOperationShouldFailWith)
	ctx.Step(`^the remaining capacity today should be (\d+)$`, fc.theRemainingCapacityTodayShouldBe)
	ctx.Step(`^order (\d+) should be "([^"]*)"$`, fc.orderShouldBe)
	ctx.Step(`^purchase order (\d+) should be "([^"]*)"$`, fc.purchaseOrderShouldBe)
	ctx.Step(`^"([^"]*)" should have (\d+) physical, (\d+) committed and (\d+) on order$`, fc.itemShouldHave)
	ctx.Step(`^the balance should be (-?[\d.]+)$`, fc.theBalanceShouldBe)
	ctx.Step(`^the balance should be unchanged$`, fc.theBalanceShouldBeUnchanged)
	ctx.Step(`^the balance should have increased by (-?[\d.]+)$`, fc.theBalanceShouldHaveIncreasedBy)
	ctx.Step(`^there should be (\d+) purchase orders?$`, fc.thereShouldBePurchaseOrders)
	ctx.Step(`^there should be (\d+) "([^"]*)" transactions?$`, fc.thereShouldBeTransactionsOfType)
	ctx.Step(`^the day should be (\d+)$`, fc.theDayShouldBe)
	ctx.Step(`^the reloaded simulation should answer queries identically$`, fc.theReloadedSimulationShouldAnswerQueriesIdentically)
	ctx.Step(`^the inventory invariants should hold$`, fc.theInventoryInvariantsShouldHold)
}

func (fc *factoryContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	fc.scenario = simulation.Scenario{}
	fc.repos = helpers.NewTestRepositories(helpers.SharedTestDB)
	fc.clock = shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	fc.session = nil
	fc.mediator = nil
	fc.lastErr = nil
	fc.balanceBefore = decimal.Zero
	fc.savedSurface = ""
	return nil
}

// open creates a session over the shared repositories and wires the mediator
func (fc *factoryContext) open() error {
	fc.session = session.New(session.Options{
		Name:         bddSimulation,
		Snapshots:    fc.repos.Simulations,
		Events:       fc.repos.Events,
		Transactions: fc.repos.Transactions,
		Autosave:     true,
		Clock:        fc.clock,
	})
	m, err := setup.NewHandlerRegistry(fc.session, fc.repos.Transactions, fc.repos.Events).CreateConfiguredMediator()
	if err != nil {
		return err
	}
	fc.mediator = m
	return nil
}

func (fc *factoryContext) send(request mediator.Request) (mediator.Response, error) {
	if fc.mediator == nil {
		return nil, fmt.Errorf("simulation not initialized in this scenario")
	}
	return fc.mediator.Send(context.Background(), request)
}

// engine runs fn against the current engine under the session's read lock
func (fc *factoryContext) engine(fn func(e *simulation.Engine) error) error {
	if fc.session == nil {
		return fmt.Errorf("simulation not initialized in this scenario")
	}
	return fc.session.Query(fn)
}

// Given

func (fc *factoryContext) theChairsFactoryScenario() error {
	fc.scenario = helpers.ChairScenario()
	return nil
}

func (fc *factoryContext) dailyProductionCapacityIs(units int) error {
	fc.scenario.Capacity.DailyProduction = units
	return nil
}

func (fc *factoryContext) theStartingBalanceIs(amount string) error {
	balance, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	fc.scenario.Financial.InitialBalance = balance
	return nil
}

func (fc *factoryContext) theInitialInventoryIs(table *godog.Table) error {
	stock, err := itemQuantities(table, "quantity")
	if err != nil {
		return err
	}
	fc.scenario.InitialInventory = stock
	return nil
}

func (fc *factoryContext) automaticFulfillmentIs(state string) error {
	fc.scenario.AutoFulfill = state == "enabled"
	return nil
}

func (fc *factoryContext) theSimulationIsInitialized() error {
	if err := fc.open(); err != nil {
		return err
	}
	resp, err := fc.send(&simulationCommands.InitializeSimulationCommand{Scenario: fc.scenario})
	if err != nil {
		return err
	}
	fc.balanceBefore = resp.(*simulationCommands.InitializeSimulationResponse).Status.Balance
	return nil
}

func (fc *factoryContext) anAcceptedOrderFor(qty int, productID string) error {
	resp, err := fc.send(&productionCommands.CreateOrderCommand{ProductID: productID, Quantity: qty})
	if err != nil {
		return err
	}
	id := resp.(*productionCommands.CreateOrderResponse).Order.ID
	_, err = fc.send(&productionCommands.AcceptOrderCommand{OrderID: id})
	return err
}

// When

func (fc *factoryContext) iCreateAnOrderFor(qty int, productID string) error {
	_, fc.lastErr = fc.send(&productionCommands.CreateOrderCommand{ProductID: productID, Quantity: qty})
	return nil
}

func (fc *factoryContext) iAcceptOrder(id int) error {
	_, fc.lastErr = fc.send(&productionCommands.AcceptOrderCommand{OrderID: id})
	return nil
}

// iStartProductionOfOrder goes through the session directly: the batch
// command reports per-order failures as text, and scenarios assert on the kind.
func (fc *factoryContext) iStartProductionOfOrder(id int) error {
	if fc.session == nil {
		return fmt.Errorf("simulation not initialized in this scenario")
	}
	fc.lastErr = fc.session.Execute(context.Background(), "start_production", func(e *simulation.Engine) error {
		_, err := e.StartProduction(id)
		return err
	})
	return nil
}

func (fc *factoryContext) iFulfillOrder(id int) error {
	_, fc.lastErr = fc.send(&productionCommands.FulfillOrderCommand{OrderID: id})
	return nil
}

func (fc *factoryContext) iOrderTheMissingMaterialsForOrder(id int) error {
	_, fc.lastErr = fc.send(&productionCommands.OrderMissingMaterialsCommand{OrderID: id})
	return nil
}

func (fc *factoryContext) iPlaceAPurchaseOrder(qty int, materialID, providerID string) error {
	_, fc.lastErr = fc.send(&purchasingCommands.PlacePurchaseOrderCommand{
		MaterialID: materialID,
		ProviderID: providerID,
		Quantity:   qty,
	})
	return nil
}

func (fc *factoryContext) iCancelPurchaseOrder(id int) error {
	_, fc.lastErr = fc.send(&purchasingCommands.CancelPurchaseOrderCommand{PurchaseOrderID: id})
	return nil
}

func (fc *factoryContext) iAdvanceDays(days int) error {
	_, err := fc.send(&simulationCommands.AdvanceDayCommand{Days: days})
	return err
}

func (fc *factoryContext) iSaveAndReloadTheSimulation() error {
	surface, err := fc.querySurface()
	if err != nil {
		return err
	}
	fc.savedSurface = surface
	if err := fc.session.Save(context.Background()); err != nil {
		return err
	}

	if err := fc.open(); err != nil {
		return err
	}
	return fc.session.Load(context.Background())
}

func (fc *factoryContext) querySurface() (string, error) {
	var qs querySurface
	err := fc.engine(func(e *simulation.Engine) error {
		qs = querySurface{
			Status:         e.Status(),
			Inventory:      e.InventoryStatus(),
			Orders:         e.Orders(),
			PurchaseOrders: e.PurchaseOrders(),
			Summary:        e.Summary(),
			History:        e.FinancialHistory(),
			Transactions:   e.Transactions(),
			Events:         e.Events(0),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(qs)
	return string(data), err
}

// Then

func (fc *factoryContext) theOperationShouldSucceed() error {
	if fc.lastErr != nil {
		return fmt.Errorf("expected success, got %v", fc.lastErr)
	}
	return nil
}

func (fc *factoryContext) theOperationShouldFailWith(kind string) error {
	if fc.lastErr == nil {
		return fmt.Errorf("expected %s error, got success", kind)
	}
	if got := shared.KindOf(fc.lastErr); string(got) != kind {
		return fmt.Errorf("expected %s error, got %q (%v)", kind, got, fc.lastErr)
	}
	return nil
}

func (fc *factoryContext) theRemainingCapacityTodayShouldBe(expected int) error {
	return fc.engine(func(e *simulation.Engine) error {
		if got := e.RemainingCapacity(); got != expected {
			return fmt.Errorf("expected remaining capacity %d, got %d", expected, got)
		}
		return nil
	})
}

func (fc *factoryContext) orderShouldBe(id int, status string) error {
	return fc.engine(func(e *simulation.Engine) error {
		o, err := e.Order(id)
		if err != nil {
			return err
		}
		if string(o.Status) != status {
			return fmt.Errorf("expected order %d to be %s, got %s", id, status, o.Status)
		}
		return nil
	})
}

func (fc *factoryContext) purchaseOrderShouldBe(id int, status string) error {
	return fc.engine(func(e *simulation.Engine) error {
		for _, po := range e.PurchaseOrders() {
			if po.ID == id {
				if string(po.Status) != status {
					return fmt.Errorf("expected purchase order %d to be %s, got %s", id, status, po.Status)
				}
				return nil
			}
		}
		return fmt.Errorf("purchase order %d not found", id)
	})
}

func (fc *factoryContext) itemShouldHave(item string, physical, committed, onOrder int) error {
	return fc.engine(func(e *simulation.Engine) error {
		rec, err := e.InventoryItem(item)
		if err != nil {
			return err
		}
		if rec.Physical != physical || rec.Committed != committed || rec.OnOrder != onOrder {
			return fmt.Errorf("expected %s physical=%d committed=%d on_order=%d, got %d/%d/%d",
				item, physical, committed, onOrder, rec.Physical, rec.Committed, rec.OnOrder)
		}
		return nil
	})
}

func (fc *factoryContext) balance() (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := fc.engine(func(e *simulation.Engine) error {
		balance = e.Balance()
		return nil
	})
	return balance, err
}

func (fc *factoryContext) theBalanceShouldBe(expected string) error {
	balance, err := fc.balance()
	if err != nil {
		return err
	}
	return expectAmount("balance", balance, expected)
}

func (fc *factoryContext) theBalanceShouldBeUnchanged() error {
	balance, err := fc.balance()
	if err != nil {
		return err
	}
	return expectAmount("balance", balance, fc.balanceBefore.String())
}

func (fc *factoryContext) theBalanceShouldHaveIncreasedBy(amount string) error {
	balance, err := fc.balance()
	if err != nil {
		return err
	}
	return expectAmount("balance increase", balance.Sub(fc.balanceBefore), amount)
}

func (fc *factoryContext) thereShouldBePurchaseOrders(expected int) error {
	return fc.engine(func(e *simulation.Engine) error {
		if got := len(e.PurchaseOrders()); got != expected {
			return fmt.Errorf("expected %d purchase orders, got %d", expected, got)
		}
		return nil
	})
}

// thereShouldBeTransactionsOfType reads the mirrored transactions from the database
func (fc *factoryContext) thereShouldBeTransactionsOfType(expected int, txType string) error {
	resp, err := fc.send(&ledgerQueries.GetTransactionsQuery{TransactionType: &txType})
	if err != nil {
		return err
	}
	if got := resp.(*ledgerQueries.GetTransactionsResponse).Total; got != expected {
		return fmt.Errorf("expected %d %s transactions, got %d", expected, txType, got)
	}
	return nil
}

func (fc *factoryContext) theDayShouldBe(expected int) error {
	return fc.engine(func(e *simulation.Engine) error {
		if e.Day() != expected {
			return fmt.Errorf("expected day %d, got %d", expected, e.Day())
		}
		return nil
	})
}

func (fc *factoryContext) theReloadedSimulationShouldAnswerQueriesIdentically() error {
	surface, err := fc.querySurface()
	if err != nil {
		return err
	}
	var t asserter
	assert.JSONEq(&t, fc.savedSurface, surface)
	return t.err
}

func (fc *factoryContext) theInventoryInvariantsShouldHold() error {
	return fc.engine(func(e *simulation.Engine) error {
		return e.CheckInvariants()
	})
}

// asserter adapts testify assertions to godog's error returns
type asserter struct {
	err error
}

func (a *asserter) Errorf(format string, args ...interface{}) {
	a.err = fmt.Errorf(format, args...)
}
