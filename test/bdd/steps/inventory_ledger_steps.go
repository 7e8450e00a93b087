package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/factorysim-go/internal/domain/inventory"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

type inventoryLedgerContext struct {
	ledger  *inventory.Ledger
	lastErr error
}

func InitializeInventoryLedgerScenario(ctx *godog.ScenarioContext) {
	ilc := &inventoryLedgerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ilc.ledger = nil
		ilc.lastErr = nil
		return ctx, nil
	})

	ctx.Step(`^an inventory ledger with:$`, ilc.anInventoryLedgerWith)

	ctx.Step(`^I reserve (\d+) "([^"]*)"$`, ilc.iReserve)
	ctx.Step(`^I try to reserve (\d+) "([^"]*)"$`, ilc.iTryToReserve)
	ctx.Step(`^I release (\d+) "([^"]*)"$`, ilc.iRelease)
	ctx.Step(`^I consume (\d+) "([^"]*)"$`, ilc.iConsume)
	ctx.Step(`^I try to consume (\d+) "([^"]*)"$`, ilc.iTryToConsume)
	ctx.Step(`^I put (\d+) "([^"]*)" on order$`, ilc.iPutOnOrder)
	ctx.Step(`^I receive (\d+) "([^"]*)"$`, ilc.iReceive)

	ctx.Step(`^"([^"]*)" should have (\d+) physical, (\d+) committed and (\d+) on order in the ledger$`, ilc.itemShouldHave)
	ctx.Step(`^"([^"]*)" should have (\d+) projected available$`, ilc.itemShouldHaveProjectedAvailable)
	ctx.Step(`^the stock operation should fail with "([^"]*)"$`, ilc.theStockOperationShouldFailWith)
	ctx.Step(`^the ledger invariants should hold$`, ilc.theLedgerInvariantsShouldHold)
}

func (ilc *inventoryLedgerContext) anInventoryLedgerWith(table *godog.Table) error {
	stock, err := itemQuantities(table, "physical")
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(stock)+1)
	for id := range stock {
		ids = append(ids, id)
	}
	ilc.ledger, err = inventory.NewLedger(ids, stock)
	return err
}

func (ilc *inventoryLedgerContext) iReserve(qty int, item string) error {
	return ilc.ledger.Reserve(item, qty)
}

func (ilc *inventoryLedgerContext) iTryToReserve(qty int, item string) error {
	ilc.lastErr = ilc.ledger.Reserve(item, qty)
	return nil
}

func (ilc *inventoryLedgerContext) iRelease(qty int, item string) error {
	return ilc.ledger.Release(item, qty)
}

func (ilc *inventoryLedgerContext) iConsume(qty int, item string) error {
	return ilc.ledger.Consume(item, qty)
}

func (ilc *inventoryLedgerContext) iTryToConsume(qty int, item string) error {
	ilc.lastErr = ilc.ledger.Consume(item, qty)
	return nil
}

func (ilc *inventoryLedgerContext) iPutOnOrder(qty int, item string) error {
	return ilc.ledger.AddOnOrder(item, qty)
}

func (ilc *inventoryLedgerContext) iReceive(qty int, item string) error {
	return ilc.ledger.Receive(item, qty)
}

func (ilc *inventoryLedgerContext) itemShouldHave(item string, physical, committed, onOrder int) error {
	rec, err := ilc.ledger.Record(item)
	if err != nil {
		return err
	}
	if rec.Physical != physical || rec.Committed != committed || rec.OnOrder != onOrder {
		return fmt.Errorf("expected %s physical=%d committed=%d on_order=%d, got %d/%d/%d",
			item, physical, committed, onOrder, rec.Physical, rec.Committed, rec.OnOrder)
	}
	return nil
}

func (ilc *inventoryLedgerContext) itemShouldHaveProjectedAvailable(item string, expected int) error {
	rec, err := ilc.ledger.Record(item)
	if err != nil {
		return err
	}
	if rec.ProjectedAvailable() != expected {
		return fmt.Errorf("expected projected available %d, got %d", expected, rec.ProjectedAvailable())
	}
	return nil
}

func (ilc *inventoryLedgerContext) theStockOperationShouldFailWith(kind string) error {
	if ilc.lastErr == nil {
		return fmt.Errorf("expected %s error, got success", kind)
	}
	if got := shared.KindOf(ilc.lastErr); string(got) != kind {
		return fmt.Errorf("expected %s error, got %q (%v)", kind, got, ilc.lastErr)
	}
	return nil
}

func (ilc *inventoryLedgerContext) theLedgerInvariantsShouldHold() error {
	return ilc.ledger.CheckInvariants()
}
