package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

type financialLedgerContext struct {
	ledger  *ledger.FinancialLedger
	lastErr error
}

func InitializeFinancialLedgerScenario(ctx *godog.ScenarioContext) {
	flc := &financialLedgerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		flc.ledger = nil
		flc.lastErr = nil
		return ctx, nil
	})

	ctx.Step(`^a financial ledger with a balance of (-?[\d.]+)$`, flc.aFinancialLedgerWithABalanceOf)

	ctx.Step(`^I debit (-?[\d.]+) for a "([^"]*)"$`, flc.iDebit)
	ctx.Step(`^I try to debit (-?[\d.]+) for a "([^"]*)"$`, flc.iTryToDebit)
	ctx.Step(`^I credit (-?[\d.]+) for a "([^"]*)"$`, flc.iCredit)
	ctx.Step(`^I charge (-?[\d.]+) for a "([^"]*)"$`, flc.iCharge)

	ctx.Step(`^the ledger operation should fail with "([^"]*)"$`, flc.theLedgerOperationShouldFailWith)
	ctx.Step(`^the ledger balance should be (-?[\d.]+)$`, flc.theLedgerBalanceShouldBe)
	ctx.Step(`^the ledger revenue should be (-?[\d.]+)$`, flc.theLedgerRevenueShouldBe)
	ctx.Step(`^the ledger expenses should be (-?[\d.]+)$`, flc.theLedgerExpensesShouldBe)
	ctx.Step(`^the ledger should hold (\d+) transactions?$`, flc.theLedgerShouldHoldTransactions)
}

func (flc *financialLedgerContext) aFinancialLedgerWithABalanceOf(amount string) error {
	balance, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	flc.ledger = ledger.NewFinancialLedger(balance, clock)
	return nil
}

func (flc *financialLedgerContext) post(
	fn func(decimal.Decimal, ledger.TransactionType, string, string, int) (*ledger.Transaction, error),
	amount, txType string,
) error {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	t, err := ledger.ParseTransactionType(txType)
	if err != nil {
		return err
	}
	_, err = fn(value, t, "BDD", "scenario posting", 0)
	return err
}

func (flc *financialLedgerContext) iDebit(amount, txType string) error {
	return flc.post(flc.ledger.Debit, amount, txType)
}

func (flc *financialLedgerContext) iTryToDebit(amount, txType string) error {
	flc.lastErr = flc.post(flc.ledger.Debit, amount, txType)
	return nil
}

func (flc *financialLedgerContext) iCredit(amount, txType string) error {
	return flc.post(flc.ledger.Credit, amount, txType)
}

func (flc *financialLedgerContext) iCharge(amount, txType string) error {
	return flc.post(flc.ledger.Charge, amount, txType)
}

func (flc *financialLedgerContext) theLedgerOperationShouldFailWith(kind string) error {
	if flc.lastErr == nil {
		return fmt.Errorf("expected %s error, got success", kind)
	}
	if got := shared.KindOf(flc.lastErr); string(got) != kind {
		return fmt.Errorf("expected %s error, got %q (%v)", kind, got, flc.lastErr)
	}
	return nil
}

func expectAmount(what string, got decimal.Decimal, expected string) error {
	want, err := decimal.NewFromString(expected)
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("expected %s %s, got %s", what, want.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func (flc *financialLedgerContext) theLedgerBalanceShouldBe(expected string) error {
	return expectAmount("balance", flc.ledger.Balance(), expected)
}

func (flc *financialLedgerContext) theLedgerRevenueShouldBe(expected string) error {
	return expectAmount("revenue", flc.ledger.Summary().Revenue, expected)
}

func (flc *financialLedgerContext) theLedgerExpensesShouldBe(expected string) error {
	return expectAmount("expenses", flc.ledger.Summary().Expenses, expected)
}

func (flc *financialLedgerContext) theLedgerShouldHoldTransactions(expected int) error {
	if got := len(flc.ledger.Transactions()); got != expected {
		return fmt.Errorf("expected %d transactions, got %d", expected, got)
	}
	return nil
}
