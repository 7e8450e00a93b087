package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newLedger(balance int64) *ledger.FinancialLedger {
	return ledger.NewFinancialLedger(d(balance), shared.NewMockClock(time.Time{}))
}

func TestFinancialLedger_DebitBeyondBalanceFailsWithoutSideEffects(t *testing.T) {
	// Arrange
	l := newLedger(50)

	// Act
	_, err := l.Debit(d(60), ledger.TransactionTypePurchase, "PO-1", "buy", 0)

	// Assert
	var funds *shared.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.True(t, l.Balance().Equal(d(50)))
	assert.Empty(t, l.Transactions())
}

func TestFinancialLedger_DebitToExactlyZeroSucceeds(t *testing.T) {
	l := newLedger(50)

	tx, err := l.Debit(d(50), ledger.TransactionTypePurchase, "PO-1", "buy", 0)

	require.NoError(t, err)
	assert.True(t, l.Balance().IsZero())
	assert.True(t, tx.Amount().Equal(d(-50)))
	assert.Equal(t, ledger.CategoryMaterialCosts, tx.Category())
}

func TestFinancialLedger_CreditIncreasesByExactAmount(t *testing.T) {
	l := newLedger(100)

	tx, err := l.Credit(d(60), ledger.TransactionTypeSale, "ORD-1", "sale", 1)

	require.NoError(t, err)
	assert.True(t, l.Balance().Equal(d(160)))
	assert.True(t, tx.BalanceBefore().Equal(d(100)))
	assert.True(t, tx.BalanceAfter().Equal(d(160)))
}

func TestFinancialLedger_ChargeMayGoNegative(t *testing.T) {
	l := newLedger(10)

	_, err := l.Charge(d(50), ledger.TransactionTypeOperationalCost, "", "daily cost", 1)

	require.NoError(t, err)
	assert.True(t, l.Balance().Equal(d(-40)))
}

func TestFinancialLedger_SummaryAndProfitLoss(t *testing.T) {
	l := newLedger(1000)
	_, _ = l.Debit(d(200), ledger.TransactionTypePurchase, "PO-1", "", 0)
	_, _ = l.Credit(d(500), ledger.TransactionTypeSale, "ORD-1", "", 1)
	_, _ = l.Charge(d(50), ledger.TransactionTypeOperationalCost, "", "", 1)

	summary := l.Summary()
	assert.True(t, summary.Balance.Equal(d(1250)))
	assert.True(t, summary.Revenue.Equal(d(500)))
	assert.True(t, summary.Expenses.Equal(d(250)))
	assert.True(t, summary.Profit.Equal(d(250)))

	pl := l.ProfitLoss()
	assert.True(t, pl[ledger.CategoryMaterialCosts].Equal(d(200)))
	assert.True(t, pl[ledger.CategoryOperationalCosts].Equal(d(50)))
}

func TestFinancialLedger_HistoryCarriesClosingBalance(t *testing.T) {
	l := newLedger(1000)
	_, _ = l.Debit(d(200), ledger.TransactionTypePurchase, "PO-1", "", 0)
	_, _ = l.Charge(d(50), ledger.TransactionTypeOperationalCost, "", "", 2)

	history := l.History(2)

	require.Len(t, history, 3)
	assert.True(t, history[0].ClosingBalance.Equal(d(800)))
	assert.True(t, history[1].ClosingBalance.Equal(d(800)))
	assert.True(t, history[2].ClosingBalance.Equal(d(750)))
	assert.True(t, history[2].Profit.Equal(d(-50)))
}

func TestFinancialLedger_ForecastIsPureAndLinear(t *testing.T) {
	l := newLedger(1000)
	_, _ = l.Credit(d(100), ledger.TransactionTypeSale, "ORD-1", "", 1)
	_, _ = l.Charge(d(40), ledger.TransactionTypeOperationalCost, "", "", 1)
	_, _ = l.Charge(d(40), ledger.TransactionTypeOperationalCost, "", "", 2)

	points, err := l.Forecast(3, 2)

	require.NoError(t, err)
	require.Len(t, points, 3)
	// avg revenue 50, avg cost 40 over two days
	assert.True(t, points[0].ProjectedBalance.Equal(d(1030)))
	assert.True(t, points[2].ProjectedBalance.Equal(d(1050)))
	assert.Equal(t, 5, points[2].Day)
	assert.True(t, l.Balance().Equal(d(1020)))
	assert.Len(t, l.Transactions(), 3)
}

func TestFinancialLedger_ForecastIgnoresPastPurchases(t *testing.T) {
	l := newLedger(1000)
	_, err := l.Charge(d(500), ledger.TransactionTypePurchase, "PO-1", "", 0)
	require.NoError(t, err)

	points, err := l.Forecast(5, 1)

	require.NoError(t, err)
	require.Len(t, points, 5)
	for _, p := range points {
		assert.True(t, p.ProjectedBalance.Equal(d(500)), "day %d: %s", p.Day, p.ProjectedBalance)
		assert.True(t, p.ProjectedMaterialCosts.IsZero())
	}
}

func TestRestoreFinancialLedger_RejectsBrokenChain(t *testing.T) {
	l := newLedger(100)
	_, _ = l.Credit(d(10), ledger.TransactionTypeSale, "ORD-1", "", 0)
	data := l.Data()

	_, err := ledger.RestoreFinancialLedger(d(90), data, nil)
	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))

	restored, err := ledger.RestoreFinancialLedger(d(100), data, nil)
	require.NoError(t, err)
	assert.True(t, restored.Balance().Equal(d(110)))
}

func TestTransaction_RejectsWrongSign(t *testing.T) {
	_, err := ledger.NewTransaction(0, time.Now(), ledger.TransactionTypeSale, d(-5), d(100), "", "")

	var invalid *ledger.ErrInvalidTransaction
	assert.ErrorAs(t, err, &invalid)
}
