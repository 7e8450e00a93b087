package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// FinancialLedger owns the cash balance and its append-only transaction history.
//
// Invariants:
// - balance == initial balance + sum of all transaction amounts
// - Debit never takes the balance below zero; Charge may
type FinancialLedger struct {
	initial      decimal.Decimal
	balance      decimal.Decimal
	revenue      decimal.Decimal
	expenses     decimal.Decimal
	transactions []*Transaction
	clock        shared.Clock
}

func NewFinancialLedger(initialBalance decimal.Decimal, clock shared.Clock) *FinancialLedger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &FinancialLedger{
		initial:  initialBalance,
		balance:  initialBalance,
		revenue:  decimal.Zero,
		expenses: decimal.Zero,
		clock:    clock,
	}
}

// RestoreFinancialLedger replays persisted transactions and verifies the balance chain
func RestoreFinancialLedger(initialBalance decimal.Decimal, history []Data, clock shared.Clock) (*FinancialLedger, error) {
	l := NewFinancialLedger(initialBalance, clock)
	for i, d := range history {
		t, err := ReconstructTransaction(d)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if !t.balanceBefore.Equal(l.balance) {
			return nil, shared.NewInvariantViolationError("balance chain",
				fmt.Sprintf("transaction %s starts at %s but balance is %s", t.id, t.balanceBefore, l.balance))
		}
		l.apply(t)
	}
	return l, nil
}

// Debit pays an expense. It fails without side effects if the balance would go negative.
func (l *FinancialLedger) Debit(amount decimal.Decimal, txType TransactionType, reference, description string, day int) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "debit amount must be positive")
	}
	if l.balance.Sub(amount).IsNegative() {
		return nil, shared.NewInsufficientFundsError(amount, l.balance)
	}
	return l.post(amount.Neg(), txType, reference, description, day)
}

// Credit books income. It always succeeds for a positive amount.
func (l *FinancialLedger) Credit(amount decimal.Decimal, txType TransactionType, reference, description string, day int) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "credit amount must be positive")
	}
	return l.post(amount, txType, reference, description, day)
}

// Charge books an unconditional expense, allowing the balance to go negative
func (l *FinancialLedger) Charge(amount decimal.Decimal, txType TransactionType, reference, description string, day int) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "charge amount must be positive")
	}
	return l.post(amount.Neg(), txType, reference, description, day)
}

// CanAfford reports whether a debit of amount would succeed
func (l *FinancialLedger) CanAfford(amount decimal.Decimal) bool {
	return !l.balance.Sub(amount).IsNegative()
}

func (l *FinancialLedger) post(signed decimal.Decimal, txType TransactionType, reference, description string, day int) (*Transaction, error) {
	t, err := NewTransaction(day, l.clock.Now(), txType, signed, l.balance, reference, description)
	if err != nil {
		return nil, err
	}
	l.apply(t)
	return t, nil
}

func (l *FinancialLedger) apply(t *Transaction) {
	l.balance = t.balanceAfter
	if t.IsIncome() {
		l.revenue = l.revenue.Add(t.amount)
	} else {
		l.expenses = l.expenses.Add(t.amount.Neg())
	}
	l.transactions = append(l.transactions, t)
}

func (l *FinancialLedger) Balance() decimal.Decimal        { return l.balance }
func (l *FinancialLedger) InitialBalance() decimal.Decimal { return l.initial }

// Transactions returns the history in posting order
func (l *FinancialLedger) Transactions() []*Transaction {
	out := make([]*Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Data returns the persistable history
func (l *FinancialLedger) Data() []Data {
	out := make([]Data, len(l.transactions))
	for i, t := range l.transactions {
		out[i] = t.Data()
	}
	return out
}

// Summary is the cumulative financial position
type Summary struct {
	Balance  decimal.Decimal `json:"current_balance"`
	Revenue  decimal.Decimal `json:"total_revenue"`
	Expenses decimal.Decimal `json:"total_expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

func (l *FinancialLedger) Summary() Summary {
	return Summary{
		Balance:  l.balance,
		Revenue:  l.revenue,
		Expenses: l.expenses,
		Profit:   l.revenue.Sub(l.expenses),
	}
}

// DailyPerformance aggregates one simulated day of postings
type DailyPerformance struct {
	Day              int             `json:"day"`
	Revenue          decimal.Decimal `json:"revenue"`
	MaterialCosts    decimal.Decimal `json:"material_costs"`
	OperationalCosts decimal.Decimal `json:"operational_costs"`
	Profit           decimal.Decimal `json:"profit"`
	ClosingBalance   decimal.Decimal `json:"balance"`
}

// History returns one entry per day from day 0 through throughDay.
// Days without postings carry the previous closing balance.
func (l *FinancialLedger) History(throughDay int) []DailyPerformance {
	if throughDay < 0 {
		return nil
	}
	days := make([]DailyPerformance, throughDay+1)
	for d := range days {
		days[d] = DailyPerformance{
			Day:              d,
			Revenue:          decimal.Zero,
			MaterialCosts:    decimal.Zero,
			OperationalCosts: decimal.Zero,
			Profit:           decimal.Zero,
		}
	}
	for _, t := range l.transactions {
		if t.day > throughDay {
			continue
		}
		p := &days[t.day]
		switch t.category {
		case CategorySalesRevenue:
			p.Revenue = p.Revenue.Add(t.amount)
		case CategoryMaterialCosts:
			p.MaterialCosts = p.MaterialCosts.Add(t.amount.Neg())
		case CategoryOperationalCosts:
			p.OperationalCosts = p.OperationalCosts.Add(t.amount.Neg())
		}
	}
	running := l.initial
	for d := range days {
		p := &days[d]
		p.Profit = p.Revenue.Sub(p.MaterialCosts).Sub(p.OperationalCosts)
		running = running.Add(p.Profit)
		p.ClosingBalance = running
	}
	return days
}

// ProfitLoss totals postings per category
func (l *FinancialLedger) ProfitLoss() map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, 3)
	for _, c := range AllCategories() {
		out[c] = decimal.Zero
	}
	for _, t := range l.transactions {
		out[t.category] = out[t.category].Add(t.amount.Abs())
	}
	return out
}

// ForecastPoint is the projected position k days ahead
type ForecastPoint struct {
	DayOffset                 int             `json:"day_offset"`
	Day                       int             `json:"day"`
	ProjectedBalance          decimal.Decimal `json:"projected_balance"`
	ProjectedRevenue          decimal.Decimal `json:"projected_revenue"`
	ProjectedMaterialCosts    decimal.Decimal `json:"projected_material_costs"`
	ProjectedOperationalCosts decimal.Decimal `json:"projected_operational_costs"`
	ProjectedProfit           decimal.Decimal `json:"projected_profit"`
}

// Forecast projects the balance forward using average historical daily revenue
// and operational cost over the elapsed days. Purchases are debited when
// placed, so no further material cost is projected. It does not mutate.
func (l *FinancialLedger) Forecast(days, currentDay int) ([]ForecastPoint, error) {
	if days < 0 {
		return nil, shared.NewValidationError("days", "cannot be negative")
	}
	elapsed := currentDay
	if elapsed < 1 {
		elapsed = 1
	}
	n := decimal.NewFromInt(int64(elapsed))
	rev, op := decimal.Zero, decimal.Zero
	for _, t := range l.transactions {
		switch t.category {
		case CategorySalesRevenue:
			rev = rev.Add(t.amount)
		case CategoryOperationalCosts:
			op = op.Add(t.amount.Neg())
		}
	}
	avgRev, avgOp := rev.Div(n), op.Div(n)
	avgProfit := avgRev.Sub(avgOp)

	points := make([]ForecastPoint, 0, days)
	for k := 1; k <= days; k++ {
		dk := decimal.NewFromInt(int64(k))
		points = append(points, ForecastPoint{
			DayOffset:                 k,
			Day:                       currentDay + k,
			ProjectedBalance:          l.balance.Add(avgProfit.Mul(dk)).Round(2),
			ProjectedRevenue:          avgRev.Round(2),
			ProjectedMaterialCosts:    decimal.Zero,
			ProjectedOperationalCosts: avgOp.Round(2),
			ProjectedProfit:           avgProfit.Round(2),
		})
	}
	return points, nil
}
