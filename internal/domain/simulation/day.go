package simulation

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
)

// DaySummary describes what happened while entering a day
type DaySummary struct {
	Day               int             `json:"day"`
	ArrivedPurchases  int             `json:"arrived_purchases"`
	DelayedPurchases  int             `json:"delayed_purchases"`
	CompletedOrders   int             `json:"completed_orders"`
	DelayedOrders     int             `json:"delayed_orders"`
	FulfilledOrders   int             `json:"fulfilled_orders"`
	NewOrders         int             `json:"new_orders"`
	OperationalCost   decimal.Decimal `json:"operational_cost"`
	Revenue           decimal.Decimal `json:"revenue"`
	Balance           decimal.Decimal `json:"balance"`
	RemainingCapacity int             `json:"remaining_capacity"`
}

// AdvanceDay moves the simulation forward one day:
//
//  1. receive purchase orders due on or before the new day, then allocate stock to waiting orders
//  2. advance production, completing (and optionally fulfilling) finished orders
//  3. generate random demand
//  4. charge the daily operational cost
//  5. advance the clock and reset daily capacity
//  6. record a day summary
//
// A failure in any step rolls the engine back to its prior state and returns a
// *DayAdvanceError naming the step.
func (e *Engine) AdvanceDay() (DaySummary, error) {
	before, err := e.capture()
	if err != nil {
		return DaySummary{}, err
	}
	newDay := e.day + 1
	e.eventDay = newDay
	summary := DaySummary{Day: newDay, Revenue: decimal.Zero, OperationalCost: decimal.Zero}

	steps := []struct {
		name string
		run  func(*DaySummary) error
	}{
		{StepReceiveMaterials, func(s *DaySummary) error { return e.receiveMaterials(newDay, s) }},
		{StepProgressProduction, func(s *DaySummary) error { return e.progressProduction(newDay, s) }},
		{StepGenerateDemand, e.generateDemand},
		{StepOperationalCost, func(s *DaySummary) error { return e.chargeOperationalCost(newDay, s) }},
		{StepAdvanceClock, func(*DaySummary) error {
			e.day = newDay
			e.remainingCapacity = e.scenario.Capacity.DailyProduction
			return nil
		}},
		{StepVerifyInvariants, func(*DaySummary) error { return e.CheckInvariants() }},
	}

	for _, step := range steps {
		if err := step.run(&summary); err != nil {
			e.pending = nil
			if rbErr := e.apply(before); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
			return DaySummary{}, &DayAdvanceError{Step: step.name, Day: newDay, Err: err}
		}
	}

	summary.Balance = e.finance.Balance()
	summary.RemainingCapacity = e.remainingCapacity
	e.emit(EventDaySummary, fmt.Sprintf("day %d closed with balance %s", newDay, summary.Balance.StringFixed(2)),
		map[string]string{
			"arrived":          strconv.Itoa(summary.ArrivedPurchases),
			"completed":        strconv.Itoa(summary.CompletedOrders),
			"fulfilled":        strconv.Itoa(summary.FulfilledOrders),
			"new_orders":       strconv.Itoa(summary.NewOrders),
			"operational_cost": summary.OperationalCost.StringFixed(2),
			"revenue":          summary.Revenue.StringFixed(2),
			"balance":          summary.Balance.StringFixed(2),
		})
	e.commit()
	return summary, nil
}

func (e *Engine) receiveMaterials(day int, s *DaySummary) error {
	storage := e.scenario.Capacity.Storage
	arrived, delayed, err := e.purchases.Advance(day, func(po *purchasing.PurchaseOrder) bool {
		return e.stock.TotalPhysical()+po.Quantity() <= storage
	})
	if err != nil {
		return err
	}
	for _, po := range arrived {
		e.emit(EventMaterialArrived, fmt.Sprintf("PO-%d arrived: %d x %s", po.ID(), po.Quantity(), po.MaterialID()),
			map[string]string{
				"po_id":    strconv.Itoa(po.ID()),
				"material": po.MaterialID(),
				"quantity": strconv.Itoa(po.Quantity()),
			})
	}
	for _, po := range delayed {
		e.emit(EventArrivalDelayed, fmt.Sprintf("PO-%d delayed: storage cannot hold %d x %s", po.ID(), po.Quantity(), po.MaterialID()),
			map[string]string{
				"po_id":    strconv.Itoa(po.ID()),
				"material": po.MaterialID(),
				"quantity": strconv.Itoa(po.Quantity()),
				"stored":   strconv.Itoa(e.stock.TotalPhysical()),
			})
	}
	s.ArrivedPurchases = len(arrived)
	s.DelayedPurchases = len(delayed)
	return e.allocateMaterials()
}

// allocateMaterials hands uncommitted material to accepted orders that are
// still short, oldest order first
func (e *Engine) allocateMaterials() error {
	for _, o := range e.orders.All(production.StatusAccepted) {
		short := o.Shortfall()
		if len(short) == 0 {
			continue
		}
		granted := make(map[string]int)
		for _, id := range sortedIDs(short) {
			take := min(e.stock.Available(id), short[id])
			if take <= 0 {
				continue
			}
			if err := e.stock.Reserve(id, take); err != nil {
				return err
			}
			if err := e.orders.Commit(o.ID(), id, take); err != nil {
				return err
			}
			granted[id] = take
		}
		if len(granted) > 0 {
			e.emit(EventMaterialsAllocated, fmt.Sprintf("%s received materials %s", o.Label(), formatCounts(granted)),
				map[string]string{
					"order_id":  strconv.Itoa(o.ID()),
					"allocated": formatCounts(granted),
					"shortfall": formatCounts(o.Shortfall()),
				})
		}
	}
	return nil
}

func (e *Engine) progressProduction(day int, s *DaySummary) error {
	storage := e.scenario.Capacity.Storage
	for _, o := range e.orders.All(production.StatusInProgress) {
		if _, err := e.orders.Tick(o.ID()); err != nil {
			return err
		}
		product, err := e.catalog.Product(o.ProductID())
		if err != nil {
			return err
		}
		if o.DaysInProduction() < product.ProductionDays {
			continue
		}
		if e.stock.TotalPhysical()+o.Quantity() > storage {
			s.DelayedOrders++
			e.emit(EventProductionDelayed, fmt.Sprintf("%s finished but storage cannot hold %d x %s", o.Label(), o.Quantity(), o.ProductID()),
				map[string]string{"order_id": strconv.Itoa(o.ID()), "quantity": strconv.Itoa(o.Quantity())})
			continue
		}
		if err := e.stock.AddProduced(o.ProductID(), o.Quantity()); err != nil {
			return err
		}
		if err := e.stock.Reserve(o.ProductID(), o.Quantity()); err != nil {
			return err
		}
		if _, err := e.orders.Complete(o.ID(), day); err != nil {
			return err
		}
		s.CompletedOrders++
		e.emit(EventProductionCompleted, fmt.Sprintf("%s completed: %d x %s", o.Label(), o.Quantity(), o.ProductID()),
			map[string]string{
				"order_id": strconv.Itoa(o.ID()),
				"quantity": strconv.Itoa(o.Quantity()),
				"days":     strconv.Itoa(o.DaysInProduction()),
			})
	}

	if !e.scenario.AutoFulfill {
		return nil
	}
	for _, o := range e.orders.All(production.StatusCompleted) {
		fulfilled, err := e.fulfill(o.ID())
		if err != nil {
			return err
		}
		s.FulfilledOrders++
		s.Revenue = s.Revenue.Add(fulfilled.Revenue())
	}
	return nil
}

func (e *Engine) generateDemand(s *DaySummary) error {
	for _, req := range e.demand.Generate(e.catalog.ProductIDs()) {
		if _, err := e.createOrder(req.ProductID, req.Quantity, production.SourceDemand); err != nil {
			return err
		}
		s.NewOrders++
	}
	return nil
}

// chargeOperationalCost books base cost plus a per-unit cost for every unit
// still in production after today's completions
func (e *Engine) chargeOperationalCost(day int, s *DaySummary) error {
	fin := e.scenario.Financial
	units := e.orders.UnitsInProgress()
	cost := fin.BaseDailyCost.Add(fin.PerItemInProgressCost.Mul(decimal.NewFromInt(int64(units))))
	if !cost.IsPositive() {
		return nil
	}
	if _, err := e.finance.Charge(cost, ledger.TransactionTypeOperationalCost, "DAY-"+strconv.Itoa(day),
		fmt.Sprintf("operations with %d units in production", units), day); err != nil {
		return err
	}
	s.OperationalCost = cost
	e.emit(EventOperationalCost, fmt.Sprintf("operational cost %s (%d units in production)", cost.StringFixed(2), units),
		map[string]string{"amount": cost.StringFixed(2), "units_in_progress": strconv.Itoa(units)})
	return nil
}
