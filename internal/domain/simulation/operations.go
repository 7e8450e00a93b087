package simulation

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/purchasing"
	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// CreateOrder registers a customer order for qty units of a product
func (e *Engine) CreateOrder(productID string, qty int) (production.Data, error) {
	var out production.Data
	err := e.mutate(func() error {
		o, err := e.createOrder(productID, qty, production.SourceManual)
		if err != nil {
			return err
		}
		out = o.Data()
		return nil
	})
	return out, err
}

func (e *Engine) createOrder(productID string, qty int, source production.Source) (*production.Order, error) {
	required, err := e.resolver.Resolve(productID, qty)
	if err != nil {
		return nil, err
	}
	o, err := e.orders.Create(productID, qty, e.eventDay, required, source)
	if err != nil {
		return nil, err
	}
	e.emit(EventOrderCreated, fmt.Sprintf("%s created for %d x %s", o.Label(), qty, productID), map[string]string{
		"order_id": strconv.Itoa(o.ID()),
		"product":  productID,
		"quantity": strconv.Itoa(qty),
		"source":   string(source),
	})
	return o, nil
}

// AcceptOrder commits stock to a PENDING order. Finished goods on hand are
// reserved first; otherwise available materials are reserved and the rest is
// left as a shortfall to purchase.
func (e *Engine) AcceptOrder(orderID int) (production.Data, error) {
	var out production.Data
	err := e.mutate(func() error {
		o, err := e.orders.Get(orderID)
		if err != nil {
			return err
		}
		if o.Status() != production.StatusPending {
			return shared.NewInvalidStateTransitionError("production order", o.Label(),
				string(o.Status()), string(production.StatusAccepted), "")
		}

		if e.stock.Available(o.ProductID()) >= o.Quantity() {
			if err := e.stock.Reserve(o.ProductID(), o.Quantity()); err != nil {
				return err
			}
			if _, err := e.orders.Accept(orderID, true, nil); err != nil {
				return err
			}
			e.emit(EventOrderAccepted, fmt.Sprintf("%s accepted from finished stock", o.Label()), map[string]string{
				"order_id":   strconv.Itoa(o.ID()),
				"from_stock": "true",
			})
			out = o.Data()
			return nil
		}

		committed := make(map[string]int)
		required := o.Required()
		for _, id := range o.MaterialIDs() {
			take := min(e.stock.Available(id), required[id])
			if take <= 0 {
				continue
			}
			if err := e.stock.Reserve(id, take); err != nil {
				return err
			}
			committed[id] = take
		}
		if _, err := e.orders.Accept(orderID, false, committed); err != nil {
			return err
		}
		e.emit(EventOrderAccepted, fmt.Sprintf("%s accepted for production", o.Label()), map[string]string{
			"order_id":   strconv.Itoa(o.ID()),
			"from_stock": "false",
			"shortfall":  formatCounts(o.Shortfall()),
		})
		out = o.Data()
		return nil
	})
	return out, err
}

// PurchaseOutcome reports what OrderMissingMaterials bought and what it could not
type PurchaseOutcome struct {
	Placed  []purchasing.Data
	Skipped map[string]int
}

// OrderMissingMaterials buys each material an order still lacks from the
// cheapest provider it can afford. Unaffordable materials are skipped, not failed.
func (e *Engine) OrderMissingMaterials(orderID int) (PurchaseOutcome, error) {
	out := PurchaseOutcome{Skipped: make(map[string]int)}
	err := e.mutate(func() error {
		o, err := e.orders.Get(orderID)
		if err != nil {
			return err
		}
		if o.Status() != production.StatusPending && o.Status() != production.StatusAccepted {
			return shared.NewInvalidStateTransitionError("production order", o.Label(),
				string(o.Status()), string(o.Status()), "materials can only be bought for pending or accepted orders")
		}
		if o.FromStock() {
			return nil
		}

		required, committed := o.Required(), o.Committed()
		earmarked := e.purchases.EarmarkedFor(orderID)
		for _, id := range o.MaterialIDs() {
			missing := required[id] - committed[id] - earmarked[id]
			if missing <= 0 {
				continue
			}
			po, reason := e.buyCheapest(id, missing, orderID)
			if po == nil {
				out.Skipped[id] = missing
				category := EventPurchaseSkippedFunds
				if reason == "" {
					category = EventPurchaseSkippedSupply
					reason = "no provider can deliver"
				}
				e.emit(category, fmt.Sprintf("could not buy %d x %s for %s: %s", missing, id, o.Label(), reason),
					map[string]string{"order_id": strconv.Itoa(orderID), "material": id, "quantity": strconv.Itoa(missing)})
				continue
			}
			out.Placed = append(out.Placed, po.Data())
		}
		return nil
	})
	if err != nil {
		return PurchaseOutcome{}, err
	}
	return out, nil
}

// buyCheapest returns the placed order, or nil and a reason. An empty reason
// with a nil order means no provider sells a usable lot at all.
func (e *Engine) buyCheapest(materialID string, missing, orderID int) (*purchasing.PurchaseOrder, string) {
	reason := ""
	for _, q := range e.catalog.Quotes(materialID) {
		qty := q.Offering.LotQuantity(missing)
		if qty > e.scenario.Capacity.Storage {
			continue
		}
		cost := q.Offering.Cost(qty)
		if !e.finance.CanAfford(cost) {
			reason = fmt.Sprintf("insufficient funds for %s (balance %s)", cost.StringFixed(2), e.finance.Balance().StringFixed(2))
			continue
		}
		po, err := e.placePurchase(q.ProviderID, materialID, qty, orderID)
		if err != nil {
			reason = err.Error()
			continue
		}
		return po, ""
	}
	return nil, reason
}

// PlacePurchaseOrder pays for and orders qty units of a material from a provider
func (e *Engine) PlacePurchaseOrder(materialID, providerID string, qty int) (purchasing.Data, error) {
	var out purchasing.Data
	err := e.mutate(func() error {
		if qty <= 0 {
			return shared.NewValidationError("quantity", "must be positive")
		}
		if _, err := e.catalog.Material(materialID); err != nil {
			return err
		}
		if qty > e.scenario.Capacity.Storage {
			return shared.NewCapacityExceededError("storage", qty, e.scenario.Capacity.Storage)
		}
		po, err := e.placePurchase(providerID, materialID, qty, 0)
		if err != nil {
			return err
		}
		out = po.Data()
		return nil
	})
	return out, err
}

func (e *Engine) placePurchase(providerID, materialID string, qty, orderID int) (*purchasing.PurchaseOrder, error) {
	offer, err := e.catalog.Offering(providerID, materialID)
	if err != nil {
		return nil, err
	}
	cost := offer.Cost(qty)
	ref := "PO-" + strconv.Itoa(e.purchases.NextID())
	if cost.IsPositive() {
		if _, err := e.finance.Debit(cost, ledger.TransactionTypePurchase, ref,
			fmt.Sprintf("%d x %s from %s", qty, materialID, providerID), e.eventDay); err != nil {
			return nil, err
		}
	}
	po, err := e.purchases.Place(purchasing.PlaceRequest{
		ProviderID:        providerID,
		Offering:          offer,
		Quantity:          qty,
		Day:               e.eventDay,
		ProductionOrderID: orderID,
	})
	if err != nil {
		return nil, err
	}
	payload := map[string]string{
		"po_id":            strconv.Itoa(po.ID()),
		"material":         materialID,
		"provider":         providerID,
		"quantity":         strconv.Itoa(qty),
		"total_cost":       cost.StringFixed(2),
		"expected_arrival": strconv.Itoa(po.ExpectedArrivalDay()),
	}
	if orderID != 0 {
		payload["order_id"] = strconv.Itoa(orderID)
	}
	e.emit(EventPurchaseOrderPlaced, fmt.Sprintf("%s placed: %d x %s from %s, arriving day %d",
		ref, qty, materialID, providerID, po.ExpectedArrivalDay()), payload)
	return po, nil
}

// CancelPurchaseOrder withdraws a pending purchase. The payment is not refunded.
func (e *Engine) CancelPurchaseOrder(id int) (purchasing.Data, error) {
	var out purchasing.Data
	err := e.mutate(func() error {
		po, err := e.purchases.Cancel(id)
		if err != nil {
			return err
		}
		e.emit(EventPurchaseOrderCancelled, fmt.Sprintf("PO-%d cancelled", id),
			map[string]string{"po_id": strconv.Itoa(id)})
		out = po.Data()
		return nil
	})
	return out, err
}

// StartProduction moves an accepted order into production. Capacity is
// checked before materials.
func (e *Engine) StartProduction(orderID int) (production.Data, error) {
	var out production.Data
	err := e.mutate(func() error {
		o, err := e.orders.Get(orderID)
		if err != nil {
			return err
		}
		if o.Status() != production.StatusAccepted || o.FromStock() {
			reason := ""
			if o.FromStock() {
				reason = "order is served from stock"
			}
			return shared.NewInvalidStateTransitionError("production order", o.Label(),
				string(o.Status()), string(production.StatusInProgress), reason)
		}
		if o.Quantity() > e.remainingCapacity {
			return shared.NewCapacityExceededError("daily production", o.Quantity(), e.remainingCapacity)
		}
		if short := o.Shortfall(); len(short) > 0 {
			return shared.NewMaterialsShortageError(orderID, short)
		}

		committed := o.Committed()
		ids := sortedIDs(committed)
		for _, id := range ids {
			if qty := committed[id]; qty > 0 {
				if err := e.stock.CanConsume(id, qty); err != nil {
					return err
				}
			}
		}
		for _, id := range ids {
			if qty := committed[id]; qty > 0 {
				if err := e.stock.Consume(id, qty); err != nil {
					return err
				}
			}
		}
		if _, err := e.orders.Start(orderID, e.day); err != nil {
			return err
		}
		e.remainingCapacity -= o.Quantity()
		e.emit(EventProductionStarted, fmt.Sprintf("%s started: %d x %s", o.Label(), o.Quantity(), o.ProductID()),
			map[string]string{
				"order_id":           strconv.Itoa(orderID),
				"quantity":           strconv.Itoa(o.Quantity()),
				"remaining_capacity": strconv.Itoa(e.remainingCapacity),
			})
		out = o.Data()
		return nil
	})
	return out, err
}

// FulfillOrder ships an order's finished goods and books the sale
func (e *Engine) FulfillOrder(orderID int) (production.Data, error) {
	var out production.Data
	err := e.mutate(func() error {
		o, err := e.fulfill(orderID)
		if err != nil {
			return err
		}
		out = o.Data()
		return nil
	})
	return out, err
}

func (e *Engine) fulfill(orderID int) (*production.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	product, qty := o.ProductID(), o.Quantity()

	switch {
	case o.Status() == production.StatusCompleted, o.Status() == production.StatusAccepted && o.FromStock():
		if err := e.stock.Consume(product, qty); err != nil {
			return nil, err
		}
	case o.Status() == production.StatusAccepted:
		if avail := e.stock.Available(product); avail < qty {
			return nil, shared.NewInsufficientStockError(product, qty, avail)
		}
		if err := e.stock.Reserve(product, qty); err != nil {
			return nil, err
		}
		if err := e.stock.Consume(product, qty); err != nil {
			return nil, err
		}
		committed := o.Committed()
		for _, id := range sortedIDs(committed) {
			if c := committed[id]; c > 0 {
				if err := e.stock.Release(id, c); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, shared.NewInvalidStateTransitionError("production order", o.Label(),
			string(o.Status()), string(production.StatusFulfilled), "")
	}

	revenue := e.scenario.Financial.SellingPrices[product].Mul(decimal.NewFromInt(int64(qty)))
	if _, err := e.finance.Credit(revenue, ledger.TransactionTypeSale, o.Label(),
		fmt.Sprintf("sale of %d x %s", qty, product), e.eventDay); err != nil {
		return nil, err
	}
	if _, err := e.orders.Fulfill(orderID, e.eventDay, revenue); err != nil {
		return nil, err
	}
	e.emit(EventOrderFulfilled, fmt.Sprintf("%s fulfilled: %d x %s for %s", o.Label(), qty, product, revenue.StringFixed(2)),
		map[string]string{
			"order_id": strconv.Itoa(orderID),
			"quantity": strconv.Itoa(qty),
			"revenue":  revenue.StringFixed(2),
		})
	return o, nil
}

func sortedIDs(m map[string]int) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func formatCounts(m map[string]int) string {
	s := ""
	for i, id := range sortedIDs(m) {
		if i > 0 {
			s += ","
		}
		s += id + "=" + strconv.Itoa(m[id])
	}
	return s
}
