package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// SimulationMetricsCollector exposes factory state, finances and day advances
type SimulationMetricsCollector struct {
	// State gauges
	day                *prometheus.GaugeVec
	balance            *prometheus.GaugeVec
	storageUtilization *prometheus.GaugeVec
	remainingCapacity  *prometheus.GaugeVec
	unitsInProgress    *prometheus.GaugeVec
	ordersByStatus     *prometheus.GaugeVec
	pendingPurchases   *prometheus.GaugeVec
	inventoryUnits     *prometheus.GaugeVec

	// Transaction metrics
	transactionsTotal *prometheus.CounterVec
	transactionAmount *prometheus.HistogramVec

	// Day advance metrics
	daysAdvanced       *prometheus.CounterVec
	dayAdvanceFailures *prometheus.CounterVec
	dayAdvanceDuration *prometheus.HistogramVec
	ordersGenerated    *prometheus.CounterVec
	ordersCompleted    *prometheus.CounterVec
	ordersFulfilled    *prometheus.CounterVec
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, append([]string{"simulation"}, labels...))
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, append([]string{"simulation"}, labels...))
	}

	return &SimulationMetricsCollector{
		day:                gauge("current_day", "Current simulated day"),
		balance:            gauge("balance", "Current cash balance"),
		storageUtilization: gauge("storage_utilization_percent", "Physical units held as a percentage of storage capacity"),
		remainingCapacity:  gauge("remaining_daily_capacity", "Production units that can still be started today"),
		unitsInProgress:    gauge("units_in_progress", "Units currently being produced"),
		ordersByStatus:     gauge("production_orders", "Production orders by status", "status"),
		pendingPurchases:   gauge("pending_purchase_orders", "Purchase orders awaiting arrival"),
		inventoryUnits:     gauge("inventory_units", "Inventory units per item and bucket", "item", "bucket"),

		transactionsTotal: counter("transactions_total", "Transactions posted by type and category", "type", "category"),
		transactionAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transaction_amount",
				Help:      "Absolute transaction amount distribution",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"simulation", "type"},
		),

		daysAdvanced:       counter("days_advanced_total", "Simulated days advanced successfully"),
		dayAdvanceFailures: counter("day_advance_failures_total", "Rolled back day advances by failing step", "step"),
		dayAdvanceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "day_advance_duration_seconds",
				Help:      "Wall-clock time spent advancing one day",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"simulation"},
		),
		ordersGenerated: counter("orders_generated_total", "Production orders created by random demand"),
		ordersCompleted: counter("orders_completed_total", "Production orders that finished production"),
		ordersFulfilled: counter("orders_fulfilled_total", "Production orders fulfilled during day advances"),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.day,
		c.balance,
		c.storageUtilization,
		c.remainingCapacity,
		c.unitsInProgress,
		c.ordersByStatus,
		c.pendingPurchases,
		c.inventoryUnits,
		c.transactionsTotal,
		c.transactionAmount,
		c.daysAdvanced,
		c.dayAdvanceFailures,
		c.dayAdvanceDuration,
		c.ordersGenerated,
		c.ordersCompleted,
		c.ordersFulfilled,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordState overwrites every state gauge from a status snapshot
func (c *SimulationMetricsCollector) RecordState(name string, status simulation.Status, inventory []simulation.InventoryItem) {
	c.day.WithLabelValues(name).Set(float64(status.Day))
	c.balance.WithLabelValues(name).Set(status.Balance.InexactFloat64())
	c.storageUtilization.WithLabelValues(name).Set(status.StorageUtilization)
	c.remainingCapacity.WithLabelValues(name).Set(float64(status.RemainingCapacity))
	c.unitsInProgress.WithLabelValues(name).Set(float64(status.UnitsInProgress))
	c.pendingPurchases.WithLabelValues(name).Set(float64(status.PendingPurchaseOrders))

	for _, st := range production.AllStatuses() {
		c.ordersByStatus.WithLabelValues(name, string(st)).Set(float64(status.OrdersByStatus[st]))
	}

	for _, item := range inventory {
		c.inventoryUnits.WithLabelValues(name, item.ItemID, "physical").Set(float64(item.Physical))
		c.inventoryUnits.WithLabelValues(name, item.ItemID, "committed").Set(float64(item.Committed))
		c.inventoryUnits.WithLabelValues(name, item.ItemID, "on_order").Set(float64(item.OnOrder))
	}
}

// RecordTransactions counts transactions and observes their amounts
func (c *SimulationMetricsCollector) RecordTransactions(name string, transactions []ledger.Data) {
	for _, tx := range transactions {
		c.transactionsTotal.WithLabelValues(name, string(tx.TransactionType), string(tx.Category)).Inc()
		c.transactionAmount.WithLabelValues(name, string(tx.TransactionType)).Observe(tx.Amount.Abs().InexactFloat64())
	}
}

// RecordDayAdvanced records one successful day advance
func (c *SimulationMetricsCollector) RecordDayAdvanced(name string, summary simulation.DaySummary, durationSeconds float64) {
	c.daysAdvanced.WithLabelValues(name).Inc()
	c.dayAdvanceDuration.WithLabelValues(name).Observe(durationSeconds)
	c.ordersGenerated.WithLabelValues(name).Add(float64(summary.NewOrders))
	c.ordersCompleted.WithLabelValues(name).Add(float64(summary.CompletedOrders))
	c.ordersFulfilled.WithLabelValues(name).Add(float64(summary.FulfilledOrders))
}

// RecordDayAdvanceFailure counts a rolled back day advance
func (c *SimulationMetricsCollector) RecordDayAdvanceFailure(name string, step string) {
	c.dayAdvanceFailures.WithLabelValues(name, step).Inc()
}
