package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

const (
	// Namespace for all metrics
	namespace = "factorysim"
	// Subsystem for engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSimulationCollector is set by SetGlobalSimulationCollector when metrics are enabled
	globalSimulationCollector SimulationMetricsRecorder
)

// SimulationMetricsRecorder is the interface application code records simulation metrics through
type SimulationMetricsRecorder interface {
	RecordState(simulationName string, status simulation.Status, inventory []simulation.InventoryItem)
	RecordTransactions(simulationName string, transactions []ledger.Data)
	RecordDayAdvanced(simulationName string, summary simulation.DaySummary, durationSeconds float64)
	RecordDayAdvanceFailure(simulationName string, step string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSimulationCollector sets the global simulation metrics collector
func SetGlobalSimulationCollector(collector SimulationMetricsRecorder) {
	globalSimulationCollector = collector
}

// RecordSimulationState refreshes the state gauges globally
func RecordSimulationState(simulationName string, status simulation.Status, inventory []simulation.InventoryItem) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordState(simulationName, status, inventory)
	}
}

// RecordTransactions counts newly posted transactions globally
func RecordTransactions(simulationName string, transactions []ledger.Data) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordTransactions(simulationName, transactions)
	}
}

// RecordDayAdvanced records a successful day advance globally
func RecordDayAdvanced(simulationName string, summary simulation.DaySummary, durationSeconds float64) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordDayAdvanced(simulationName, summary, durationSeconds)
	}
}

// RecordDayAdvanceFailure records a rolled back day advance globally
func RecordDayAdvanceFailure(simulationName string, step string) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordDayAdvanceFailure(simulationName, step)
	}
}
