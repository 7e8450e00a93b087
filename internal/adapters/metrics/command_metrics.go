package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
)

// CommandMetricsCollector times every request dispatched through the mediator
// and counts rejected operations by domain error kind
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	rejections      *prometheus.CounterVec
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Time spent handling a command or query, including persistence",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"command", "status"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Commands and queries dispatched, by request type and outcome",
			},
			[]string{"command", "status"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejected_operations_total",
				Help:      "Failed requests by domain error kind (UNCLASSIFIED for infrastructure errors)",
			},
			[]string{"command", "kind"},
		),
	}
}

// Register adds the collectors to Registry. A nil Registry means metrics are off.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.commandDuration, c.commandsTotal, c.rejections} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one handled request. err is the handler's result.
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		kind := string(shared.KindOf(err))
		if kind == "" {
			kind = "UNCLASSIFIED"
		}
		c.rejections.WithLabelValues(commandName, kind).Inc()
	}

	c.commandDuration.WithLabelValues(commandName, status).Observe(duration.Seconds())
	c.commandsTotal.WithLabelValues(commandName, status).Inc()
}
