package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/factorysim-go/internal/application/logging"
	"github.com/andrescamacho/factorysim-go/internal/application/runner"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		days          int
		daysPerSecond float64
		burst         int
		serveMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance the simulation continuously",
		Long: `Advance the simulation one day at a time at a paced rate until
interrupted (Ctrl+C or SIGTERM) or until --days days have passed.

Only one runner may work on a database at a time; a PID file guards it.
With metrics enabled the Prometheus endpoint is served while running.

Examples:
  factorysim run
  factorysim run --days 30 --rate 5
  factorysim run --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			a, err := openApp(ctx, appOptions{enableMetrics: serveMetrics})
			if err != nil {
				return err
			}
			defer a.close()
			ctx = a.context(ctx)

			if !a.session.Initialized() {
				return fmt.Errorf("simulation %q has not been initialized: run 'factorysim init --scenario <file>'", a.name)
			}

			runnerCfg := a.cfg.Simulation.Runner
			pid := pidfile.New(runnerCfg.PIDFile)
			if err := pid.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := pid.Release(); err != nil {
					a.logger.Log(logging.LevelWarn, "failed to remove PID file", map[string]interface{}{
						"path":  pid.Path(),
						"error": err.Error(),
					})
				}
			}()

			var server *metrics.Server
			if a.collectors != nil {
				m := a.cfg.Metrics
				server = metrics.NewServer(m.Host, m.Port, m.Path)
				errCh := server.Start()
				go func() {
					if err, ok := <-errCh; ok && err != nil {
						a.logger.Log(logging.LevelError, "metrics server failed", map[string]interface{}{
							"addr":  server.Addr(),
							"error": err.Error(),
						})
					}
				}()
				fmt.Printf("Serving metrics on http://%s%s\n", server.Addr(), m.Path)
			}

			go func() {
				select {
				case sig := <-sigChan:
					a.logger.Log(logging.LevelInfo, "received signal, stopping runner", map[string]interface{}{
						"signal": sig.String(),
					})
					cancel()
				case <-ctx.Done():
				}
			}()

			if !cmd.Flags().Changed("rate") {
				daysPerSecond = runnerCfg.DaysPerSecond
			}
			if !cmd.Flags().Changed("burst") {
				burst = runnerCfg.Burst
			}

			r := runner.New(a.mediator, runner.Options{
				DaysPerSecond: daysPerSecond,
				Burst:         burst,
				MaxDays:       days,
			})
			if !jsonOutput {
				r.OnDay(func(s simulation.DaySummary) {
					printDaySummaries([]simulation.DaySummary{s})
				})
			}

			a.logger.Log(logging.LevelInfo, "runner started", map[string]interface{}{
				"simulation":      a.name,
				"days_per_second": daysPerSecond,
				"burst":           burst,
				"max_days":        days,
			})
			result, runErr := r.Run(ctx)

			if server != nil {
				shutdownCtx, stop := context.WithTimeout(context.Background(), runnerCfg.ShutdownTimeout)
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Log(logging.LevelWarn, "metrics server shutdown failed", map[string]interface{}{
						"error": err.Error(),
					})
				}
				stop()
			}

			saveCtx, stop := context.WithTimeout(context.Background(), runnerCfg.ShutdownTimeout)
			defer stop()
			if err := a.session.Save(saveCtx); err != nil {
				return fmt.Errorf("failed to save simulation: %w", err)
			}

			a.logger.Log(logging.LevelInfo, "runner stopped", map[string]interface{}{
				"simulation":    a.name,
				"days_advanced": result.DaysAdvanced,
				"day":           result.LastDay.Day,
			})
			if printJSONIfRequested(result) {
				return runErr
			}
			fmt.Printf("\n✓ Advanced %d day(s)", result.DaysAdvanced)
			if result.DaysAdvanced > 0 {
				fmt.Printf(", now on day %d with balance %s", result.LastDay.Day, result.LastDay.Balance.StringFixed(2))
			}
			fmt.Println()
			return runErr
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Stop after this many days (0 runs until interrupted)")
	cmd.Flags().Float64Var(&daysPerSecond, "rate", 1, "Simulated days per second (0 for unpaced)")
	cmd.Flags().IntVar(&burst, "burst", 1, "Days that may run back to back after an idle period")
	cmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Serve Prometheus metrics while running")

	return cmd
}
