package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	simulationCommands "github.com/andrescamacho/factorysim-go/internal/application/simulation/commands"
	simulationQueries "github.com/andrescamacho/factorysim-go/internal/application/simulation/queries"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/config"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start a new simulation from a scenario file",
		Long: `Initialize the selected simulation at day 0 from a scenario document.

Any existing state, events and transactions stored under the same simulation
name are discarded.

Example:
  factorysim init --scenario configs/scenarios/chairs.yaml
  factorysim --simulation trial-2 init --scenario chairs.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				path := scenarioPath
				if path == "" {
					path = a.cfg.Simulation.ScenarioPath
				}
				if path == "" {
					return fmt.Errorf("--scenario flag is required (or set simulation.scenario_path)")
				}

				scenario, err := config.LoadScenario(path)
				if err != nil {
					return err
				}
				resp, err := a.send(ctx, &simulationCommands.InitializeSimulationCommand{Scenario: scenario})
				if err != nil {
					return err
				}
				status := resp.(*simulationCommands.InitializeSimulationResponse).Status
				if printJSONIfRequested(status) {
					return nil
				}
				fmt.Printf("✓ Simulation %q initialized from %s\n\n", a.name, path)
				printStatus(a.name, status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML or JSON scenario document")
	return cmd
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current day, balance, capacity and order counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &simulationQueries.GetStatusQuery{})
				if err != nil {
					return err
				}
				status := resp.(*simulationQueries.GetStatusResponse)
				if printJSONIfRequested(status.Status) {
					return nil
				}
				printStatus(status.Simulation, status.Status)
				return nil
			})
		},
	}
}

// NewAdvanceCommand creates the advance command
func NewAdvanceCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the simulation by one or more days",
		Long: `Advance the simulation day by day. Each day receives due purchase orders,
progresses production, generates demand and charges operational costs.

A failing day is rolled back completely; days before it remain applied.

Example:
  factorysim advance
  factorysim advance --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &simulationCommands.AdvanceDayCommand{Days: days})
				var summaries []simulation.DaySummary
				if advanced, ok := resp.(*simulationCommands.AdvanceDayResponse); ok && advanced != nil {
					summaries = advanced.Summaries
				}
				if !printJSONIfRequested(summaries) {
					printDaySummaries(summaries)
				}
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 1, "Number of days to advance")
	return cmd
}

// NewEventsCommand creates the events command
func NewEventsCommand() *cobra.Command {
	var (
		limit      int
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the event log",
		Long: `Show the most recent events, oldest first.

Example:
  factorysim events --limit 20
  factorysim events --category order_created --category production_completed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &simulationQueries.ListEventsQuery{Limit: limit, Categories: categories})
				if err != nil {
					return err
				}
				events := resp.(*simulationQueries.ListEventsResponse).Events
				if printJSONIfRequested(events) {
					return nil
				}
				if len(events) == 0 {
					fmt.Println("No events found")
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "DAY\tCATEGORY\tMESSAGE")
				for _, ev := range events {
					fmt.Fprintf(w, "%d\t%s\t%s\n", ev.Day, ev.Category, ev.Message)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events (0 for all)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Only show these categories")
	return cmd
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the complete simulation state as JSON",
		Long: `Export the simulation, including its event log and transactions, as a JSON
snapshot that 'factorysim import' can restore.

Example:
  factorysim export --file backup.json
  factorysim export > backup.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &simulationQueries.ExportSimulationQuery{})
				if err != nil {
					return err
				}
				data, err := simulation.MarshalSnapshot(resp.(*simulationQueries.ExportSimulationResponse).Snapshot)
				if err != nil {
					return err
				}
				if file == "" {
					_, err = os.Stdout.Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(file, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", file, err)
				}
				fmt.Printf("✓ Simulation %q exported to %s\n", a.name, file)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (default: stdout)")
	return cmd
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the simulation with an exported snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			snap, err := simulation.UnmarshalSnapshot(data)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &simulationCommands.ImportSimulationCommand{Snapshot: snap})
				if err != nil {
					return err
				}
				fmt.Printf("✓ Simulation %q imported from %s\n\n", a.name, file)
				printStatus(a.name, resp.(*simulationCommands.ImportSimulationResponse).Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file [required]")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewSimulationsCommand creates the simulations command group
func NewSimulationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "simulations",
		Aliases: []string{"sims"},
		Short:   "List, select and delete stored simulations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored simulations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				saved, err := a.sims.List(ctx)
				if err != nil {
					return err
				}
				if printJSONIfRequested(saved) {
					return nil
				}
				if len(saved) == 0 {
					fmt.Println("No simulations stored")
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "\tNAME\tDAY\tBALANCE\tUPDATED")
				for _, s := range saved {
					marker := ""
					if s.Name == a.name {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", marker, s.Name, s.Day,
						s.Balance.StringFixed(2), s.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(newConfigUseCommand())

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored simulation with its events and transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				if name == a.name && a.session.Initialized() {
					return fmt.Errorf("simulation %q is selected: select another one with --simulation first", name)
				}
				if err := a.events.DeleteBySimulation(ctx, name); err != nil {
					return err
				}
				if err := a.txs.DeleteBySimulation(ctx, name); err != nil {
					return err
				}
				if err := a.sims.Delete(ctx, name); err != nil {
					return err
				}
				fmt.Printf("✓ Simulation %q deleted\n", name)
				return nil
			})
		},
	})

	return cmd
}

func printStatus(name string, s simulation.Status) {
	fmt.Printf("Simulation:         %s\n", name)
	fmt.Printf("Day:                %d\n", s.Day)
	fmt.Printf("Balance:            %s\n", s.Balance.StringFixed(2))
	fmt.Printf("Storage:            %d / %d units (%.1f%%)\n", s.TotalUnits, s.StorageCapacity, s.StorageUtilization)
	fmt.Printf("Capacity today:     %d / %d units\n", s.RemainingCapacity, s.DailyCapacity)
	fmt.Printf("In production:      %d units\n", s.UnitsInProgress)
	fmt.Printf("Pending purchases:  %d\n", s.PendingPurchaseOrders)

	if len(s.OrdersByStatus) == 0 {
		return
	}
	parts := make([]string, 0, len(s.OrdersByStatus))
	for _, st := range orderStatuses {
		if n := s.OrdersByStatus[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", st, n))
		}
	}
	fmt.Printf("Orders:             %s\n", strings.Join(parts, " "))
}

func printDaySummaries(summaries []simulation.DaySummary) {
	if len(summaries) == 0 {
		return
	}
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "DAY\tARRIVED\tCOMPLETED\tFULFILLED\tNEW ORDERS\tREVENUE\tCOSTS\tBALANCE")
	for _, s := range summaries {
		arrived := fmt.Sprintf("%d", s.ArrivedPurchases)
		if s.DelayedPurchases > 0 {
			arrived += fmt.Sprintf(" (+%d delayed)", s.DelayedPurchases)
		}
		completed := fmt.Sprintf("%d", s.CompletedOrders)
		if s.DelayedOrders > 0 {
			completed += fmt.Sprintf(" (+%d delayed)", s.DelayedOrders)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n", s.Day, arrived, completed,
			s.FulfilledOrders, s.NewOrders, s.Revenue.StringFixed(2), s.OperationalCost.StringFixed(2),
			s.Balance.StringFixed(2))
	}
	_ = w.Flush()
}
