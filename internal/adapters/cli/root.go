package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath     string
	simulationName string
	verbose        bool
	jsonOutput     bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factorysim",
		Short: "factorysim - a day-stepped factory simulation",
		Long: `factorysim simulates a small factory one day at a time: customer orders,
material purchases with lead times, production capacity, storage limits and
cash flow. State is stored in the configured database, so every command
picks up where the previous one left off.

Examples:
  factorysim init --scenario configs/scenarios/chairs.yaml
  factorysim order create prod-chair 5
  factorysim order accept 1
  factorysim order buy-materials 1
  factorysim advance --days 3
  factorysim order start 1
  factorysim status
  factorysim finance summary
  factorysim run --days 30 --rate 5`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml, ./configs, /etc/factorysim)")
	rootCmd.PersistentFlags().StringVarP(&simulationName, "simulation", "s", "",
		"Simulation name (default: 'factorysim config use' selection, then simulation.name)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print results as JSON")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewAdvanceCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewOrderCommand())
	rootCmd.AddCommand(NewPurchaseCommand())
	rootCmd.AddCommand(NewInventoryCommand())
	rootCmd.AddCommand(NewFinanceCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewSimulationsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
