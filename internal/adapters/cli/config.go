package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/factorysim-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage factorysim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FS_* prefix, plus DATABASE_URL)
2. Config file (config.yaml)
3. Default values

User preferences (default simulation) are stored in ~/.factorysim/config.json

Examples:
  factorysim config show
  factorysim config use workshop
  factorysim config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("factorysim Configuration")
			fmt.Println("========================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:        %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultSimulation != "" {
				fmt.Printf("  Default Simulation: %s\n", userCfg.DefaultSimulation)
			} else {
				fmt.Printf("  Default Simulation: (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:               %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:                %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:               %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:               %s\n", cfg.Database.Host)
				fmt.Printf("  Port:               %d\n", cfg.Database.Port)
				fmt.Printf("  Database:           %s\n", cfg.Database.Name)
				fmt.Printf("  User:               %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:    %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nSimulation:")
			fmt.Printf("  Name:               %s\n", cfg.Simulation.Name)
			fmt.Printf("  Scenario:           %s\n", cfg.Simulation.ScenarioPath)
			fmt.Printf("  Autosave:           %t\n", cfg.Simulation.Autosave)
			fmt.Printf("  Runner Rate:        %g days/s (burst: %d)\n",
				cfg.Simulation.Runner.DaysPerSecond, cfg.Simulation.Runner.Burst)
			fmt.Printf("  Runner PID File:    %s\n", cfg.Simulation.Runner.PIDFile)
			fmt.Printf("  Shutdown Timeout:   %s\n", cfg.Simulation.Runner.ShutdownTimeout)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:            %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Endpoint:           %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:              %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:             %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:             %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

// newConfigUseCommand creates the config use subcommand
func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <simulation>",
		Short: "Set the default simulation",
		Long: `Set the simulation commands operate on when --simulation is not given.

The simulation does not need to exist yet; "factorysim init" creates it.

Example:
  factorysim config use workshop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultSimulation(args[0]); err != nil {
				return fmt.Errorf("failed to set default simulation: %w", err)
			}

			fmt.Println("✓ Default simulation set successfully")
			fmt.Printf("  Simulation: %s\n", args[0])
			fmt.Printf("\nOverride with the --simulation flag.\n")
			return nil
		},
	}
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the default simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultSimulation(); err != nil {
				return fmt.Errorf("failed to clear default simulation: %w", err)
			}

			fmt.Println("✓ Default simulation cleared")
			fmt.Println("\nCommands now use simulation.name from the configuration.")
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
