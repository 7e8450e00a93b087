package config

import "time"

// SimulationConfig selects and drives the simulation the CLI works on
type SimulationConfig struct {
	// Name keys the stored snapshot, events and transactions
	Name string `mapstructure:"name" validate:"required,max=64"`

	// Default scenario document for "init" when --scenario is not given
	ScenarioPath string `mapstructure:"scenario_path"`

	// Save a snapshot after every successful command
	Autosave bool `mapstructure:"autosave"`

	Runner RunnerConfig `mapstructure:"runner"`
}

// RunnerConfig paces the continuous "run" command
type RunnerConfig struct {
	// Simulated days advanced per wall-clock second
	DaysPerSecond float64 `mapstructure:"days_per_second" validate:"gt=0"`

	// Days that may be advanced back to back after an idle period
	Burst int `mapstructure:"burst" validate:"min=1"`

	// PID file preventing two runners on the same database
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Time allowed for the final save after a stop signal
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
