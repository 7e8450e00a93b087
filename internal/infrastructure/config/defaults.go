package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "factorysim.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "factorysim"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "factorysim"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Simulation defaults
	if cfg.Simulation.Name == "" {
		cfg.Simulation.Name = "default"
	}
	if cfg.Simulation.Runner.DaysPerSecond == 0 {
		cfg.Simulation.Runner.DaysPerSecond = 1
	}
	if cfg.Simulation.Runner.Burst == 0 {
		cfg.Simulation.Runner.Burst = 1
	}
	if cfg.Simulation.Runner.PIDFile == "" {
		cfg.Simulation.Runner.PIDFile = "/tmp/factorysim-runner.pid"
	}
	if cfg.Simulation.Runner.ShutdownTimeout == 0 {
		cfg.Simulation.Runner.ShutdownTimeout = 10 * time.Second
	}
}
