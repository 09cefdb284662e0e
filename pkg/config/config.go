package config

import (
	"time"
)

// Config is the runtime configuration for the trigger processing engine.
type Config struct {
	Logging      LoggingConfig      `koanf:"logging"      validate:"required"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator" validate:"required"`
	Handler      HandlerConfig      `koanf:"handler"`
}

// LoggingConfig controls the process-wide logger.
type LoggingConfig struct {
	Level     string `koanf:"level"      validate:"oneof=debug info warn error disabled" env:"LOGGING_LEVEL"`
	JSON      bool   `koanf:"json"                                                       env:"LOGGING_JSON"`
	AddSource bool   `koanf:"add_source"                                                 env:"LOGGING_ADD_SOURCE"`
}

// OrchestratorConfig tunes workflow execution bookkeeping.
type OrchestratorConfig struct {
	// DefaultTimeout bounds a dispatch when the trigger's handler policy
	// carries no timeout of its own.
	DefaultTimeout time.Duration `koanf:"default_timeout" validate:"min=0"       env:"ORCHESTRATOR_DEFAULT_TIMEOUT"`
	// HistorySize caps the retained terminal workflow contexts.
	HistorySize int `koanf:"history_size"    validate:"min=1,max=1000000" env:"ORCHESTRATOR_HISTORY_SIZE"`
}

// HandlerConfig tunes the trigger handler layer.
type HandlerConfig struct {
	// ConfigFile optionally points at a YAML policy document overlaying the
	// seeded per-trigger-type handler configuration.
	ConfigFile string `koanf:"config_file" env:"HANDLER_CONFIG_FILE"`
	// FilterCostLimit caps the evaluation cost of one admission filter.
	FilterCostLimit uint64 `koanf:"filter_cost_limit" validate:"min=1" env:"HANDLER_FILTER_COST_LIMIT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Orchestrator: OrchestratorConfig{
			DefaultTimeout: 2 * time.Minute,
			HistorySize:    1024,
		},
		Handler: HandlerConfig{
			FilterCostLimit: 1000,
		},
	}
}
