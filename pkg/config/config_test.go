package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load defaults when no environment is set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 2*time.Minute, cfg.Orchestrator.DefaultTimeout)
		assert.Equal(t, 1024, cfg.Orchestrator.HistorySize)
		assert.Equal(t, uint64(1000), cfg.Handler.FilterCostLimit)
	})
	t.Run("Should override defaults from the environment", func(t *testing.T) {
		t.Setenv("PULSE_LOGGING_LEVEL", "debug")
		t.Setenv("PULSE_LOGGING_JSON", "true")
		t.Setenv("PULSE_ORCHESTRATOR_HISTORY_SIZE", "64")
		t.Setenv("PULSE_ORCHESTRATOR_DEFAULT_TIMEOUT", "90s")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.JSON)
		assert.Equal(t, 64, cfg.Orchestrator.HistorySize)
		assert.Equal(t, 90*time.Second, cfg.Orchestrator.DefaultTimeout)
	})
	t.Run("Should reject invalid log levels", func(t *testing.T) {
		t.Setenv("PULSE_LOGGING_LEVEL", "verbose")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid configuration")
	})
	t.Run("Should reject out-of-range history sizes", func(t *testing.T) {
		t.Setenv("PULSE_ORCHESTRATOR_HISTORY_SIZE", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should map section and field", func(t *testing.T) {
		assert.Equal(t, "orchestrator.history_size", transformEnvKey("ORCHESTRATOR_HISTORY_SIZE"))
		assert.Equal(t, "logging.level", transformEnvKey("LOGGING_LEVEL"))
		assert.Equal(t, "handler.filter_cost_limit", transformEnvKey("HANDLER_FILTER_COST_LIMIT"))
	})
	t.Run("Should pass single tokens through", func(t *testing.T) {
		assert.Equal(t, "logging", transformEnvKey("LOGGING"))
	})
	t.Run("Should tolerate stray underscores", func(t *testing.T) {
		assert.Equal(t, "logging.level", transformEnvKey("_LOGGING__LEVEL_"))
	})
}
