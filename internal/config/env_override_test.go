package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("ADVISOR_BASE_URL replaces configured url", func(t *testing.T) {
		t.Setenv("ADVISOR_BASE_URL", "http://127.0.0.1:9000/api")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://127.0.0.1:9000/api", cfg.API.BaseURL)
	})

	t.Run("ADVISOR_DEBUG enables debug logging", func(t *testing.T) {
		t.Setenv("ADVISOR_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("ADVISOR_THEME and ADVISOR_IDENTITY", func(t *testing.T) {
		t.Setenv("ADVISOR_THEME", "dark")
		t.Setenv("ADVISOR_IDENTITY", "eyJpZGVudGl0eSI6e319")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "dark", cfg.UI.Theme)
		assert.Equal(t, "eyJpZGVudGl0eSI6e319", cfg.API.Identity)
	})

	t.Run("unset variables leave config alone", func(t *testing.T) {
		t.Setenv("ADVISOR_BASE_URL", "")
		t.Setenv("ADVISOR_DEBUG", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
		assert.False(t, cfg.Logging.DebugMode)
	})
}
