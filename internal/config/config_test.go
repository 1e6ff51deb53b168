package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.UI.ShowMoreCount != 20 {
		t.Errorf("expected ShowMoreCount=20, got %d", cfg.UI.ShowMoreCount)
	}
	if cfg.GetDebounceDelay() != 800*time.Millisecond {
		t.Errorf("expected 800ms debounce, got %v", cfg.GetDebounceDelay())
	}
	if cfg.GetAPITimeout() != 0 {
		t.Errorf("expected no API timeout by default, got %v", cfg.GetAPITimeout())
	}
	if cfg.UI.KeepModalOpenOnFailure {
		t.Error("expected modal to close on failure by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("ADVISOR_BASE_URL", "")
	t.Setenv("ADVISOR_THEME", "")
	t.Setenv("ADVISOR_DEBUG", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://console.example.com/api/insights/v1"
	cfg.UI.DebounceDelay = "250ms"
	cfg.UI.ShowMoreCount = 5
	cfg.Filters.StrictCatalog = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL mismatch: %s", loaded.API.BaseURL)
	}
	if loaded.GetDebounceDelay() != 250*time.Millisecond {
		t.Errorf("debounce mismatch: %v", loaded.GetDebounceDelay())
	}
	if loaded.GetShowMoreCount() != 5 {
		t.Errorf("show more mismatch: %d", loaded.GetShowMoreCount())
	}
	if !loaded.Filters.StrictCatalog {
		t.Error("strict catalog lost in round trip")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("ADVISOR_BASE_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("expected default base URL, got %s", cfg.API.BaseURL)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetters_Fallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.UI.DebounceDelay = "soon"
	cfg.API.Timeout = "-5s"

	if cfg.GetDebounceDelay() != 800*time.Millisecond {
		t.Errorf("expected fallback debounce, got %v", cfg.GetDebounceDelay())
	}
	if cfg.GetAPITimeout() != 0 {
		t.Errorf("expected zero timeout for negative value, got %v", cfg.GetAPITimeout())
	}
	if cfg.GetShowMoreCount() != 20 {
		t.Errorf("expected fallback show more count, got %d", cfg.GetShowMoreCount())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"debug without dir", func(c *Config) { c.Logging.DebugMode = true; c.Logging.Dir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	if lc.IsCategoryEnabled("tags") {
		t.Error("categories must be disabled outside debug mode")
	}
	lc.DebugMode = true
	lc.Categories = map[string]bool{"ui": false}
	if lc.IsCategoryEnabled("ui") {
		t.Error("ui should be disabled")
	}
	if !lc.IsCategoryEnabled("api") {
		t.Error("unlisted categories default to enabled")
	}
	if opts := lc.Options(); !opts.DebugMode || opts.JSONFormat {
		t.Errorf("unexpected options: %+v", opts)
	}
}
