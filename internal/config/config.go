package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all advisor configuration.
type Config struct {
	// API configures the REST backend.
	API APIConfig `yaml:"api"`

	// UI configures the interactive dashboard.
	UI UIConfig `yaml:"ui"`

	// Filters configures filter chip behaviour.
	Filters FiltersConfig `yaml:"filters"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api/insights/v1",
			Timeout: "0s",
		},
		UI: UIConfig{
			Theme:         "auto",
			DebounceDelay: "800ms",
			ShowMoreCount: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Dir:    ".advisor/logs",
		},
	}
}

// DefaultPath returns the config file location: ./.advisor/config.yaml when
// that directory exists, else ~/.advisor/config.yaml.
func DefaultPath() string {
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ".advisor")
		if stat, err := os.Stat(local); err == nil && stat.IsDir() {
			return filepath.Join(local, "config.yaml")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".advisor", "config.yaml")
	}
	return filepath.Join(home, ".advisor", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("ADVISOR_BASE_URL"); u != "" {
		c.API.BaseURL = u
	}
	if id := os.Getenv("ADVISOR_IDENTITY"); id != "" {
		c.API.Identity = id
	}
	if theme := os.Getenv("ADVISOR_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if os.Getenv("ADVISOR_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// GetAPITimeout returns the HTTP client timeout. Zero means no timeout.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetDebounceDelay returns the tag search debounce delay as a duration.
func (c *Config) GetDebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.UI.DebounceDelay)
	if err != nil || d <= 0 {
		return 800 * time.Millisecond
	}
	return d
}

// GetShowMoreCount returns how many tags the toolbar lists inline.
func (c *Config) GetShowMoreCount() int {
	if c.UI.ShowMoreCount <= 0 {
		return 20
	}
	return c.UI.ShowMoreCount
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url not configured (set ADVISOR_BASE_URL)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	if c.Logging.DebugMode && c.Logging.Dir == "" {
		return fmt.Errorf("logging.dir required when logging.debug_mode is set")
	}
	return nil
}
