package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"advisor/internal/api"
	"advisor/internal/config"
	"advisor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	baseURL    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "advisor - terminal dashboard for recommendations, systems and tags",
	Long: `advisor browses the recommendation rules reported for your systems.

Filter recommendations by category, scope every listing with system tags,
and disable rules for single systems, a set of systems or the whole account.

Run without arguments to start the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it owns the terminal)
		if cmd.Use == "advisor" && cmd.CalledAs() == "advisor" {
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the dashboard
		return runInteractive(startURL)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .advisor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL (or set ADVISOR_BASE_URL)")
	rootCmd.Flags().StringVar(&startURL, "url", "/recommendations", "Initial dashboard location, e.g. /systems?tags=web")

	// Subcommands
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsToggleCmd)
	filtersCmd.AddCommand(filtersChipsCmd)
	filtersCmd.AddCommand(filtersRemoveCmd)
	filtersCmd.AddCommand(filtersClearCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesDisableCmd)

	// Add commands to root
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --base-url override.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// newClient builds the REST client. CLI commands log through the zap
// logger; the dashboard uses the file loggers.
func newClient(cfg *config.Config) (*api.Client, error) {
	opts := []api.Option{
		api.WithTimeout(cfg.GetAPITimeout()),
		api.WithIdentity(cfg.API.Identity),
	}
	if logger != nil {
		opts = append(opts, api.WithLogger(logging.New(logging.CategoryAPI, logger)))
	}
	c, err := api.NewClient(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("api client ready", zap.String("base_url", c.BaseURL()))
	}
	return c, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
