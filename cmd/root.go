package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsharvest/internal/app"
	"newsharvest/internal/config"
	"newsharvest/internal/logging"
	pkgconfig "newsharvest/pkg/config"
)

var (
	cfgFile     string
	development bool
)

// appKeyType is the key for storing the application in the context.
type appKeyType string

const appKey appKeyType = "app"

// Application is the slice of *app.App the commands use. It is an
// interface so tests can inject a fake application.
type Application interface {
	Run(ctx context.Context) error
	Close(ctx context.Context)
}

// buildApp is the application factory. It's a variable so we can
// replace it with a mock factory in our tests.
var buildApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (Application, error) {
	return app.New(ctx, cfg, logger, version)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsharvest",
		Short: "A resumable news article scraper.",
		Long: `newsharvest fetches news article pages from a URL dataset, extracts the
readable text with metadata, and appends the results to a checkpointed CSV.
Interrupted runs restart with the same flags and resume where they left off.`,
		SilenceUsage: true,

		// Runs AFTER flags are parsed but BEFORE the subcommand's RunE,
		// so per-run flag overrides are visible when the app is built.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Only the scrape command needs the full service stack.
			if cmd.Name() != "scrape" {
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}

			// Store the app instance in the context for subcommands to use.
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Ensures services shut down even when RunE returns an error.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(Application); ok && appInstance != nil {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				appInstance.Close(closeCtx)
			}
			_ = zap.L().Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./newsharvest.yaml)")
	cmd.PersistentFlags().BoolVar(&development, "dev", false, "enable development logging")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads the config file and env, then layers per-run flag
// overrides on top before re-validating.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := pkgconfig.NewViper(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("init config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("input") {
		cfg.Scrape.Input = scrapeInput
	}
	if cmd.Flags().Changed("output") {
		cfg.Scrape.Output = scrapeOutput
	}
	if cmd.Flags().Changed("checkpoint-interval") {
		cfg.Scrape.CheckpointInterval = scrapeInterval
	}
	if development {
		cfg.Logging.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "newsharvest: %v\n", err)
		os.Exit(1)
	}
}
