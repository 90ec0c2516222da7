// Package cmd defines and implements the CLI commands for the newsharvest executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeInput    string
	scrapeOutput   string
	scrapeInterval int
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
// It retrieves the application instance built by the root command's
// PersistentPreRunE from the context and runs one scrape pass with it.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape pass over the URL dataset",
		Long: `Reads the input dataset, skips URLs already present in the output CSV,
and fetches, extracts, and appends the rest. Progress is flushed at the
configured checkpoint interval, so an interrupted run loses at most one
interval of work and resumes on the next invocation.`,

		RunE: runScrapeCommand,
	}

	cmd.Flags().StringVarP(&scrapeInput, "input", "i", "", "CSV dataset of URLs to scrape")
	cmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output CSV path")
	cmd.Flags().IntVar(&scrapeInterval, "checkpoint-interval", 0, "records between checkpoint flushes")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := appInstance.Run(cmd.Context()); err != nil {
		if errors.Is(err, context.Canceled) {
			zap.L().Info("Scrape interrupted; checkpoint preserved.")
			return nil
		}
		return fmt.Errorf("run scrape: %w", err)
	}

	zap.L().Info("Scrape command finished.")
	return nil
}

func resolveApp(ctx context.Context) (Application, error) {
	appInstance, ok := ctx.Value(appKey).(Application)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
