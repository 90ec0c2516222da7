// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"newsharvest/internal/scraper"
)

// NewViper builds a viper instance with defaults, environment bindings, and
// an optional config file. When cfgFile is empty, well-known paths are
// searched and a missing file is not an error; an explicitly named file
// must exist.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	// --- Set Search Paths ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("newsharvest")
		v.AddConfigPath(".")                  // Current working directory
		v.AddConfigPath("/etc/newsharvest/")  // System-wide configuration
		v.AddConfigPath("$HOME/.newsharvest") // User-specific configuration
	}

	// --- Set Defaults ---
	// Sensible defaults for every key so environment variables can override
	// each one even without a config file.
	v.SetDefault("scrape.input", "")
	v.SetDefault("scrape.output", "scraped_articles.csv")
	v.SetDefault("scrape.checkpoint_interval", 100)
	v.SetDefault("scrape.min_delay", "2s")
	v.SetDefault("scrape.max_delay", "5s")
	v.SetDefault("scrape.min_article_length", 200)
	v.SetDefault("scrape.skip_patterns", scraper.DefaultSkipPatterns)

	v.SetDefault("fetcher.mode", "http")
	v.SetDefault("fetcher.timeout", "15s")
	v.SetDefault("fetcher.max_retries", 3)
	v.SetDefault("fetcher.respect_robots", false)
	v.SetDefault("fetcher.user_agents", []string{})

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.file", "newsharvest.log")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.addr", ":9090")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.project_id", "")

	v.SetDefault("database.provider", "noop")
	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("database.postgres.table", "articles")

	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "datasets")
	v.SetDefault("archive.gcs.bucket", "")
	v.SetDefault("archive.local.dir", "data/archive")

	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.pubsub.project_id", "")
	v.SetDefault("notify.pubsub.topic_id", "")

	// --- Environment Variables ---
	v.SetEnvPrefix("NEWSHARVEST") // e.g., NEWSHARVEST_SCRAPE_CHECKPOINT_INTERVAL=50
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// --- Read Config File ---
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file found in the search paths; defaults and
		// environment variables carry the run.
	}
	return v, nil
}
