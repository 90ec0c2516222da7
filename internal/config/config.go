// Package config defines the typed runtime configuration for the pipeline.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"newsharvest/internal/logging"
)

// ScrapeConfig controls the pipeline run itself.
type ScrapeConfig struct {
	Input              string        `mapstructure:"input"`
	Output             string        `mapstructure:"output"`
	CheckpointInterval int           `mapstructure:"checkpoint_interval"`
	MinDelay           time.Duration `mapstructure:"min_delay"`
	MaxDelay           time.Duration `mapstructure:"max_delay"`
	MinArticleLength   int           `mapstructure:"min_article_length"`
	SkipPatterns       []string      `mapstructure:"skip_patterns"`
}

// FetcherConfig selects and tunes the page fetcher.
type FetcherConfig struct {
	Mode          string        `mapstructure:"mode"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RespectRobots bool          `mapstructure:"respect_robots"`
	UserAgents    []string      `mapstructure:"user_agents"`
}

// MonitorConfig controls the optional observability HTTP server.
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// TelemetryConfig controls the OpenTelemetry providers. Spans are exported to
// Google Cloud Trace only when a project ID is set.
type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
}

// PostgresConfig locates the article mirror table.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// DatabaseConfig selects the database provider.
type DatabaseConfig struct {
	Provider string         `mapstructure:"provider"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// GCSArchiveConfig locates the GCS archive bucket.
type GCSArchiveConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// LocalArchiveConfig locates the local archive directory.
type LocalArchiveConfig struct {
	Dir string `mapstructure:"dir"`
}

// ArchiveConfig selects where finished output files are archived.
type ArchiveConfig struct {
	Provider string             `mapstructure:"provider"`
	Prefix   string             `mapstructure:"prefix"`
	GCS      GCSArchiveConfig   `mapstructure:"gcs"`
	Local    LocalArchiveConfig `mapstructure:"local"`
}

// PubSubConfig locates the completion topic.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// NotifyConfig selects the run-completion notifier.
type NotifyConfig struct {
	Provider string       `mapstructure:"provider"`
	PubSub   PubSubConfig `mapstructure:"pubsub"`
}

// Config is the root of the runtime configuration tree.
type Config struct {
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Logging   logging.Config  `mapstructure:"logging"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// Load unmarshals a viper instance into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Scrape.Output == "" {
		return fmt.Errorf("scrape: output path must not be empty")
	}
	if c.Scrape.CheckpointInterval <= 0 {
		return fmt.Errorf("scrape: checkpoint interval must be positive, got %d", c.Scrape.CheckpointInterval)
	}
	if c.Scrape.MinDelay <= 0 {
		return fmt.Errorf("scrape: min delay must be positive, got %s", c.Scrape.MinDelay)
	}
	if c.Scrape.MaxDelay < c.Scrape.MinDelay {
		return fmt.Errorf("scrape: max delay %s must not be below min delay %s", c.Scrape.MaxDelay, c.Scrape.MinDelay)
	}
	if c.Scrape.MinArticleLength <= 0 {
		return fmt.Errorf("scrape: min article length must be positive, got %d", c.Scrape.MinArticleLength)
	}

	switch c.Fetcher.Mode {
	case "http", "headless":
	default:
		return fmt.Errorf("fetcher: unsupported mode %q", c.Fetcher.Mode)
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher: timeout must be positive, got %s", c.Fetcher.Timeout)
	}
	if c.Fetcher.MaxRetries < 1 {
		return fmt.Errorf("fetcher: max retries must be at least 1, got %d", c.Fetcher.MaxRetries)
	}

	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		return fmt.Errorf("monitor: addr must not be empty when enabled")
	}

	switch c.Database.Provider {
	case "noop":
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database: postgres provider requires a dsn")
		}
		if c.Database.Postgres.Table == "" {
			return fmt.Errorf("database: postgres provider requires a table")
		}
	default:
		return fmt.Errorf("database: unsupported provider %q", c.Database.Provider)
	}

	switch c.Archive.Provider {
	case "noop":
	case "local":
		if c.Archive.Local.Dir == "" {
			return fmt.Errorf("archive: local provider requires a dir")
		}
	case "gcs":
		if c.Archive.GCS.Bucket == "" {
			return fmt.Errorf("archive: gcs provider requires a bucket")
		}
	default:
		return fmt.Errorf("archive: unsupported provider %q", c.Archive.Provider)
	}

	switch c.Notify.Provider {
	case "noop":
	case "pubsub":
		if c.Notify.PubSub.ProjectID == "" || c.Notify.PubSub.TopicID == "" {
			return fmt.Errorf("notify: pubsub provider requires project_id and topic_id")
		}
	default:
		return fmt.Errorf("notify: unsupported provider %q", c.Notify.Provider)
	}

	return nil
}
