// Package app builds and runs the scrape pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"newsharvest/internal/archive"
	archivegcs "newsharvest/internal/archive/gcs"
	archivelocal "newsharvest/internal/archive/local"
	"newsharvest/internal/checkpoint"
	"newsharvest/internal/clock/system"
	"newsharvest/internal/config"
	"newsharvest/internal/dataset"
	"newsharvest/internal/extractor"
	collyfetcher "newsharvest/internal/fetcher/colly"
	headlessfetcher "newsharvest/internal/fetcher/headless"
	"newsharvest/internal/hash/sha256"
	"newsharvest/internal/id/uuid"
	"newsharvest/internal/metrics"
	"newsharvest/internal/monitor"
	"newsharvest/internal/notify"
	pubsubnotify "newsharvest/internal/notify/pubsub"
	"newsharvest/internal/scraper"
	pgstore "newsharvest/internal/storage/postgres"
	"newsharvest/internal/telemetry"
)

const serviceName = "newsharvest"

// App contains the pipeline's dependencies for one run.
type App struct {
	cfg   config.Config
	log   *zap.Logger
	runID string

	engine   *scraper.Engine
	store    *checkpoint.Store
	monitor  *monitor.Server
	headless *headlessfetcher.Fetcher
	gcs      *storage.Client
	articles *pgstore.ArticleStore
	archive  archive.Store
	notifier notify.Notifier
	hasher   *sha256.Hasher

	tracerShutdown func(context.Context) error
	metricShutdown func(context.Context) error
}

// New builds the pipeline from configuration. The context covers provider
// handshakes (GCS, Pub/Sub, Postgres), not the run itself.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, version string) (*App, error) {
	metrics.Init()

	a := &App{
		cfg:      cfg,
		log:      logger,
		archive:  archive.NoOp{},
		notifier: notify.NoOp{},
		hasher:   sha256.New(),
	}

	if cfg.Telemetry.Enabled {
		tp, mp, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName: serviceName,
			Version:     version,
			ProjectID:   cfg.Telemetry.ProjectID,
		})
		if err != nil {
			return nil, fmt.Errorf("telemetry init failed: %w", err)
		}
		a.tracerShutdown = tp.Shutdown
		a.metricShutdown = mp.Shutdown
	}

	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	a.runID = runID

	store, err := checkpoint.New(cfg.Scrape.Output, cfg.Scrape.CheckpointInterval, logger.Named("checkpoint"))
	if err != nil {
		return nil, fmt.Errorf("checkpoint store init failed: %w", err)
	}
	a.store = store

	fetcher, err := a.setupFetcher(logger)
	if err != nil {
		return nil, err
	}

	a.engine = scraper.NewEngine(
		scraper.NewPatternClassifier(cfg.Scrape.SkipPatterns),
		fetcher,
		extractor.NewReadability(cfg.Scrape.MinArticleLength),
		store,
		scraper.UniformDelayPolicy{Min: cfg.Scrape.MinDelay, Max: cfg.Scrape.MaxDelay},
		scraper.TimerPause{},
		system.New(),
		logger.Named("scraper"),
		runID,
	)

	if err := a.setupDatabase(ctx); err != nil {
		return nil, err
	}
	if err := a.setupArchive(ctx); err != nil {
		return nil, err
	}
	if err := a.setupNotifier(ctx); err != nil {
		return nil, err
	}

	if cfg.Monitor.Enabled {
		a.monitor = monitor.New(cfg.Monitor.Addr, a.engine, logger.Named("monitor"))
	}

	a.log.Info("application built", zap.String("run_id", runID), zap.String("mode", cfg.Fetcher.Mode))
	return a, nil
}

// RunID identifies this run in logs, archive names, and notifications.
func (a *App) RunID() string {
	return a.runID
}

// Run executes one scrape pass and, on success, the post-run side channels.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Scrape.Input == "" {
		return fmt.Errorf("scrape.input is required")
	}
	urls, err := dataset.LoadURLs(a.cfg.Scrape.Input)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if a.monitor != nil {
		a.monitor.Start()
	}

	stats, runErr := a.engine.Run(ctx, urls)

	if a.monitor != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.monitor.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("monitor shutdown failed", zap.Error(err))
		}
	}

	if runErr != nil {
		return runErr
	}
	a.finishRun(ctx, stats)
	return nil
}

// finishRun mirrors, archives, and announces a completed run. Failures here
// are logged, not returned: the canonical CSV is already on disk.
func (a *App) finishRun(ctx context.Context, stats scraper.RunStats) {
	finishedAt := time.Now().UTC()
	output := a.store.OutputPath()

	if a.articles != nil {
		records := a.store.Records()
		if err := a.articles.UpsertAll(ctx, records); err != nil {
			a.log.Error("article mirror failed", zap.Error(err))
		} else {
			a.log.Info("article mirror updated", zap.Int("records", len(records)))
		}
	}

	digest, err := a.hasher.File(output)
	if err != nil {
		a.log.Error("hash output failed", zap.Error(err))
	}

	archiveURI := a.archiveOutput(ctx, output, finishedAt)

	event := notify.Event{
		RunID:        a.runID,
		Output:       output,
		OutputSHA256: digest,
		ArchiveURI:   archiveURI,
		Total:        stats.Total,
		Success:      stats.Success,
		Failed:       stats.Failed,
		Skipped:      stats.Skipped,
		FinishedAt:   finishedAt,
	}
	msgID, err := a.notifier.Notify(ctx, event)
	if err != nil {
		a.log.Error("run notification failed", zap.Error(err))
	} else if msgID != "" {
		a.log.Info("run notification published", zap.String("message_id", msgID))
	}
}

func (a *App) archiveOutput(ctx context.Context, output string, finishedAt time.Time) string {
	objectName := archive.ObjectName(a.cfg.Archive.Prefix, a.runID, finishedAt)
	f, err := os.Open(output) // #nosec G304 -- path comes from validated configuration
	if err != nil {
		a.log.Error("open output for archive failed", zap.Error(err))
		return ""
	}
	defer func() { _ = f.Close() }()

	uri, err := a.archive.Save(ctx, objectName, f)
	if err != nil {
		a.log.Error("archive failed", zap.Error(err))
		return ""
	}
	if uri != "" {
		a.log.Info("output archived", zap.String("uri", uri))
	}
	return uri
}

// Close releases every resource the app holds.
func (a *App) Close(ctx context.Context) {
	if a.headless != nil {
		a.headless.Close()
	}
	if err := a.notifier.Close(); err != nil {
		a.log.Warn("notifier close failed", zap.Error(err))
	}
	if a.articles != nil {
		a.articles.Close()
	}
	if a.gcs != nil {
		if err := a.gcs.Close(); err != nil {
			a.log.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.metricShutdown != nil {
		if err := a.metricShutdown(ctx); err != nil {
			a.log.Warn("metric shutdown failed", zap.Error(err))
		}
	}
	a.log.Info("shutdown complete")
}

func (a *App) setupFetcher(logger *zap.Logger) (scraper.Fetcher, error) {
	policy := scraper.ExponentialRetryPolicy{Attempts: a.cfg.Fetcher.MaxRetries}
	switch a.cfg.Fetcher.Mode {
	case "headless":
		f := headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgents: a.cfg.Fetcher.UserAgents,
			Timeout:    a.cfg.Fetcher.Timeout,
		}, policy, scraper.TimerPause{}, logger.Named("fetcher"))
		a.headless = f
		a.log.Info("using headless fetcher", zap.Duration("timeout", a.cfg.Fetcher.Timeout))
		return f, nil
	case "http":
		f := collyfetcher.New(collyfetcher.Config{
			UserAgents:    a.cfg.Fetcher.UserAgents,
			RespectRobots: a.cfg.Fetcher.RespectRobots,
			Timeout:       a.cfg.Fetcher.Timeout,
		}, policy, scraper.TimerPause{}, logger.Named("fetcher"))
		a.log.Info("using colly fetcher", zap.Bool("respect_robots", a.cfg.Fetcher.RespectRobots))
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported fetcher mode %q", a.cfg.Fetcher.Mode)
	}
}

func (a *App) setupDatabase(ctx context.Context) error {
	if a.cfg.Database.Provider != "postgres" {
		a.log.Info("article mirror disabled")
		return nil
	}
	store, err := pgstore.NewArticleStore(ctx, pgstore.ArticleStoreConfig{
		DSN:   a.cfg.Database.Postgres.DSN,
		Table: a.cfg.Database.Postgres.Table,
	})
	if err != nil {
		return fmt.Errorf("article store init failed: %w", err)
	}
	a.articles = store
	a.log.Info("article store initialized", zap.String("table", a.cfg.Database.Postgres.Table))
	return nil
}

func (a *App) setupArchive(ctx context.Context) error {
	switch a.cfg.Archive.Provider {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("gcs client init failed: %w", err)
		}
		a.gcs = client
		store, err := archivegcs.New(ctx, client, archivegcs.Config{Bucket: a.cfg.Archive.GCS.Bucket})
		if err != nil {
			return fmt.Errorf("gcs archive init failed: %w", err)
		}
		a.archive = store
		a.log.Info("using GCS archive", zap.String("bucket", a.cfg.Archive.GCS.Bucket))
	case "local":
		store, err := archivelocal.New(archivelocal.Config{Dir: a.cfg.Archive.Local.Dir})
		if err != nil {
			return fmt.Errorf("local archive init failed: %w", err)
		}
		a.archive = store
		a.log.Info("using local archive", zap.String("dir", a.cfg.Archive.Local.Dir))
	default:
		a.log.Info("archiving disabled")
	}
	return nil
}

func (a *App) setupNotifier(ctx context.Context) error {
	if a.cfg.Notify.Provider != "pubsub" {
		a.log.Info("run notifications disabled")
		return nil
	}
	n, err := pubsubnotify.New(ctx, pubsubnotify.Config{
		ProjectID: a.cfg.Notify.PubSub.ProjectID,
		TopicID:   a.cfg.Notify.PubSub.TopicID,
	})
	if err != nil {
		return fmt.Errorf("pubsub notifier init failed: %w", err)
	}
	a.notifier = n
	a.log.Info("Pub/Sub notifier initialized",
		zap.String("project", a.cfg.Notify.PubSub.ProjectID),
		zap.String("topic", a.cfg.Notify.PubSub.TopicID),
	)
	return nil
}
