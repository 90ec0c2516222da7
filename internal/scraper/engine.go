// Package scraper implements the resumable fetch-extract-persist pipeline:
// each input URL is classified, politely fetched, run through article
// extraction, and appended to a checkpointed CSV so that interrupted runs
// resume where they left off.
package scraper

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"newsharvest/internal/metrics"
)

// Engine drives the pipeline over a list of URLs, one at a time. It owns
// the aggregate statistics; collaborators only report per-URL outcomes.
type Engine struct {
	classifier Classifier
	fetcher    Fetcher
	extractor  Extractor
	store      Checkpointer
	delays     DelayPolicy
	pause      PauseController
	clock      Clock
	log        *zap.Logger

	mu    sync.RWMutex
	stats RunStats
}

// NewEngine wires the pipeline stages together. The logger may be nil.
func NewEngine(
	classifier Classifier,
	fetcher Fetcher,
	extractor Extractor,
	store Checkpointer,
	delays DelayPolicy,
	pause PauseController,
	clock Clock,
	logger *zap.Logger,
	runID string,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		classifier: classifier,
		fetcher:    fetcher,
		extractor:  extractor,
		store:      store,
		delays:     delays,
		pause:      pause,
		clock:      clock,
		log:        logger.With(zap.String("run_id", runID)),
	}
}

// Run processes every URL not already covered by the checkpoint, appending
// one record per URL and finalizing the output file at the end. It returns
// the statistics accumulated so far even when it stops early on a
// checkpoint error or context cancellation.
func (e *Engine) Run(ctx context.Context, urls []string) (RunStats, error) {
	records, processed, err := e.store.Load()
	if err != nil {
		return e.StatsSnapshot(), fmt.Errorf("load checkpoint: %w", err)
	}

	remaining := remainingURLs(urls, processed)

	e.log.Info("starting run",
		zap.Int("input_urls", len(urls)),
		zap.Int("already_processed", len(records)),
		zap.Int("remaining", len(remaining)),
	)

	e.mu.Lock()
	e.stats = NewRunStats(len(remaining))
	e.mu.Unlock()

	for i, rawURL := range remaining {
		if err := ctx.Err(); err != nil {
			return e.StatsSnapshot(), err
		}

		e.log.Info("processing url",
			zap.Int("position", i+1),
			zap.Int("of", len(remaining)),
			zap.String("url", rawURL),
		)

		rec := e.processURL(ctx, rawURL)
		if err := e.store.Append(rec); err != nil {
			return e.StatsSnapshot(), fmt.Errorf("append record: %w", err)
		}
		e.observe(rec)

		if i < len(remaining)-1 {
			delay := e.delays.NextDelay()
			metrics.ObserveDelay(delay)
			if err := e.pause.Pause(ctx, delay); err != nil {
				return e.StatsSnapshot(), err
			}
		}
	}

	if err := e.store.Finalize(); err != nil {
		return e.StatsSnapshot(), fmt.Errorf("finalize output: %w", err)
	}

	stats := e.StatsSnapshot()
	e.logSummary(stats)
	return stats, nil
}

// processURL runs one URL through classification, fetch, and extraction,
// always producing a terminal record.
func (e *Engine) processURL(ctx context.Context, rawURL string) Record {
	rec := Record{
		URL:       rawURL,
		Status:    StatusFailed,
		Domain:    DomainOf(rawURL),
		ScrapedAt: e.clock.Now(),
	}

	if skip, reason := e.classifier.ShouldSkip(rawURL); skip {
		rec.Status = StatusSkipped
		rec.Error = reason
		e.log.Info("skipped url", zap.String("url", rawURL), zap.String("reason", reason))
		return rec
	}

	content, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil || len(content) == 0 {
		rec.Error = ReasonFetchFailed
		e.log.Error("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return rec
	}

	article, err := e.extractor.Extract(content, rawURL)
	if err != nil {
		rec.Error = ReasonExtractFailed
		e.log.Warn("extraction failed", zap.String("url", rawURL), zap.Error(err))
		return rec
	}

	rec.Status = StatusSuccess
	rec.Text = article.Text
	rec.Title = article.Title
	rec.Author = article.Author
	rec.Date = article.Date
	rec.Description = article.Description
	e.log.Info("scraped article",
		zap.String("url", rawURL),
		zap.String("domain", rec.Domain),
		zap.Int("chars", utf8.RuneCountInString(article.Text)),
	)
	return rec
}

func (e *Engine) observe(rec Record) {
	e.mu.Lock()
	e.stats.Observe(rec)
	e.mu.Unlock()
	metrics.ObservePage(rec.Domain, string(rec.Status))
}

// StatsSnapshot returns a copy of the aggregate counters. It is safe to
// call while a run is in flight.
func (e *Engine) StatsSnapshot() RunStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats.clone()
}

func (e *Engine) logSummary(stats RunStats) {
	e.log.Info("run complete",
		zap.Int("processed", stats.Processed()),
		zap.Int("success", stats.Success),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	for domain, counts := range stats.ByDomain {
		e.log.Info("domain summary",
			zap.String("domain", domain),
			zap.Int("success", counts.Success),
			zap.Int("failed", counts.Failed),
			zap.Int("skipped", counts.Skipped),
		)
	}
}

// remainingURLs filters out URLs already present in the checkpoint and
// collapses duplicates, preserving first-seen order.
func remainingURLs(urls []string, processed map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := processed[u]; ok {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
