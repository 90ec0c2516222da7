// Package main hosts the newsharvest scraper entrypoint.
//
// Architecture overview:
//   - Pipeline: internal/scraper.Engine walks the URL dataset sequentially. Each URL is classified (non-article
//     patterns are skipped), fetched with retries and a politeness delay, run through the readability extractor,
//     and appended to the checkpoint store as a Record regardless of outcome.
//   - Resume: internal/checkpoint.Store appends records to the output CSV and flushes every checkpoint interval,
//     marking partial output with a _checkpoint sidecar. On startup the store reloads the CSV so already-processed
//     URLs are skipped; Finalize removes the sidecar once the run completes.
//   - Fetch: internal/fetcher/colly performs plain HTTP fetches with per-attempt collector clones and optional
//     robots.txt enforcement; internal/fetcher/headless drives Chromedp for JavaScript-rendered pages when
//     fetcher.mode=headless. Both honor exponential backoff between attempts.
//   - Side channels: after a successful run the final CSV can be mirrored row-by-row into Postgres, archived to a
//     GCS bucket or local directory, and announced on a Pub/Sub topic with the output's SHA-256. All three are
//     optional providers selected by config; failures there never invalidate the CSV on disk.
//   - Configuration & plumbing: Viper populates config from file/env (NEWSHARVEST_ prefix) with cobra flags for
//     the per-run knobs; zap provides structured logging with an optional rotating file sink; Prometheus counters
//     and histograms are served by the optional monitor HTTP server.
//
// Operational notes:
//   - Concurrency model: one URL at a time, on purpose. Politeness toward news sites comes from the sequential
//     walk plus a uniform random delay between URLs; retries back off exponentially per attempt.
//   - Shutdown: SIGINT/SIGTERM cancel the run context. The engine stops between URLs, the checkpoint keeps the
//     last flushed state, and the next invocation resumes. At most one interval of work is repeated.
//   - Observability: zap logs carry the run ID and URL at each transition; the monitor server (monitor.enabled)
//     exposes /healthz, /readyz, /progress, and Prometheus /metrics while a run is in flight.
//
// Quick checklist:
//   - Configure via newsharvest.yaml or env vars: NEWSHARVEST_SCRAPE_INPUT, NEWSHARVEST_SCRAPE_OUTPUT,
//     NEWSHARVEST_FETCHER_MODE=http/headless, NEWSHARVEST_MONITOR_ENABLED, plus database/archive/notify provider
//     settings when the side channels are wanted.
//   - Run locally: go run ./cmd/newsharvest scrape -i urls.csv -o articles.csv (flags override file/env).
//   - Resume after an interruption by re-running the exact same command; delete the output CSV and its
//     _checkpoint sidecar to start fresh.
package main
