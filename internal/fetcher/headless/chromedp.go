// Package headless contains fetchers that render JavaScript via a browser
// before extraction, for sources that assemble the article body
// client-side.
package headless

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"newsharvest/internal/metrics"
	"newsharvest/internal/scraper"
)

// DefaultTimeout bounds one navigation, including render time.
const DefaultTimeout = 45 * time.Second

// acceptLanguage matches the header sent by the plain HTTP fetcher.
const acceptLanguage = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"

// Config controls the headless fetcher.
type Config struct {
	// UserAgents, when non-empty, is rotated per attempt. An empty pool
	// keeps the browser's native agent.
	UserAgents []string
	Timeout    time.Duration
}

// Fetcher implements scraper.Fetcher using chromedp and headless Chrome.
type Fetcher struct {
	cfg         Config
	policy      scraper.RetryPolicy
	pause       scraper.PauseController
	log         *zap.Logger
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewChromedp creates a headless fetcher backed by chromedp. The browser
// process starts lazily on the first fetch.
func NewChromedp(cfg Config, policy scraper.RetryPolicy, pause scraper.PauseController, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		policy:      policy,
		pause:       pause,
		log:         logger,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close shuts down the browser allocator.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch renders rawURL in the browser and returns the settled DOM,
// re-attempting per the retry policy.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.policy.MaxAttempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		body, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			metrics.ObserveFetchAttempt("success")
			metrics.ObserveFetchDuration("success", time.Since(start))
			return body, nil
		}

		lastErr = err
		metrics.ObserveFetchAttempt("error")
		metrics.ObserveFetchDuration("error", time.Since(start))
		f.log.Warn("headless fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if !f.policy.ShouldRetry(err, attempt) {
			break
		}
		if err := f.pause.Pause(ctx, f.policy.Backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	taskCtx, taskCancel := chromedp.NewContext(f.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, f.cfg.Timeout)
	defer cancel()

	// Propagate caller cancellation into the browser task.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	meta := &responseMeta{}
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	var html string
	actions := []chromedp.Action{
		f.networkSetupAction(f.pickAgent()),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	status := meta.statusWithFallback()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	if html == "" {
		return nil, errors.New("empty rendered document")
	}
	return []byte(html), nil
}

func (f *Fetcher) networkSetupAction(agent string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if agent != "" {
			if err := emulation.SetUserAgentOverride(agent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		headers := network.Headers{"Accept-Language": acceptLanguage}
		if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
			return fmt.Errorf("set extra headers: %w", err)
		}
		return nil
	})
}

func (f *Fetcher) pickAgent() string {
	if len(f.cfg.UserAgents) == 0 {
		return ""
	}
	if len(f.cfg.UserAgents) == 1 {
		return f.cfg.UserAgents[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(f.cfg.UserAgents))))
	if err != nil {
		return f.cfg.UserAgents[0]
	}
	return f.cfg.UserAgents[n.Int64()]
}

// responseMeta records the status of the main document response; on a
// redirect chain the last document response wins.
type responseMeta struct {
	mu     sync.RWMutex
	status int
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(resp.Response.Status)
	m.mu.Unlock()
}

// statusWithFallback returns the captured status, defaulting to 200 when no
// document response event was seen.
func (m *responseMeta) statusWithFallback() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == 0 {
		return http.StatusOK
	}
	return m.status
}
