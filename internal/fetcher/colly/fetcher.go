// Package collyfetcher implements scraper.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"newsharvest/internal/metrics"
	"newsharvest/internal/scraper"
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgents is a small pool of common desktop browser signatures;
// one is chosen at random for every attempt.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101",
}

// defaultHeaders accompany every request alongside the rotated User-Agent.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9",
	"Accept-Language": "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
	"Accept-Encoding": "gzip, deflate",
	"Connection":      "keep-alive",
}

// Config controls collector behavior.
type Config struct {
	UserAgents    []string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher retrieves pages with a Colly collector, rotating user agents and
// retrying transient failures according to the retry policy. Non-2xx
// responses and empty bodies count as failures.
type Fetcher struct {
	cfg           Config
	agents        []string
	policy        scraper.RetryPolicy
	pause         scraper.PauseController
	log           *zap.Logger
	baseCollector *colly.Collector
}

// New builds a Fetcher. The logger may be nil.
func New(cfg Config, policy scraper.RetryPolicy, pause scraper.PauseController, logger *zap.Logger) *Fetcher {
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		agents:        agents,
		policy:        policy,
		pause:         pause,
		log:           logger,
		baseCollector: c,
	}
}

// Fetch retrieves rawURL, re-attempting per the retry policy with
// exponential backoff between attempts. Robots exclusions and context
// cancellation stop the attempt loop immediately.
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
		f.log.Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if errors.Is(err, colly.ErrRobotsTxtBlocked) {
			break
		}
		if !f.policy.ShouldRetry(err, attempt) {
			break
		}
		if err := f.pause.Pause(ctx, f.policy.Backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

// fetchOnce executes a single HTTP GET on a cloned collector.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	collector := f.buildCollector()

	var (
		body     []byte
		status   int
		fetchErr error
	)

	agent := f.pickAgent()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", agent)
		for key, value := range defaultHeaders {
			r.Headers.Set(key, value)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			fetchErr = fmt.Errorf("unexpected status %d", r.StatusCode)
			return
		}
		body = append([]byte(nil), r.Body...)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, rawURL); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("response failed: %w", fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body (status %d)", status)
	}
	return body, nil
}

func (f *Fetcher) buildCollector() *colly.Collector {
	collector := f.baseCollector.Clone()
	// Retried URLs must not be rejected as already visited; clones share
	// the base collector's visit store.
	collector.AllowURLRevisit = true
	// Error statuses flow through OnResponse so the status check below owns
	// the success decision.
	collector.ParseHTTPErrorResponse = true
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	collector.SetRequestTimeout(f.cfg.Timeout)
	return collector
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, rawURL string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		return nil
	}
}

func (f *Fetcher) pickAgent() string {
	if len(f.agents) == 1 {
		return f.agents[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(f.agents))))
	if err != nil {
		return f.agents[0]
	}
	return f.agents[n.Int64()]
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
