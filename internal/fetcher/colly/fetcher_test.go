package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"

	"newsharvest/internal/scraper"
)

func testPolicy(attempts int) scraper.RetryPolicy {
	return scraper.ExponentialRetryPolicy{Attempts: attempts, Unit: time.Millisecond}
}

func newTestFetcher(cfg Config, attempts int) *Fetcher {
	return New(cfg, testPolicy(attempts), scraper.TimerPause{}, nil)
}

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	var gotAgent atomic.Value
	var gotAcceptLanguage atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		gotAcceptLanguage.Store(r.Header.Get("Accept-Language"))
		w.Write([]byte("<html><body>article</body></html>"))
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 3)

	body, err := f.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if !strings.Contains(string(body), "article") {
		t.Fatalf("unexpected body: %q", body)
	}

	agent, _ := gotAgent.Load().(string)
	found := false
	for _, ua := range DefaultUserAgents {
		if ua == agent {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("user agent %q not from the default pool", agent)
	}
	if lang, _ := gotAcceptLanguage.Load().(string); lang != defaultHeaders["Accept-Language"] {
		t.Fatalf("expected default Accept-Language header, got %q", lang)
	}
}

func TestFetcherRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html>finally</html>"))
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 3)

	body, err := f.Fetch(context.Background(), server.URL+"/flaky")
	if err != nil {
		t.Fatalf("expected third attempt to succeed, got %v", err)
	}
	if !strings.Contains(string(body), "finally") {
		t.Fatalf("unexpected body: %q", body)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestFetcherGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 2)

	_, err := f.Fetch(context.Background(), server.URL+"/down")
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "unexpected status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestFetcherNotFoundIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 1)

	_, err := f.Fetch(context.Background(), server.URL+"/missing")
	if err == nil || !strings.Contains(err.Error(), "unexpected status 404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestFetcherEmptyBodyIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 1)

	_, err := f.Fetch(context.Background(), server.URL+"/empty")
	if err == nil || !strings.Contains(err.Error(), "empty response body") {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestFetcherCancelledContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html>never</html>"))
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, server.URL+"/article")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := hits.Load(); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
}

func TestFetcherRespectsRobots(t *testing.T) {
	t.Parallel()

	var pageHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		w.Write([]byte("<html>hidden</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second, RespectRobots: true}, 3)

	_, err := f.Fetch(context.Background(), server.URL+"/article")
	if !errors.Is(err, colly.ErrRobotsTxtBlocked) {
		t.Fatalf("expected robots block, got %v", err)
	}
	if got := pageHits.Load(); got != 0 {
		t.Fatalf("expected the page to stay unfetched, got %d hits", got)
	}
}

func TestFetcherIgnoresRobotsByDefault(t *testing.T) {
	t.Parallel()

	var robotsHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		robotsHits.Add(1)
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>open</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second}, 1)

	body, err := f.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if !strings.Contains(string(body), "open") {
		t.Fatalf("unexpected body: %q", body)
	}
	if got := robotsHits.Load(); got != 0 {
		t.Fatalf("expected robots.txt to be skipped, got %d hits", got)
	}
}

func TestFetcherCustomUserAgents(t *testing.T) {
	t.Parallel()

	var gotAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := newTestFetcher(Config{Timeout: 5 * time.Second, UserAgents: []string{"custom-agent/1.0"}}, 1)

	if _, err := f.Fetch(context.Background(), server.URL+"/article"); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if agent, _ := gotAgent.Load().(string); agent != "custom-agent/1.0" {
		t.Fatalf("expected the configured agent, got %q", agent)
	}
}
