// Package metrics exposes Prometheus collectors for the scraping pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal              *prometheus.CounterVec
	fetchAttemptsTotal      *prometheus.CounterVec
	checkpointFlushesTotal  prometheus.Counter
	checkpointRecords       prometheus.Gauge
	requestDelaySeconds     prometheus.Histogram
	fetchDurationSeconds    *prometheus.HistogramVec
	articleLengthCharacters prometheus.Histogram
	httpRequestsTotal       *prometheus.CounterVec
	httpDurationSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsharvest_pages_total",
				Help: "Total number of URLs processed, labeled by domain and terminal status.",
			},
			[]string{"domain", "status"},
		)

		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsharvest_fetch_attempts_total",
				Help: "Total number of fetch attempts, labeled by result.",
			},
			[]string{"result"},
		)

		checkpointFlushesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newsharvest_checkpoint_flushes_total",
				Help: "Total number of checkpoint files written.",
			},
		)

		checkpointRecords = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newsharvest_checkpoint_records",
				Help: "Number of records currently held by the checkpoint store.",
			},
		)

		requestDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsharvest_request_delay_seconds",
				Help:    "Histogram of politeness delays between page loads.",
				Buckets: []float64{0.5, 1, 2, 3, 4, 5, 8, 13},
			},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsharvest_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by result.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"result"},
		)

		articleLengthCharacters = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsharvest_article_length_characters",
				Help:    "Histogram of extracted article lengths in characters.",
				Buckets: []float64{200, 500, 1000, 2500, 5000, 10000, 25000},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsharvest_http_requests_total",
				Help: "Total number of monitor HTTP requests, labeled by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		)

		httpDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsharvest_http_request_duration_seconds",
				Help:    "Histogram of monitor HTTP request latencies, labeled by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the processed-page counter for a domain and status.
func ObservePage(domain, status string) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(domain, status).Inc()
}

// ObserveFetchAttempt counts one fetch attempt with the given result.
func ObserveFetchAttempt(result string) {
	if fetchAttemptsTotal == nil {
		return
	}
	fetchAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveFetchDuration records how long one fetch attempt took.
func ObserveFetchDuration(result string, duration time.Duration) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveCheckpointFlush counts one checkpoint write.
func ObserveCheckpointFlush() {
	if checkpointFlushesTotal == nil {
		return
	}
	checkpointFlushesTotal.Inc()
}

// SetCheckpointRecords tracks the record count held by the checkpoint store.
func SetCheckpointRecords(n int) {
	if checkpointRecords == nil {
		return
	}
	checkpointRecords.Set(float64(n))
}

// ObserveDelay records the duration of a politeness wait.
func ObserveDelay(duration time.Duration) {
	if requestDelaySeconds == nil {
		return
	}
	requestDelaySeconds.Observe(duration.Seconds())
}

// ObserveArticleLength records the character count of an extracted article.
func ObserveArticleLength(chars int) {
	if articleLengthCharacters == nil {
		return
	}
	articleLengthCharacters.Observe(float64(chars))
}

// ObserveHTTPRequest records one monitor HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpRequestsTotal == nil || httpDurationSeconds == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
