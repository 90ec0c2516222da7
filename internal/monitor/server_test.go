package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsharvest/internal/metrics"
	"newsharvest/internal/scraper"
)

type fakeSource struct {
	stats scraper.RunStats
}

func (f *fakeSource) StatsSnapshot() scraper.RunStats {
	return f.stats
}

func newTestServer(source StatsSource) *Server {
	return New("127.0.0.1:0", source, zap.NewNop())
}

func TestServer_Healthz_Succeeds(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Readyz_RequiresSource(t *testing.T) {
	t.Parallel()

	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Readyz_Succeeds(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestServer_Progress_ReportsCounters(t *testing.T) {
	t.Parallel()

	source := &fakeSource{stats: scraper.RunStats{
		Total:   5,
		Success: 2,
		Failed:  1,
		Skipped: 1,
		ByDomain: map[string]scraper.DomainStats{
			"news.example": {Success: 2, Failed: 1, Skipped: 1},
		},
	}}
	server := newTestServer(source)
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp progressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 5, resp.Total)
	require.Equal(t, 4, resp.Processed)
	require.Equal(t, 1, resp.Remaining)
	require.Equal(t, scraper.DomainStats{Success: 2, Failed: 1, Skipped: 1}, resp.ByDomain["news.example"])
}

func TestServer_Progress_NoSource(t *testing.T) {
	t.Parallel()

	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "no run attached")
}

func TestServer_Metrics_ServesRegistry(t *testing.T) {
	metrics.Init()

	server := newTestServer(&fakeSource{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "newsharvest_checkpoint_flushes_total")
}

func TestRecoverMiddleware_Recovers(t *testing.T) {
	t.Parallel()

	handler := recoverMiddleware(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}
