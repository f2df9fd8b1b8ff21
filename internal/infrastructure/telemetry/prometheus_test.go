package telemetry_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopforge/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	pm := telemetry.NewPrometheusMetrics("test")
	r := gin.New()
	r.Use(pm.Middleware())
	r.GET("/stores/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(pm.Handler()))

	for _, path := range []string{"/stores/a", "/stores/b", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",path="/stores/:id",status="200"} 2`)
	assert.Contains(t, body, `test_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestPrometheusMetrics_AuthAndRateLimit(t *testing.T) {
	pm := telemetry.NewPrometheusMetrics("")
	pm.RecordAuthFailure("expired")
	pm.RecordAuthFailure("expired")
	pm.RecordRateLimited()

	expected := `
# HELP shopforge_auth_failures_total Rejected authentication attempts by reason
# TYPE shopforge_auth_failures_total counter
shopforge_auth_failures_total{reason="expired"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(pm.Registry(), strings.NewReader(expected), "shopforge_auth_failures_total"))

	count, err := testutil.GatherAndCount(pm.Registry(), "shopforge_http_rate_limited_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var nilMetrics *telemetry.PrometheusMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordAuthFailure("x")
		nilMetrics.RecordRateLimited()
	})
}

func TestPrometheusMetrics_QueueGauges(t *testing.T) {
	pm := telemetry.NewPrometheusMetrics("q")
	pm.RegisterQueueGauges("q", func() (int64, int64, int64, error) { return 4, 2, 1, nil })

	expected := `
# HELP q_queue_ready_jobs Jobs waiting to run
# TYPE q_queue_ready_jobs gauge
q_queue_ready_jobs 4
# HELP q_queue_dead_jobs Archived jobs that used every attempt
# TYPE q_queue_dead_jobs gauge
q_queue_dead_jobs 1
`
	assert.NoError(t, testutil.GatherAndCompare(pm.Registry(), strings.NewReader(expected),
		"q_queue_ready_jobs", "q_queue_dead_jobs"))

	failing := telemetry.NewPrometheusMetrics("f")
	failing.RegisterQueueGauges("f", func() (int64, int64, int64, error) { return 0, 0, 0, errors.New("redis down") })
	expected = `
# HELP f_queue_delayed_jobs Jobs waiting for a retry
# TYPE f_queue_delayed_jobs gauge
f_queue_delayed_jobs -1
`
	assert.NoError(t, testutil.GatherAndCompare(failing.Registry(), strings.NewReader(expected), "f_queue_delayed_jobs"))
}
