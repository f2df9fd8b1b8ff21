package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueueStatsFunc reports current queue depth as ready, delayed and dead counts
type QueueStatsFunc func() (ready, delayed, dead int64, err error)

// PrometheusMetrics owns a private registry exposed on /metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
	authFailures        *prometheus.CounterVec
	rateLimited         prometheus.Counter
}

// NewPrometheusMetrics registers HTTP metrics under prefix plus Go runtime collectors
func NewPrometheusMetrics(prefix string) *PrometheusMetrics {
	if prefix == "" {
		prefix = "shopforge"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: HTTPDurationBuckets,
		}, []string{"method", "path", "status"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_auth_failures_total",
			Help: "Rejected authentication attempts by reason",
		}, []string{"reason"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// RegisterQueueGauges exposes queue depth, read at scrape time
func (m *PrometheusMetrics) RegisterQueueGauges(prefix string, stats QueueStatsFunc) {
	if prefix == "" {
		prefix = "shopforge"
	}
	read := func(pick func(r, d, x int64) int64) func() float64 {
		return func() float64 {
			r, d, x, err := stats()
			if err != nil {
				return -1
			}
			return float64(pick(r, d, x))
		}
	}
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: prefix + "_queue_ready_jobs", Help: "Jobs waiting to run",
	}, read(func(r, _, _ int64) int64 { return r }))
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: prefix + "_queue_delayed_jobs", Help: "Jobs waiting for a retry",
	}, read(func(_, d, _ int64) int64 { return d }))
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: prefix + "_queue_dead_jobs", Help: "Archived jobs that used every attempt",
	}, read(func(_, _, x int64) int64 { return x }))
}

// Middleware records request count and latency. The path label is the
// route template so IDs do not explode cardinality.
func (m *PrometheusMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RecordAuthFailure counts a rejected token
func (m *PrometheusMetrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts a throttled request
func (m *PrometheusMetrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}
