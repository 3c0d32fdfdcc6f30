// Package metrics exposes the Prometheus collectors for the chart service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration   *prometheus.HistogramVec // labels: method, route
	ComputeDur     prometheus.Histogram
	ComputeBars    prometheus.Histogram
	CacheResults   *prometheus.CounterVec // labels: namespace, result
	BreakerState   *prometheus.GaugeVec   // labels: name; 0=closed, 1=half-open, 2=open
	IngestedBars   prometheus.Counter
	IngestFailures prometheus.Counter
}

// New registers and returns all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chart_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_indicator_compute_duration_seconds",
			Help:    "Indicator pipeline latency per chart",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ComputeBars: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_indicator_series_bars",
			Help:    "Bars per computed chart",
			Buckets: []float64{20, 63, 126, 252, 1000, 5000},
		}),
		CacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_cache_results_total",
			Help: "Series cache lookups by result",
		}, []string{"namespace", "result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chart_loader_breaker_state",
			Help: "Loader circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		IngestedBars: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_ingested_bars_total",
			Help: "Bars written by the ingest job",
		}),
		IngestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_ingest_failures_total",
			Help: "Symbols the ingest job failed to refresh",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.ComputeDur,
		m.ComputeBars,
		m.CacheResults,
		m.BreakerState,
		m.IngestedBars,
		m.IngestFailures,
	)
	return m
}

// ObserveCompute records one indicator pipeline run.
func (m *Metrics) ObserveCompute(bars int, d time.Duration) {
	m.ComputeDur.Observe(d.Seconds())
	m.ComputeBars.Observe(float64(bars))
}

// RecordCache records a cache hit or miss.
func (m *Metrics) RecordCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheResults.WithLabelValues(namespace, result).Inc()
}

// RecordBreakerState records a breaker transition.
func (m *Metrics) RecordBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

// RecordIngest records the outcome of one ingest run.
func (m *Metrics) RecordIngest(bars, failed int) {
	m.IngestedBars.Add(float64(bars))
	m.IngestFailures.Add(float64(failed))
}

// Middleware counts and times every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
