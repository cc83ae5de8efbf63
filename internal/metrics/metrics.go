// Package metrics exposes Prometheus instrumentation for the aggregation
// cycles and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	cycleDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mercury_cycle_duration_seconds",
		Help:    "Duration of one background fetch+merge cycle.",
		Buckets: prometheus.DefBuckets,
	}, []string{"cache"})

	cycleErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mercury_cycle_errors_total",
		Help: "Cycles that completed with at least one source error.",
	}, []string{"cache"})

	fetchErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mercury_fetch_errors_total",
		Help: "Upstream fetch failures by feed.",
	}, []string{"feed"})

	marketCount = factory.NewGauge(prometheus.GaugeOpts{
		Name: "mercury_markets",
		Help: "Canonical markets in the latest snapshot.",
	})

	keywordCount = factory.NewGauge(prometheus.GaugeOpts{
		Name: "mercury_trending_keywords",
		Help: "Keywords in the latest trending snapshot.",
	})

	trackedKeywords = factory.NewGauge(prometheus.GaugeOpts{
		Name: "mercury_tracked_keywords",
		Help: "Keywords with live rolling history.",
	})

	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mercury_http_requests_total",
		Help: "HTTP requests by path pattern and status.",
	}, []string{"path", "status"})

	proxyCacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "mercury_proxy_cache_total",
		Help: "Proxy response cache lookups by outcome.",
	}, []string{"outcome"})
)

// ObserveCycle records one completed cycle for the named cache.
func ObserveCycle(cache string, d time.Duration, hadErrors bool) {
	cycleDuration.WithLabelValues(cache).Observe(d.Seconds())
	if hadErrors {
		cycleErrors.WithLabelValues(cache).Inc()
	}
}

// RecordFetchError counts one upstream failure for a feed.
func RecordFetchError(feed string) {
	fetchErrors.WithLabelValues(feed).Inc()
}

// SetMarketCount updates the snapshot size gauge.
func SetMarketCount(n int) {
	marketCount.Set(float64(n))
}

// SetKeywordCounts updates the trending gauges.
func SetKeywordCounts(published, tracked int) {
	keywordCount.Set(float64(published))
	trackedKeywords.Set(float64(tracked))
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(path, status string) {
	httpRequests.WithLabelValues(path, status).Inc()
}

// RecordProxyCache counts a proxy cache hit or miss.
func RecordProxyCache(outcome string) {
	proxyCacheHits.WithLabelValues(outcome).Inc()
}

// Handler serves the registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
