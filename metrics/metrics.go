// Package metrics provides Prometheus metrics export for the tool service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects service-level metrics in Prometheus format.
type Metrics struct {
	registry *prometheus.Registry

	searchLatency  prometheus.Histogram
	searchRequests *prometheus.CounterVec
	searchResults  prometheus.Histogram

	embeddingCalls *prometheus.CounterVec

	syncOps *prometheus.CounterVec
}

// Config configures the metrics collector.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for the search latency histogram (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}
}

// New creates a new metrics collector.
func New(cfg Config) *Metrics {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{registry: registry}

	m.searchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vectool",
		Subsystem: "search",
		Name:      "latency_seconds",
		Help:      "Search request latency in seconds",
		Buckets:   cfg.LatencyBuckets,
	})

	m.searchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectool",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	m.searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vectool",
		Subsystem: "search",
		Name:      "results",
		Help:      "Number of results returned per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	m.embeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectool",
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Total number of embedding provider calls",
		},
		[]string{"status"},
	)

	m.syncOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vectool",
			Subsystem: "sync",
			Name:      "operations_total",
			Help:      "Total number of vector index synchronization operations",
		},
		[]string{"operation", "status"},
	)

	registry.MustRegister(
		m.searchLatency,
		m.searchRequests,
		m.searchResults,
		m.embeddingCalls,
		m.syncOps,
	)

	return m
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch records one search request. A nil receiver is a no-op.
func (m *Metrics) ObserveSearch(seconds float64, resultCount int, err error) {
	if m == nil {
		return
	}
	m.searchLatency.Observe(seconds)
	m.searchResults.Observe(float64(resultCount))
	m.searchRequests.WithLabelValues(statusLabel(err)).Inc()
}

// ObserveEmbedding records one embedding provider call. A nil receiver is a no-op.
func (m *Metrics) ObserveEmbedding(err error) {
	if m == nil {
		return
	}
	m.embeddingCalls.WithLabelValues(statusLabel(err)).Inc()
}

// ObserveSync records one index synchronization operation. A nil receiver is a no-op.
func (m *Metrics) ObserveSync(operation string, err error) {
	if m == nil {
		return
	}
	m.syncOps.WithLabelValues(operation, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
