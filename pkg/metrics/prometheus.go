// Package metrics provides Prometheus metrics for burnup runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the tool.
type Manager struct {
	namespace string
	buckets   []float64
	registry  prometheus.Registerer

	// Pipeline metrics
	actionsFetched prometheus.Counter
	rowsWritten    prometheus.Counter

	// Board API metrics
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "burnup",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)
	m.actionsFetched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "actions_fetched_total",
		Help:      "Board actions fetched from the activity stream.",
	})
	m.rowsWritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "report_rows_written_total",
		Help:      "Snapshot rows written to the report sink.",
	})
	m.apiRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "api_requests_total",
		Help:      "Board API requests by endpoint and response status.",
	}, []string{"endpoint", "status"})
	m.apiRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Board API request latency by endpoint.",
		Buckets:   m.buckets,
	}, []string{"endpoint"})

	return m
}

// Registry returns the registry backing the global manager, for exposure
// via promhttp.
func Registry() *prometheus.Registry {
	return customRegistry
}

// RecordActionsFetched adds n to the fetched-actions counter.
func RecordActionsFetched(n int) {
	if n > 0 {
		globalManager.actionsFetched.Add(float64(n))
	}
}

// RecordRowWritten increments the report row counter.
func RecordRowWritten() {
	globalManager.rowsWritten.Inc()
}

// RecordAPIRequest records one board API request outcome and its latency.
func RecordAPIRequest(endpoint, status string, seconds float64) {
	globalManager.apiRequests.WithLabelValues(endpoint, status).Inc()
	globalManager.apiRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}
