package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_viewer"

// Metrics holds the Prometheus counters, histograms, and gauges for the viewer.
type Metrics struct {
	Queries          *prometheus.CounterVec // labels: outcome={success,empty,invalid_range,upstream_error,malformed}
	RecordsExtracted prometheus.Counter
	Exports          *prometheus.CounterVec // labels: format={csv,xlsx,geojson}

	// Upstream event API metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error,status}
	UpstreamDuration prometheus.Histogram
	UpstreamCache    *prometheus.CounterVec // labels: result={hit,miss,expired,bypass}

	// Record publisher metrics.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all viewer metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Queries,
		m.RecordsExtracted,
		m.Exports,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.UpstreamCache,
		m.RecordsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered with any
// registry, for one-shot tools that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Date-range queries by outcome.",
		}, []string{"outcome"}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Total records flattened from upstream features.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export artifacts built by format.",
		}, []string{"format"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "USGS event API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "USGS event API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		UpstreamCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_cache_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Total records written to the record topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed record topic writes.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when record publishing is enabled, 0 otherwise.",
		}),
	}
}
