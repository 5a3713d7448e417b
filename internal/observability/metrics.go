package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard service.
type Metrics struct {
	// View metrics.
	ViewRequests    *prometheus.CounterVec   // labels: view={map,series}, outcome={ok,empty}
	ViewRows        *prometheus.HistogramVec // labels: view
	ViewDuration    *prometheus.HistogramVec // labels: view
	InvalidRequests *prometheus.CounterVec   // labels: view

	// Dataset metrics.
	DatasetRows    *prometheus.GaugeVec // labels: table={observations,coordinates}
	DatasetDates   prometheus.Gauge
	DatasetLoaded  prometheus.Gauge
	UnmatchedAreas prometheus.Gauge

	// Interaction log metrics.
	InteractionsSent prometheus.Counter
	InteractionFails prometheus.Counter

	// Mapbox metrics.
	MapboxRequests *prometheus.CounterVec // labels: method={tokens,forward}, outcome={success,error,empty}
	MapboxCache    *prometheus.CounterVec // labels: result={hit,miss}
	MapboxDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ViewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "view_requests_total",
			Help:      "Answered view requests by view and outcome.",
		}, []string{"view", "outcome"}),
		ViewRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokyo_dashboard",
			Name:      "view_rows",
			Help:      "Rows returned per view request.",
			Buckets:   []float64{0, 1, 5, 10, 23, 50, 100, 500, 1000, 5000},
		}, []string{"view"}),
		ViewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokyo_dashboard",
			Name:      "view_duration_seconds",
			Help:      "Time spent filtering and reshaping for a view.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"view"}),
		InvalidRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "invalid_requests_total",
			Help:      "View requests rejected for malformed parameters.",
		}, []string{"view"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tokyo_dashboard",
			Name:      "dataset_rows",
			Help:      "Rows per loaded reference table.",
		}, []string{"table"}),
		DatasetDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokyo_dashboard",
			Name:      "dataset_date_columns",
			Help:      "Date columns in the observation table.",
		}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokyo_dashboard",
			Name:      "dataset_loaded",
			Help:      "1 once the dataset is attached, 0 otherwise.",
		}),
		UnmatchedAreas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokyo_dashboard",
			Name:      "unmatched_areas",
			Help:      "Areas present in only one of the two reference tables.",
		}),
		InteractionsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "interactions_published_total",
			Help:      "Interactions handed to the interaction log.",
		}),
		InteractionFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "interaction_publish_errors_total",
			Help:      "Interactions the interaction log failed to accept.",
		}),
		MapboxRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "mapbox_requests_total",
			Help:      "Mapbox API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		MapboxCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokyo_dashboard",
			Name:      "mapbox_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		MapboxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokyo_dashboard",
			Name:      "mapbox_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ViewRequests,
		m.ViewRows,
		m.ViewDuration,
		m.InvalidRequests,
		m.DatasetRows,
		m.DatasetDates,
		m.DatasetLoaded,
		m.UnmatchedAreas,
		m.InteractionsSent,
		m.InteractionFails,
		m.MapboxRequests,
		m.MapboxCache,
		m.MapboxDuration,
	}
}
