package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_planner"

// Metrics holds the Prometheus collectors for weather lookups and scoring.
type Metrics struct {
	// Weather lookup metrics.
	CacheLookups     *prometheus.CounterVec   // labels: result={hit,miss}
	CacheEntries     prometheus.Gauge
	CachePurged      prometheus.Counter
	ProviderRequests *prometheus.CounterVec   // labels: call={geocode,forecast}, outcome={success,not_found,error}
	ProviderDuration *prometheus.HistogramVec // labels: call={geocode,forecast}

	// Scoring metrics.
	SuitabilityScores   *prometheus.HistogramVec // labels: label={Good,Okay,Poor}
	AlternativeSearches prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CacheLookups,
		m.CacheEntries,
		m.CachePurged,
		m.ProviderRequests,
		m.ProviderDuration,
		m.SuitabilityScores,
		m.AlternativeSearches,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_lookups_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_cache_entries",
			Help:      "Entries held by the weather cache after the last sweep.",
		}),
		CachePurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_purged_total",
			Help:      "Expired weather cache entries removed by sweeps.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_provider_requests_total",
			Help:      "Weather provider calls by kind and outcome.",
		}, []string{"call", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_provider_duration_seconds",
			Help:      "Weather provider call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"call"}),
		SuitabilityScores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suitability_score",
			Help:      "Distribution of computed suitability scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"label"}),
		AlternativeSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alternative_searches_total",
			Help:      "Alternative-date searches performed.",
		}),
	}
}
