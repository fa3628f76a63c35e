package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ferryview"

// Metrics holds the Prometheus counters, histograms, and gauges for the view engine.
type Metrics struct {
	// Weather metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,error,invalid}
	WeatherCache    *prometheus.CounterVec // labels: result={hit,miss}
	WeatherEnabled  prometheus.Gauge

	// Upstream API latency.
	APIDuration *prometheus.HistogramVec // labels: api={openweather,ferry}

	DisruptionRequests *prometheus.CounterVec // labels: outcome={success,error}

	// View-model metrics.
	Refreshes        *prometheus.CounterVec // labels: result={started,skipped}
	StaleCompletions prometheus.Counter
	ViewRebuilds     *prometheus.CounterVec // labels: view={service,timetable}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Weather fetches by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_enabled",
			Help:      "1 when the OpenWeatherMap client is configured, 0 otherwise.",
		}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"api"}),
		DisruptionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disruption_requests_total",
			Help:      "Disruption fetches by outcome.",
		}, []string{"outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Service refresh requests, started or skipped because one was in flight.",
		}, []string{"result"}),
		StaleCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_completions_total",
			Help:      "Weather completions discarded because a newer fetch superseded them.",
		}),
		ViewRebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_rebuilds_total",
			Help:      "Section tree rebuilds by view.",
		}, []string{"view"}),
	}

	prometheus.MustRegister(
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherEnabled,
		m.APIDuration,
		m.DisruptionRequests,
		m.Refreshes,
		m.StaleCompletions,
		m.ViewRebuilds,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		WeatherRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "weather_cache_total"}, []string{"result"}),
		WeatherEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "weather_enabled"}),
		APIDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "api_duration_seconds"}, []string{"api"}),
		DisruptionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "disruption_requests_total"}, []string{"outcome"}),
		Refreshes:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "refreshes_total"}, []string{"result"}),
		StaleCompletions:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "stale_completions_total"}),
		ViewRebuilds:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "view_rebuilds_total"}, []string{"view"}),
	}
}
