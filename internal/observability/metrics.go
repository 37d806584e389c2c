package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bite_forecast"

// Metrics holds the Prometheus collectors for provider calls and forecasts.
type Metrics struct {
	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider, outcome={ok,status,error}
	UpstreamDuration *prometheus.HistogramVec // labels: provider

	// Fusion metrics.
	FusionOutcomes *prometheus.CounterVec // labels: stage={primary,fallback,default}
	MarineOverlays *prometheus.CounterVec // labels: outcome={merged,empty,error}

	// Forecast metrics.
	ForecastsGenerated prometheus.Counter
	BiteScores         prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		FusionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_outcomes_total",
			Help:      "Fused weather results by the stage that produced them.",
		}, []string{"stage"}),
		MarineOverlays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marine_overlays_total",
			Help:      "Marine station lookups by outcome.",
		}, []string{"outcome"}),
		ForecastsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_generated_total",
			Help:      "Total multi-day forecasts generated.",
		}),
		BiteScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bite_score",
			Help:      "Distribution of daily bite scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.UpstreamRequests,
			m.UpstreamDuration,
			m.FusionOutcomes,
			m.MarineOverlays,
			m.ForecastsGenerated,
			m.BiteScores,
		)
	}
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// ObserveUpstream records one provider call
func (m *Metrics) ObserveUpstream(provider, outcome string, elapsed time.Duration) {
	m.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveFusion records which stage produced a fused result
func (m *Metrics) ObserveFusion(stage string) {
	m.FusionOutcomes.WithLabelValues(stage).Inc()
}

// ObserveMarine records a marine overlay outcome
func (m *Metrics) ObserveMarine(outcome string) {
	m.MarineOverlays.WithLabelValues(outcome).Inc()
}

// ObserveForecast records a generated forecast and its daily scores
func (m *Metrics) ObserveForecast(scores ...float64) {
	m.ForecastsGenerated.Inc()
	for _, s := range scores {
		m.BiteScores.Observe(s)
	}
}
