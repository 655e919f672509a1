package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillgap"

// Metrics groups the engine's collectors. A nil *Metrics is valid and records
// nothing, so components never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	normalizations       *prometheus.CounterVec
	lookupFailures       *prometheus.CounterVec
	normalizeCacheHits   prometheus.Counter
	gapAnalysisDurations prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		normalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalizations_total",
			Help:      "Raw skills normalized, broken down by outcome.",
		}, []string{"outcome"}),
		lookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxonomy_lookup_failures_total",
			Help:      "Failed taxonomy store lookups, broken down by stage.",
		}, []string{"stage"}),
		normalizeCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_cache_hits_total",
			Help:      "Normalization results served from the cache.",
		}),
		gapAnalysisDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gap_analysis_duration_seconds",
			Help:      "Latency distribution of gap analyses.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05,
				0.1, 0.25, 0.5, 1, 2.5,
			},
		}),
	}
	reg.MustRegister(m.normalizations, m.lookupFailures, m.normalizeCacheHits, m.gapAnalysisDurations)
	return m
}

func (m *Metrics) ObserveNormalization(outcome string) {
	if m == nil {
		return
	}
	m.normalizations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLookupFailure(stage string) {
	if m == nil {
		return
	}
	m.lookupFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.normalizeCacheHits.Inc()
}

func (m *Metrics) ObserveGapAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.gapAnalysisDurations.Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
