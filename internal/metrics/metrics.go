// Package metrics provides Prometheus instrumentation for the devbolt SDK.
//
// All metrics are registered in a custom [prometheus.Registry] (not the
// global default) so that embedding applications control exactly where and
// whether devbolt metrics are exposed.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors used by the devbolt client.
type Metrics struct {
	Registry *prometheus.Registry

	EvaluationsTotal    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	ReloadsTotal        prometheus.Counter
	ReloadFailuresTotal prometheus.Counter
	FlagsLoaded         prometheus.Gauge
}

// New creates and registers all devbolt metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devbolt_evaluations_total",
			Help: "Total number of flag evaluations.",
		}, []string{"flag", "enabled"}),

		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devbolt_evaluation_duration_seconds",
			Help:    "Flag evaluation latency.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),

		ReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devbolt_config_reloads_total",
			Help: "Total number of successful configuration loads.",
		}),

		ReloadFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devbolt_config_reload_failures_total",
			Help: "Total number of failed configuration reloads.",
		}),

		FlagsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devbolt_flags_loaded",
			Help: "Number of flags in the active configuration.",
		}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.ReloadsTotal,
		m.ReloadFailuresTotal,
		m.FlagsLoaded,
	)
	return m
}

// RecordEvaluation counts one evaluation outcome for a flag.
func (m *Metrics) RecordEvaluation(flag string, enabled bool, seconds float64) {
	outcome := "false"
	if enabled {
		outcome = "true"
	}
	m.EvaluationsTotal.WithLabelValues(flag, outcome).Inc()
	m.EvaluationDuration.Observe(seconds)
}

// RecordReload counts one configuration load and updates the flag gauge.
func (m *Metrics) RecordReload(flagCount int) {
	m.ReloadsTotal.Inc()
	m.FlagsLoaded.Set(float64(flagCount))
}

// Handler returns an HTTP handler serving this registry, for applications
// that want to mount devbolt metrics on their own mux.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
