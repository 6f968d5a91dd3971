package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamErrors *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	fallbackSteps  *prometheus.CounterVec
	severities     *prometheus.CounterVec
	evaluations    *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_upstream_errors_total",
				Help: "Upstream call failures by provider and operation",
			},
			[]string{"provider", "op"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
			},
			[]string{"operation"},
		),
		fallbackSteps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_fiscal_fallback_hits_total",
				Help: "Fallback step that satisfied a fiscal chain",
			},
			[]string{"chain", "step"},
		),
		severities: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_signal_severity_total",
				Help: "Classified severities by metric",
			},
			[]string{"metric", "severity"},
		),
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_evaluations_total",
				Help: "Evaluations by outcome",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) RecordUpstreamError(provider, op string) {
	r.upstreamErrors.WithLabelValues(provider, op).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordFallbackStep counts which step of a fallback chain produced data.
// step is the schema name ("standard/CFS", "legacy", "none"), not the year.
func (r *Recorder) RecordFallbackStep(chain, step string) {
	r.fallbackSteps.WithLabelValues(chain, step).Inc()
}

func (r *Recorder) RecordSeverity(metric, severity string) {
	r.severities.WithLabelValues(metric, severity).Inc()
}

func (r *Recorder) RecordEvaluation(result string) {
	r.evaluations.WithLabelValues(result).Inc()
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordUpstreamError(string, string) {}
func (Noop) RecordLatency(string, float64)      {}
func (Noop) RecordFallbackStep(string, string)  {}
func (Noop) RecordSeverity(string, string)      {}
func (Noop) RecordEvaluation(string)            {}
