package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the discernment module.
type Metrics struct {
	// Decision outcomes by state and dominant theme
	DecisionOutcome *prometheus.CounterVec

	// Rejected inputs by offending field
	InvalidInput *prometheus.CounterVec

	// Pure evaluation latency (normalize through classify)
	EvaluateLatency prometheus.Histogram

	// Narrator round trip latency, successful calls only
	NarrationLatency prometheus.Histogram

	// Narration failures by cause
	NarrationFailure *prometheus.CounterVec

	// Engine config reloads by result
	EngineReload *prometheus.CounterVec
}

// New registers the discernment metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the discernment metrics on reg. Tests pass a
// fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_discernment_decisions_total",
			Help: "Total decisions by state and dominant theme",
		}, []string{"state", "theme"}),

		InvalidInput: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_discernment_invalid_input_total",
			Help: "Evaluations rejected during normalization, by field",
		}, []string{"field"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "axioma_discernment_evaluate_duration_seconds",
			Help:    "Duration of a single evaluation excluding narration",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),

		NarrationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "axioma_discernment_narration_duration_seconds",
			Help:    "Duration of narrator calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		NarrationFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_discernment_narration_failures_total",
			Help: "Narration attempts that produced no text, by cause",
		}, []string{"cause"}), // cause: "error", "circuit_open", "timeout"

		EngineReload: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_discernment_engine_reloads_total",
			Help: "Engine configuration reloads by result",
		}, []string{"result"}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(state, theme string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(state, theme).Inc()
	}
}

// IncrementInvalidInput records a rejected evaluation.
func (m *Metrics) IncrementInvalidInput(field string) {
	if m != nil {
		m.InvalidInput.WithLabelValues(field).Inc()
	}
}

// ObserveEvaluateLatency records the pure evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveNarrationLatency records a successful narrator call.
func (m *Metrics) ObserveNarrationLatency(d time.Duration) {
	if m != nil {
		m.NarrationLatency.Observe(d.Seconds())
	}
}

// IncrementNarrationFailure records a narration that produced no text.
func (m *Metrics) IncrementNarrationFailure(cause string) {
	if m != nil {
		m.NarrationFailure.WithLabelValues(cause).Inc()
	}
}

// IncrementEngineReload records a reload attempt.
func (m *Metrics) IncrementEngineReload(result string) {
	if m != nil {
		m.EngineReload.WithLabelValues(result).Inc()
	}
}
