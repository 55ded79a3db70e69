package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for guided interviews.
type Metrics struct {
	// Sessions opened, by whether the seed already satisfied the stop rules
	SessionsStarted *prometheus.CounterVec

	// Answered turns by axis
	Turns *prometheus.CounterVec

	// Sessions stopped, by reason
	Stops *prometheus.CounterVec

	// Global completeness at fold time
	CompletenessAtFold prometheus.Histogram

	// Session store failures by operation
	StoreErrors *prometheus.CounterVec
}

// New registers the interview metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the interview metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_interview_sessions_started_total",
			Help: "Interview sessions opened",
		}, []string{"seeded_complete"}), // "true" when the seed alone reached min_completeness

		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_interview_turns_total",
			Help: "Answered interview turns by axis",
		}, []string{"axis"}),

		Stops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_interview_stops_total",
			Help: "Interview sessions stopped, by reason",
		}, []string{"reason"}),

		CompletenessAtFold: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "axioma_interview_completeness_at_fold",
			Help:    "Global completeness of sessions when folded",
			Buckets: []float64{0, 0.17, 0.34, 0.5, 0.67, 0.7, 0.84, 1},
		}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axioma_interview_store_errors_total",
			Help: "Session store failures by operation",
		}, []string{"op"}),
	}
}

// IncrementStarted records a new session.
func (m *Metrics) IncrementStarted(seededComplete bool) {
	if m == nil {
		return
	}
	label := "false"
	if seededComplete {
		label = "true"
	}
	m.SessionsStarted.WithLabelValues(label).Inc()
}

// IncrementTurn records one answered turn.
func (m *Metrics) IncrementTurn(axis string) {
	if m != nil {
		m.Turns.WithLabelValues(axis).Inc()
	}
}

// IncrementStop records a session stop.
func (m *Metrics) IncrementStop(reason string) {
	if m != nil {
		m.Stops.WithLabelValues(reason).Inc()
	}
}

// ObserveCompleteness records global completeness at fold time.
func (m *Metrics) ObserveCompleteness(v float64) {
	if m != nil {
		m.CompletenessAtFold.Observe(v)
	}
}

// IncrementStoreError records a store failure.
func (m *Metrics) IncrementStoreError(op string) {
	if m != nil {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
}
