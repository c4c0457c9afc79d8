package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, so tests can pass nil.
type Metrics struct {
	Turns              prometheus.Counter
	TurnDuration       prometheus.Histogram
	Registrations      *prometheus.CounterVec
	Verifications      *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SequenceExhausted  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Turns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ebirth_ussd_turns_total",
			Help: "Total number of USSD turns handled",
		}),
		TurnDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ebirth_ussd_turn_duration_seconds",
			Help:    "Wall time spent handling one USSD turn",
			Buckets: prometheus.DefBuckets,
		}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ebirth_registrations_total",
			Help: "Completed birth registrations by flow",
		}, []string{"flow"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ebirth_verifications_total",
			Help: "UBRN verification attempts by result",
		}, []string{"result"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ebirth_validation_failures_total",
			Help: "Field validation failures by error kind",
		}, []string{"kind"}),
		SequenceExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ebirth_sequence_exhausted_total",
			Help: "Sequence allocations refused because a district's daily range ran out",
		}),
	}
}

func (m *Metrics) IncTurn() {
	if m == nil {
		return
	}
	m.Turns.Inc()
}

func (m *Metrics) ObserveTurnDuration(seconds float64) {
	if m == nil {
		return
	}
	m.TurnDuration.Observe(seconds)
}

func (m *Metrics) IncRegistration(flow string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(flow).Inc()
}

func (m *Metrics) IncVerification(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) IncValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncSequenceExhausted() {
	if m == nil {
		return
	}
	m.SequenceExhausted.Inc()
}
