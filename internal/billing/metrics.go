package billing

import "github.com/prometheus/client_golang/prometheus"

// Outcome is the result label recorded for every webhook delivery.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeRejected   Outcome = "rejected"
	OutcomeFailed     Outcome = "failed"
	OutcomeLookupMiss Outcome = "lookup_miss"
)

type Metrics struct {
	events     *prometheus.CounterVec
	lookupMiss prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitcoach_webhook_events_total",
				Help: "Stripe webhook deliveries by event type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		lookupMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitcoach_webhook_lookup_miss_total",
			Help: "Subscription events whose Stripe customer had no linked user.",
		}),
	}
	reg.MustRegister(m.events, m.lookupMiss)
	return m
}

// ObserveEvent counts one delivery. A nil receiver is a no-op.
func (m *Metrics) ObserveEvent(eventType string, outcome Outcome) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.events.WithLabelValues(eventType, string(outcome)).Inc()
}

func (m *Metrics) observeLookupMiss() {
	if m == nil {
		return
	}
	m.lookupMiss.Inc()
}

// EventsCounter returns the series for one event type and outcome.
func (m *Metrics) EventsCounter(eventType string, outcome Outcome) prometheus.Counter {
	return m.events.WithLabelValues(eventType, string(outcome))
}
