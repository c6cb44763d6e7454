package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, which keeps services usable in tests without a registry.
type Metrics struct {
	// Access control
	AccessDecisions *prometheus.CounterVec

	// Sharing lifecycle
	ShareOperations     *prometheus.CounterVec
	InvitationEmails    *prometheus.CounterVec
	PartialClaimFailure prometheus.Counter

	// Scheduling
	ConflictChecks *prometheus.CounterVec
	ConflictsFound *prometheus.CounterVec

	// Outbox
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
}

// New creates the metric set and registers it with reg when reg is non-nil.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Authorization decisions by required level and outcome",
		}, []string{"required", "outcome"}),
		ShareOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_operations_total",
			Help:      "Share lifecycle operations by operation and result",
		}, []string{"operation", "result"}),
		InvitationEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_emails_total",
			Help:      "Invitation email attempts by status",
		}, []string{"status"}),
		PartialClaimFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_claim_failures_total",
			Help:      "Claims that left a share behind after compensation failed",
		}),
		ConflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_conflict_checks_total",
			Help:      "Appointment conflict checks by result",
		}, []string{"result"}),
		ConflictsFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_conflicts_found_total",
			Help:      "Conflicting appointments reported by party",
		}, []string{"type"}),
		OutboxEventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully published outbox events",
		}),
		OutboxEventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of outbox events that failed publishing",
		}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing one outbox batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AccessDecisions,
			m.ShareOperations,
			m.InvitationEmails,
			m.PartialClaimFailure,
			m.ConflictChecks,
			m.ConflictsFound,
			m.OutboxEventsProcessed,
			m.OutboxEventsFailed,
			m.OutboxProcessingLatency,
		)
	}

	return m
}

func (m *Metrics) AccessDecision(required, outcome string) {
	if m == nil {
		return
	}
	m.AccessDecisions.WithLabelValues(required, outcome).Inc()
}

func (m *Metrics) ShareOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ShareOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) InvitationEmail(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.InvitationEmails.WithLabelValues(status).Inc()
}

func (m *Metrics) PartialClaim() {
	if m == nil {
		return
	}
	m.PartialClaimFailure.Inc()
}

func (m *Metrics) ConflictCheck(doctorConflicts, patientConflicts int) {
	if m == nil {
		return
	}
	result := "clear"
	if doctorConflicts+patientConflicts > 0 {
		result = "conflict"
	}
	m.ConflictChecks.WithLabelValues(result).Inc()
	m.ConflictsFound.WithLabelValues("doctor").Add(float64(doctorConflicts))
	m.ConflictsFound.WithLabelValues("patient").Add(float64(patientConflicts))
}

func (m *Metrics) OutboxProcessed() {
	if m == nil {
		return
	}
	m.OutboxEventsProcessed.Inc()
}

func (m *Metrics) OutboxFailed() {
	if m == nil {
		return
	}
	m.OutboxEventsFailed.Inc()
}

// ObserveOutboxBatch returns a func that records the batch duration.
func (m *Metrics) ObserveOutboxBatch() func() {
	if m == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.OutboxProcessingLatency)
	return func() { timer.ObserveDuration() }
}
