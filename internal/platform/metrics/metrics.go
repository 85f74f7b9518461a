package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	OpeningRequestsCreated prometheus.Counter
	ApprovalsSubmitted     *prometheus.CounterVec
	QuorumReached          prometheus.Counter
	ViewTokensIssued       prometheus.Counter
	DisclosuresServed      prometheus.Counter
	DisclosuresDenied      *prometheus.CounterVec
	AuditAppendFailures    prometheus.Counter
	AuditEventsAppended    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		OpeningRequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_opening_requests_created_total",
			Help: "Total number of opening requests created",
		}),
		ApprovalsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseseal_approvals_submitted_total",
			Help: "Total number of custodian votes submitted, by decision",
		}, []string{"decision"}),
		QuorumReached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_quorum_reached_total",
			Help: "Total number of opening requests that reached their approval quorum",
		}),
		ViewTokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_view_tokens_issued_total",
			Help: "Total number of one-time view tokens issued",
		}),
		DisclosuresServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_disclosures_served_total",
			Help: "Total number of successful one-time disclosures",
		}),
		DisclosuresDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseseal_disclosures_denied_total",
			Help: "Total number of denied disclosure attempts, by reason",
		}, []string{"reason"}),
		AuditAppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_audit_append_failures_total",
			Help: "Total number of audit events that failed to persist",
		}),
		AuditEventsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caseseal_audit_events_appended_total",
			Help: "Total number of audit events persisted",
		}),
	}
}
