package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"caseseal/internal/audit/outbox"
	"caseseal/internal/audit/pseudonym"
	"caseseal/internal/platform/device"
	"caseseal/internal/platform/metrics"
	"caseseal/internal/platform/middleware"
)

var tracer = otel.Tracer("caseseal/audit")

// Sink appends audit events, deriving the pseudonymized projection exactly
// once at write time. It is append-only; reads go through ReadForAuditor,
// which never exposes real identifiers.
type Sink struct {
	store   Store
	pseudo  *pseudonym.Pseudonymizer
	outbox  outbox.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSink creates an audit sink. The outbox may be nil when Kafka mirroring
// is disabled; metrics may be nil in tests.
func NewSink(store Store, pseudo *pseudonym.Pseudonymizer, ob outbox.Store, m *metrics.Metrics, logger *slog.Logger) *Sink {
	return &Sink{
		store:   store,
		pseudo:  pseudo,
		outbox:  ob,
		metrics: m,
		logger:  logger,
	}
}

// Append derives the privacy projections from the entry's real fields and
// persists the event. Client IP, request ID and device summary are taken
// from the request context set by the metadata middleware.
//
// The write is synchronous: callers must not report success to their own
// caller before Append returns, so the trail is never ahead of real state.
func (s *Sink) Append(ctx context.Context, entry Entry) error {
	ctx, span := tracer.Start(ctx, "audit.append")
	defer span.End()
	span.SetAttributes(attribute.String("audit.action", string(entry.Action)))

	event := &Event{
		ID:        uuid.New(),
		Timestamp: time.Now(),

		Actor:  entry.Actor,
		Target: entry.Target,

		ActorPseudo:     s.pseudo.Pseudonymize(entry.Actor, pseudonym.DomainActor),
		TargetPseudo:    s.pseudo.Pseudonymize(entry.Target, pseudonym.DomainTarget),
		IPMasked:        s.pseudo.MaskIP(middleware.GetClientIP(ctx)),
		DetailsRedacted: s.pseudo.Redact(entry.Details),

		Role:      entry.Role,
		Action:    entry.Action,
		Success:   entry.Success,
		RequestID: middleware.GetRequestID(ctx),
		Device:    device.Summary(middleware.GetUserAgent(ctx)),
	}

	if err := s.store.Append(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.AuditAppendFailures.Inc()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.AuditEventsAppended.Inc()
	}

	s.enqueueMirror(ctx, event)
	return nil
}

// enqueueMirror records the auditor projection in the outbox for Kafka
// publication. Only the pseudonymized projection leaves the audit store;
// the stream fans out to external consumers that must never see real IDs.
// Outbox failures are logged and swallowed: the primary append already
// succeeded and mirroring is best-effort.
func (s *Sink) enqueueMirror(ctx context.Context, event *Event) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(event.Auditor())
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal audit mirror payload", "error", err)
		return
	}

	entry := outbox.NewEntry("audit", event.ID.String(), string(event.Action), payload)
	if err := s.outbox.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "enqueue audit mirror",
			"error", err,
			"event_id", event.ID,
		)
	}
}

// ReadForAuditor returns only the pseudonymized/redacted projection.
// Real fields are never returned through this interface.
func (s *Sink) ReadForAuditor(ctx context.Context, filters Filters) ([]AuditorEvent, error) {
	events, err := s.store.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	projected := make([]AuditorEvent, 0, len(events))
	for _, event := range events {
		projected = append(projected, event.Auditor())
	}
	return projected, nil
}

// Stats returns aggregate counts for the auditor dashboard.
func (s *Sink) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}
