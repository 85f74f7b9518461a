// Package opening implements the M-of-N quorum approval engine for sealed
// case disclosure. A request starts PENDING, collects one vote per custodian,
// and transitions to APPROVED_M_REACHED the moment the approve count reaches
// the request's threshold. The transition is one-way and later votes of
// either decision never move it again.
package opening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"caseseal/internal/audit"
	"caseseal/internal/cases"
	"caseseal/internal/identity"
	"caseseal/internal/platform/metrics"
	dErrors "caseseal/pkg/domain-errors"
	"caseseal/pkg/sentinel"
)

var tracer = otel.Tracer("caseseal/opening")

const (
	minMRequired = 1
	maxMRequired = 5
	minReasonLen = 10
	maxReasonLen = 2000

	listLimit = 50
)

// CaseLookup resolves case references. The engine only needs existence
// checks; it never mutates case state.
type CaseLookup interface {
	GetCase(ctx context.Context, id uuid.UUID) (*cases.Case, error)
}

// Auditor records audit entries for engine operations.
type Auditor interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service is the quorum approval engine.
type Service struct {
	store   Store
	cases   CaseLookup
	sink    Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService constructs the engine with its dependencies. Metrics may be nil
// in tests.
func NewService(store Store, caseLookup CaseLookup, sink Auditor, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		cases:   caseLookup,
		sink:    sink,
		metrics: m,
		logger:  logger,
	}
}

// CreateRequestInput carries the fields for opening a new request.
type CreateRequestInput struct {
	CaseID    uuid.UUID
	Reason    string
	MRequired int
}

// CreateRequest validates the threshold and justification, checks that the
// referenced case exists, and persists a PENDING request.
func (s *Service) CreateRequest(ctx context.Context, actor identity.Principal, in CreateRequestInput) (*Request, error) {
	ctx, span := tracer.Start(ctx, "opening.create")
	defer span.End()

	if in.MRequired < minMRequired || in.MRequired > maxMRequired {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("m_required must be between %d and %d", minMRequired, maxMRequired))
	}
	if len(in.Reason) < minReasonLen || len(in.Reason) > maxReasonLen {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("reason must be between %d and %d characters", minReasonLen, maxReasonLen))
	}

	if _, err := s.cases.GetCase(ctx, in.CaseID); err != nil {
		return nil, err
	}

	req := &Request{
		ID:        uuid.New(),
		CaseID:    in.CaseID,
		Reason:    in.Reason,
		MRequired: in.MRequired,
		Status:    StatusPending,
		CreatedBy: actor.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create opening request")
	}
	span.SetAttributes(attribute.String("opening.id", req.ID.String()))

	if s.metrics != nil {
		s.metrics.OpeningRequestsCreated.Inc()
	}
	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionOpeningCreate,
		Target:  "opening:" + req.ID.String(),
		Success: true,
		Details: fmt.Sprintf("case_id=%s m=%d", req.CaseID, req.MRequired),
	})

	s.logger.InfoContext(ctx, "opening request created",
		"request_id", req.ID,
		"m_required", req.MRequired,
		"created_by", actor.Username,
	)
	return req, nil
}

// SubmitApproval records a custodian's vote and recomputes the quorum.
//
// Each custodian votes exactly once per request, whatever the decision; a
// second attempt fails with Conflict. REJECT votes are recorded for the
// trail but never block the quorum or reduce the approve count.
func (s *Service) SubmitApproval(ctx context.Context, actor identity.Principal, requestID uuid.UUID, decision Decision) (*VoteResult, error) {
	ctx, span := tracer.Start(ctx, "opening.vote")
	defer span.End()
	span.SetAttributes(
		attribute.String("opening.id", requestID.String()),
		attribute.String("opening.decision", string(decision)),
	)

	if !decision.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "decision must be APPROVE or REJECT")
	}

	result, err := s.store.AddApprovalAndRecount(ctx, &Approval{
		ID:          uuid.New(),
		RequestID:   requestID,
		CustodianID: actor.ID,
		Decision:    decision,
		CreatedAt:   time.Now(),
	})
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "opening request not found")
	case errors.Is(err, sentinel.ErrConflict):
		s.audit(ctx, audit.Entry{
			Actor:   actor.Username,
			Role:    string(actor.Role),
			Action:  audit.ActionOpeningApproval,
			Target:  "opening:" + requestID.String(),
			Success: false,
			Details: "duplicate vote",
		})
		return nil, dErrors.New(dErrors.CodeConflict, "custodian already voted on this request")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "record vote")
	}

	if s.metrics != nil {
		s.metrics.ApprovalsSubmitted.WithLabelValues(string(decision)).Inc()
		if result.Transitioned {
			s.metrics.QuorumReached.Inc()
		}
	}
	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionOpeningApproval,
		Target:  "opening:" + requestID.String(),
		Success: true,
		Details: fmt.Sprintf("decision=%s approvals=%d", decision, result.Approvals),
	})

	if result.Transitioned {
		s.logger.InfoContext(ctx, "approval quorum reached",
			"request_id", requestID,
			"approvals", result.Approvals,
			"m_required", result.MRequired,
		)
	}
	return result, nil
}

// ListPending returns pending requests for the custodian work queue.
func (s *Service) ListPending(ctx context.Context) ([]*RequestSummary, error) {
	return s.store.ListSummaries(ctx, StatusPending, listLimit)
}

// ListApprovedUnviewed returns requests whose quorum is satisfied but whose
// content has not been disclosed yet. Auditor-only.
func (s *Service) ListApprovedUnviewed(ctx context.Context) ([]*RequestSummary, error) {
	return s.store.ListSummaries(ctx, StatusApprovedMReached, listLimit)
}

func (s *Service) audit(ctx context.Context, entry audit.Entry) {
	if err := s.sink.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "append audit entry",
			"action", entry.Action,
			"error", err,
		)
	}
}
