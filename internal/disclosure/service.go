// Package disclosure implements the one-time secure view gate. Once a
// request's quorum is satisfied, an auditor obtains a short-lived single-use
// token and spends it on exactly one read of the sealed content. The spend
// is a single conditional write, so concurrent consumers cannot both win.
package disclosure

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"caseseal/internal/audit"
	"caseseal/internal/cases"
	"caseseal/internal/identity"
	"caseseal/internal/opening"
	"caseseal/internal/platform/metrics"
	dErrors "caseseal/pkg/domain-errors"
	"caseseal/pkg/sentinel"
)

var tracer = otel.Tracer("caseseal/disclosure")

// Tokens carry 256 bits of randomness, hex-encoded to 64 characters.
const tokenBytes = 32

// CaseReader supplies the sealed content for payload assembly.
type CaseReader interface {
	GetCase(ctx context.Context, id uuid.UUID) (*cases.Case, error)
	ListSignedResolutions(ctx context.Context, caseID uuid.UUID) ([]*cases.Resolution, error)
}

// Auditor records audit entries for gate operations.
type Auditor interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service is the secure view gate.
type Service struct {
	store   opening.Store
	cases   CaseReader
	users   identity.Store
	sink    Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time
}

// Option configures the gate.
type Option func(*Service)

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the view gate. Metrics may be nil in tests.
func NewService(store opening.Store, caseReader CaseReader, users identity.Store, sink Auditor, m *metrics.Metrics, logger *slog.Logger, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		store:   store,
		cases:   caseReader,
		users:   users,
		sink:    sink,
		metrics: m,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueViewToken mints or re-returns the one-time view token for an approved
// request.
//
// Issuance is idempotent while an unexpired token exists: the same token
// comes back with its remaining TTL, so a retrying caller does not churn
// secrets. An expired token is silently replaced. The replacement is a
// compare-and-set on the token value the issuer read, so when two callers
// race for the first issue, one mints and the other loops around to return
// the minted token instead of overwriting it. The audit trail records only
// the expiry timestamp, never the token value.
func (s *Service) IssueViewToken(ctx context.Context, actor identity.Principal, requestID uuid.UUID) (*TokenGrant, error) {
	ctx, span := tracer.Start(ctx, "disclosure.issue")
	defer span.End()
	span.SetAttributes(attribute.String("opening.id", requestID.String()))

	for {
		req, err := s.store.GetRequest(ctx, requestID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "opening request not found")
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load opening request")
		}

		if req.ViewedAt != nil {
			return nil, dErrors.New(dErrors.CodeGone, "request already viewed")
		}
		if req.Status != opening.StatusApprovedMReached {
			return nil, dErrors.New(dErrors.CodeValidation, "request has not reached its approval quorum")
		}

		now := s.now()

		if req.ViewToken != "" && req.ViewTokenExpires != nil && now.Before(*req.ViewTokenExpires) {
			remaining := int(req.ViewTokenExpires.Sub(now).Seconds())
			s.auditIssue(ctx, actor, requestID, *req.ViewTokenExpires)
			return &TokenGrant{Token: req.ViewToken, ExpiresIn: remaining}, nil
		}

		token, err := newToken()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generate view token")
		}
		expires := now.Add(s.ttl)

		err = s.store.SetViewToken(ctx, requestID, req.ViewToken, token, expires)
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			// A concurrent issuer replaced the token between our read and
			// write. Re-read and hand back the winning token.
			continue
		case errors.Is(err, sentinel.ErrAlreadyViewed):
			return nil, dErrors.New(dErrors.CodeGone, "request already viewed")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "opening request not found")
		case err != nil:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store view token")
		}

		if s.metrics != nil {
			s.metrics.ViewTokensIssued.Inc()
		}
		s.auditIssue(ctx, actor, requestID, expires)

		s.logger.InfoContext(ctx, "view token issued",
			"request_id", requestID,
			"expires_at", expires,
		)
		return &TokenGrant{Token: token, ExpiresIn: int(s.ttl.Seconds())}, nil
	}
}

// ConsumeViewToken spends the token and returns the disclosure payload.
//
// The checks run in order: already viewed (Gone), token mismatch (Forbidden),
// token expired (Forbidden). Passing all three still does not guarantee
// success: the final conditional write re-checks that nobody consumed the
// request in the meantime, and the loser of that race observes Gone like any
// later caller. Every denial is audited with its reason code.
func (s *Service) ConsumeViewToken(ctx context.Context, actor identity.Principal, requestID uuid.UUID, presented string) (*Payload, error) {
	ctx, span := tracer.Start(ctx, "disclosure.consume")
	defer span.End()
	span.SetAttributes(attribute.String("opening.id", requestID.String()))

	req, err := s.store.GetRequest(ctx, requestID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "opening request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load opening request")
	}

	if req.ViewedAt != nil {
		return nil, s.deny(ctx, actor, requestID, ReasonAlreadyViewed)
	}
	if presented == "" || req.ViewToken == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(req.ViewToken)) != 1 {
		return nil, s.deny(ctx, actor, requestID, ReasonBadToken)
	}
	if req.ViewTokenExpires == nil || s.now().After(*req.ViewTokenExpires) {
		return nil, s.deny(ctx, actor, requestID, ReasonExpiredToken)
	}

	payload, err := s.assemblePayload(ctx, req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "assemble disclosure payload")
	}

	viewedAt := s.now()
	consumed, err := s.store.ConsumeIfUnviewed(ctx, requestID, actor.ID, viewedAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "consume view token")
	}
	if !consumed {
		// Lost the race against a concurrent consumer.
		return nil, s.deny(ctx, actor, requestID, ReasonAlreadyViewed)
	}
	payload.ViewedAt = viewedAt

	if s.metrics != nil {
		s.metrics.DisclosuresServed.Inc()
	}
	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionOpeningView,
		Target:  "opening:" + requestID.String(),
		Success: true,
		Details: fmt.Sprintf("resolutions=%d approvers=%d", len(payload.Resolutions), len(payload.ApprovedBy)),
	})

	s.logger.InfoContext(ctx, "sealed content disclosed",
		"request_id", requestID,
		"viewed_by", actor.Username,
	)
	return payload, nil
}

// assemblePayload gathers the case record, its signed resolutions and the
// approving custodians' usernames. The three lookups are independent reads.
func (s *Service) assemblePayload(ctx context.Context, req *opening.Request) (*Payload, error) {
	var (
		caseRecord  *cases.Case
		resolutions []*cases.Resolution
		approvals   []*opening.Approval
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		caseRecord, err = s.cases.GetCase(gctx, req.CaseID)
		return err
	})
	g.Go(func() error {
		var err error
		resolutions, err = s.cases.ListSignedResolutions(gctx, req.CaseID)
		return err
	})
	g.Go(func() error {
		var err error
		approvals, err = s.store.ListApprovals(gctx, req.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	payload := &Payload{
		RequestID: req.ID,
		Case: CaseRecord{
			ID:         caseRecord.ID,
			CaseNumber: caseRecord.CaseNumber,
			Title:      caseRecord.Title,
			Parties:    caseRecord.Parties,
			Status:     string(caseRecord.Status),
		},
		Resolutions: make([]ResolutionRecord, 0, len(resolutions)),
		ApprovedBy:  make([]string, 0, len(approvals)),
	}
	for _, r := range resolutions {
		payload.Resolutions = append(payload.Resolutions, ResolutionRecord{
			ID:        r.ID,
			Content:   r.Content,
			DocHash:   r.DocHash,
			Signature: r.Signature,
			SignedAt:  r.SignedAt,
		})
	}
	for _, approval := range approvals {
		if approval.Decision != opening.DecisionApprove {
			continue
		}
		user, err := s.users.FindByID(ctx, approval.CustodianID)
		if err != nil {
			payload.ApprovedBy = append(payload.ApprovedBy, approval.CustodianID.String())
			continue
		}
		payload.ApprovedBy = append(payload.ApprovedBy, user.Username)
	}
	return payload, nil
}

// deny audits a refused disclosure attempt and returns the matching error.
func (s *Service) deny(ctx context.Context, actor identity.Principal, requestID uuid.UUID, reason string) error {
	if s.metrics != nil {
		s.metrics.DisclosuresDenied.WithLabelValues(reason).Inc()
	}
	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionOpeningView,
		Target:  "opening:" + requestID.String(),
		Success: false,
		Details: "reason=" + reason,
	})

	switch reason {
	case ReasonAlreadyViewed:
		return dErrors.New(dErrors.CodeGone, "request already viewed")
	case ReasonExpiredToken:
		return dErrors.New(dErrors.CodeForbidden, "view token expired")
	default:
		return dErrors.New(dErrors.CodeForbidden, "invalid view token")
	}
}

func (s *Service) auditIssue(ctx context.Context, actor identity.Principal, requestID uuid.UUID, expires time.Time) {
	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionViewTokenIssue,
		Target:  "opening:" + requestID.String(),
		Success: true,
		Details: "expires=" + expires.UTC().Format(time.RFC3339),
	})
}

func (s *Service) audit(ctx context.Context, entry audit.Entry) {
	if err := s.sink.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "append audit entry",
			"action", entry.Action,
			"error", err,
		)
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
