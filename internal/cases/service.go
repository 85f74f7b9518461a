// Package cases implements the case registry: secretaries register cases,
// judges draft and sign resolutions. Signed resolutions are the sealed
// content that disclosure later reveals.
package cases

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"caseseal/internal/audit"
	"caseseal/internal/identity"
	dErrors "caseseal/pkg/domain-errors"
	"caseseal/pkg/sentinel"
)

var tracer = otel.Tracer("caseseal/cases")

const (
	minCaseNumberLen = 3
	maxCaseNumberLen = 50
	minTitleLen      = 3
	maxTitleLen      = 200
	minPartiesLen    = 3
	maxPartiesLen    = 2000
	minContentLen    = 10
	maxContentLen    = 20000

	listCasesLimit = 50
)

// Auditor records audit entries for case operations.
type Auditor interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Service implements case and resolution operations.
type Service struct {
	store  Store
	users  identity.Store
	sink   Auditor
	logger *slog.Logger
}

// NewService constructs the case service with its dependencies.
func NewService(store Store, users identity.Store, sink Auditor, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		sink:   sink,
		logger: logger,
	}
}

// CreateCaseInput carries validated fields for case registration.
type CreateCaseInput struct {
	CaseNumber          string
	Title               string
	Parties             string
	AssignJudgeUsername string
}

// CreateCase registers a new case. Case numbers are unique; registering a
// duplicate fails with a conflict.
func (s *Service) CreateCase(ctx context.Context, actor identity.Principal, in CreateCaseInput) (*Case, error) {
	ctx, span := tracer.Start(ctx, "cases.create")
	defer span.End()

	if err := validateLen("case_number", in.CaseNumber, minCaseNumberLen, maxCaseNumberLen); err != nil {
		return nil, err
	}
	if err := validateLen("title", in.Title, minTitleLen, maxTitleLen); err != nil {
		return nil, err
	}
	if err := validateLen("parties", in.Parties, minPartiesLen, maxPartiesLen); err != nil {
		return nil, err
	}

	var assignedJudge *uuid.UUID
	if in.AssignJudgeUsername != "" {
		judge, err := s.users.FindByUsername(ctx, in.AssignJudgeUsername)
		if err != nil || judge.Role != identity.RoleJudge {
			return nil, dErrors.New(dErrors.CodeValidation, "judge not found")
		}
		assignedJudge = &judge.ID
	}

	c := &Case{
		ID:            uuid.New(),
		CaseNumber:    in.CaseNumber,
		Title:         in.Title,
		Parties:       in.Parties,
		Status:        StatusCreated,
		CreatedBy:     actor.ID,
		AssignedJudge: assignedJudge,
		CreatedAt:     time.Now(),
	}

	if err := s.store.CreateCase(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "case number already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create case")
	}
	span.SetAttributes(attribute.String("case.id", c.ID.String()))

	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionCaseCreate,
		Target:  "case:" + c.ID.String(),
		Success: true,
		Details: fmt.Sprintf("case_number=%s", c.CaseNumber),
	})

	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID,
		"created_by", actor.Username,
	)
	return c, nil
}

// ListCases returns the most recently registered cases.
func (s *Service) ListCases(ctx context.Context) ([]*Case, error) {
	return s.store.ListCases(ctx, listCasesLimit)
}

// ListCasesForJudge returns cases assigned to the given judge.
func (s *Service) ListCasesForJudge(ctx context.Context, judgeID uuid.UUID) ([]*Case, error) {
	return s.store.ListCasesByJudge(ctx, judgeID)
}

// GetCase looks up a single case.
func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	c, err := s.store.GetCase(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return c, err
}

// CreateResolutionInput carries validated fields for drafting a resolution.
type CreateResolutionInput struct {
	CaseID  uuid.UUID
	Content string
}

// CreateResolution drafts a resolution on a case assigned to the acting judge.
func (s *Service) CreateResolution(ctx context.Context, actor identity.Principal, in CreateResolutionInput) (*Resolution, error) {
	ctx, span := tracer.Start(ctx, "cases.resolution.create")
	defer span.End()

	if err := validateLen("content", in.Content, minContentLen, maxContentLen); err != nil {
		return nil, err
	}

	c, err := s.store.GetCase(ctx, in.CaseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load case")
	}
	if c.AssignedJudge == nil || *c.AssignedJudge != actor.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "case not assigned to this judge")
	}

	r := &Resolution{
		ID:        uuid.New(),
		CaseID:    c.ID,
		Content:   in.Content,
		Status:    ResolutionDraft,
		CreatedBy: actor.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateResolution(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create resolution")
	}
	span.SetAttributes(attribute.String("resolution.id", r.ID.String()))

	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionResolutionCreate,
		Target:  "resolution:" + r.ID.String(),
		Success: true,
		Details: fmt.Sprintf("case_id=%s", c.ID),
	})
	return r, nil
}

// SignResolution hashes the resolution content and attaches an anonymous
// group signature token. Only the authoring judge may sign. Signing also
// advances the parent case to RESOLUTION_SIGNED.
func (s *Service) SignResolution(ctx context.Context, actor identity.Principal, resolutionID uuid.UUID) (*Resolution, error) {
	ctx, span := tracer.Start(ctx, "cases.resolution.sign")
	defer span.End()

	r, err := s.store.GetResolution(ctx, resolutionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "resolution not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load resolution")
	}
	if r.CreatedBy != actor.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the authoring judge can sign this resolution")
	}

	digest := sha256.Sum256([]byte(r.Content))
	now := time.Now()

	r.DocHash = hex.EncodeToString(digest[:])
	r.Signature = groupSignature()
	r.Status = ResolutionSigned
	r.SignedAt = &now

	if err := s.store.MarkResolutionSigned(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign resolution")
	}

	// Case status advance is best-effort: the signature is already durable.
	if err := s.store.UpdateCaseStatus(ctx, r.CaseID, StatusResolutionSigned); err != nil {
		s.logger.WarnContext(ctx, "advance case status after signing",
			"case_id", r.CaseID,
			"error", err,
		)
	}

	s.audit(ctx, audit.Entry{
		Actor:   actor.Username,
		Role:    string(actor.Role),
		Action:  audit.ActionResolutionSign,
		Target:  "resolution:" + r.ID.String(),
		Success: true,
		Details: fmt.Sprintf("hash=%s sig=%s...", r.DocHash, r.Signature[:12]),
	})

	s.logger.InfoContext(ctx, "resolution signed",
		"resolution_id", r.ID,
		"case_id", r.CaseID,
	)
	return r, nil
}

// ListSignedResolutions returns the signed resolutions of a case, oldest
// first. Used by disclosure when assembling the sealed payload.
func (s *Service) ListSignedResolutions(ctx context.Context, caseID uuid.UUID) ([]*Resolution, error) {
	return s.store.ListSignedResolutions(ctx, caseID)
}

// groupSignature mints a placeholder anonymous signature token. A production
// deployment would call a group signature service here.
func groupSignature() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return "GRP_SIG_" + hex.EncodeToString(buf)
}

func (s *Service) audit(ctx context.Context, entry audit.Entry) {
	if err := s.sink.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "append audit entry",
			"action", entry.Action,
			"error", err,
		)
	}
}

func validateLen(field, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
	}
	return nil
}
