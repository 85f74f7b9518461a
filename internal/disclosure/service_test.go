package disclosure_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"caseseal/internal/audit"
	"caseseal/internal/audit/pseudonym"
	auditmemory "caseseal/internal/audit/store/memory"
	"caseseal/internal/cases"
	"caseseal/internal/disclosure"
	"caseseal/internal/identity"
	"caseseal/internal/opening"
	"caseseal/internal/opening/store/memory"
	dErrors "caseseal/pkg/domain-errors"
)

// caseReaderStub serves fixed case content for payload assembly.
type caseReaderStub struct {
	c           *cases.Case
	resolutions []*cases.Resolution
}

func (s *caseReaderStub) GetCase(_ context.Context, id uuid.UUID) (*cases.Case, error) {
	if s.c == nil || s.c.ID != id {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return s.c, nil
}

func (s *caseReaderStub) ListSignedResolutions(_ context.Context, _ uuid.UUID) ([]*cases.Resolution, error) {
	return s.resolutions, nil
}

type ServiceSuite struct {
	suite.Suite

	store      *memory.Store
	auditStore *auditmemory.Store
	users      *identity.InMemoryStore
	reader     *caseReaderStub
	service    *disclosure.Service
	ctx        context.Context

	auditor    identity.Principal
	custodianA identity.Principal
	custodianB identity.Principal

	base   time.Time
	offset time.Duration
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.auditStore = auditmemory.New()
	s.users = identity.NewInMemoryStore()
	s.base = time.Now()
	s.offset = 0

	signedAt := s.base
	caseID := uuid.New()
	s.reader = &caseReaderStub{
		c: &cases.Case{
			ID:         caseID,
			CaseNumber: "2026-0042",
			Title:      "Estate dispute",
			Parties:    "Smith vs. Jones",
			Status:     cases.StatusResolutionSigned,
		},
		resolutions: []*cases.Resolution{{
			ID:        uuid.New(),
			CaseID:    caseID,
			Content:   "The court resolves in favor of the plaintiff.",
			DocHash:   "deadbeef",
			Signature: "GRP_SIG_0123456789abcdef",
			Status:    cases.ResolutionSigned,
			SignedAt:  &signedAt,
		}},
	}

	logger := slog.New(slog.DiscardHandler)
	sink := audit.NewSink(s.auditStore, pseudonym.New("test-key"), nil, nil, logger)
	s.service = disclosure.NewService(
		s.store, s.reader, s.users, sink, nil, logger,
		120*time.Second,
		disclosure.WithClock(func() time.Time { return s.base.Add(s.offset) }),
	)

	s.auditor = s.addUser("auditor1", identity.RoleAuditor)
	s.custodianA = s.addUser("custodian1", identity.RoleCustodian)
	s.custodianB = s.addUser("custodian2", identity.RoleCustodian)
}

func (s *ServiceSuite) addUser(username string, role identity.Role) identity.Principal {
	user := &identity.User{ID: uuid.New(), Username: username, Role: role, Active: true}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user.Principal()
}

// approvedRequest seeds a request whose 2-of-N quorum is already satisfied.
func (s *ServiceSuite) approvedRequest() *opening.Request {
	req := &opening.Request{
		ID:        uuid.New(),
		CaseID:    s.reader.c.ID,
		Reason:    "appeal review requires the sealed record",
		MRequired: 2,
		Status:    opening.StatusPending,
		CreatedBy: uuid.New(),
		CreatedAt: s.base,
	}
	s.Require().NoError(s.store.CreateRequest(s.ctx, req))

	for _, custodian := range []identity.Principal{s.custodianA, s.custodianB} {
		_, err := s.store.AddApprovalAndRecount(s.ctx, &opening.Approval{
			ID:          uuid.New(),
			RequestID:   req.ID,
			CustodianID: custodian.ID,
			Decision:    opening.DecisionApprove,
			CreatedAt:   s.base,
		})
		s.Require().NoError(err)
	}
	return req
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// ============================================================
// IssueViewToken
// ============================================================

func (s *ServiceSuite) TestIssueToken() {
	req := s.approvedRequest()

	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)
	s.Len(grant.Token, 64)
	s.Equal(120, grant.ExpiresIn)
}

func (s *ServiceSuite) TestIssueTokenUnknownRequest() {
	_, err := s.service.IssueViewToken(s.ctx, s.auditor, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestIssueTokenBeforeQuorum() {
	req := &opening.Request{
		ID:        uuid.New(),
		CaseID:    s.reader.c.ID,
		Reason:    "appeal review requires the sealed record",
		MRequired: 2,
		Status:    opening.StatusPending,
		CreatedAt: s.base,
	}
	s.Require().NoError(s.store.CreateRequest(s.ctx, req))

	_, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestIssueTokenIdempotent() {
	req := s.approvedRequest()

	first, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	s.offset = 30 * time.Second
	second, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	s.Equal(first.Token, second.Token)
	s.Equal(90, second.ExpiresIn)
}

func (s *ServiceSuite) TestIssueTokenReplacedAfterExpiry() {
	req := s.approvedRequest()

	first, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	s.offset = 121 * time.Second
	second, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	s.NotEqual(first.Token, second.Token)
	s.Equal(120, second.ExpiresIn)
}

// Racing first-time issuers must converge on one token. The loser of the
// compare-and-set re-reads and returns the winner's token, so no caller is
// left holding a value the store already forgot.
func (s *ServiceSuite) TestConcurrentIssueSingleToken() {
	req := s.approvedRequest()

	const callers = 8
	var wg sync.WaitGroup
	tokens := make(chan string, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
			if err == nil {
				tokens <- grant.Token
			}
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[string]bool)
	granted := 0
	for token := range tokens {
		seen[token] = true
		granted++
	}
	s.Equal(callers, granted, "every caller must receive a grant")
	s.Require().Len(seen, 1, "every caller must receive the same token")

	stored, err := s.store.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.True(seen[stored.ViewToken], "the shared token is the stored one")
}

func (s *ServiceSuite) TestIssueTokenNeverAuditsTokenValue() {
	req := s.approvedRequest()

	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	events, err := s.auditStore.List(s.ctx, audit.Filters{Action: audit.ActionViewTokenIssue})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.NotContains(events[0].DetailsRedacted, grant.Token)
	s.Contains(events[0].DetailsRedacted, "expires=")
}

// ============================================================
// ConsumeViewToken
// ============================================================

func (s *ServiceSuite) TestConsumeToken() {
	req := s.approvedRequest()
	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	payload, err := s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
	s.Require().NoError(err)

	s.Equal("2026-0042", payload.Case.CaseNumber)
	s.Equal("Smith vs. Jones", payload.Case.Parties)
	s.Require().Len(payload.Resolutions, 1)
	s.Equal("GRP_SIG_0123456789abcdef", payload.Resolutions[0].Signature)
	s.ElementsMatch([]string{"custodian1", "custodian2"}, payload.ApprovedBy)

	stored, err := s.store.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(opening.StatusViewed, stored.Status)
	s.NotNil(stored.ViewedAt)
	s.Empty(stored.ViewToken, "token fields are cleared on consumption")
	s.Nil(stored.ViewTokenExpires)
}

func (s *ServiceSuite) TestConsumeTokenTwice() {
	req := s.approvedRequest()
	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
	s.Require().NoError(err)

	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeGone))
}

func (s *ServiceSuite) TestConsumeBadToken() {
	req := s.approvedRequest()
	_, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, "wrong-token")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	events, err := s.auditStore.List(s.ctx, audit.Filters{Action: audit.ActionOpeningView})
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.False(events[0].Success)
	s.Equal("reason=bad_token", events[0].DetailsRedacted)
}

func (s *ServiceSuite) TestConsumeExpiredToken() {
	req := s.approvedRequest()
	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	s.offset = 121 * time.Second
	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	events, err := s.auditStore.List(s.ctx, audit.Filters{Action: audit.ActionOpeningView})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("reason=expired_token", events[0].DetailsRedacted)
}

func (s *ServiceSuite) TestIssueGoneAfterViewed() {
	req := s.approvedRequest()
	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	_, err = s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
	s.Require().NoError(err)

	_, err = s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeGone))
}

func (s *ServiceSuite) TestConcurrentConsumeSingleWinner() {
	req := s.approvedRequest()
	grant, err := s.service.IssueViewToken(s.ctx, s.auditor, req.ID)
	s.Require().NoError(err)

	const callers = 8
	var wg sync.WaitGroup
	successes := make(chan *disclosure.Payload, callers)
	gones := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, err := s.service.ConsumeViewToken(s.ctx, s.auditor, req.ID, grant.Token)
			if err == nil {
				successes <- payload
				return
			}
			if dErrors.HasCode(err, dErrors.CodeGone) {
				gones <- err
			}
		}()
	}
	wg.Wait()
	close(successes)
	close(gones)

	s.Len(successes, 1, "exactly one caller may receive the disclosure")
	s.Len(gones, callers-1, "every loser observes the post-state")
}
