package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"caseseal/internal/opening"
	"caseseal/pkg/sentinel"
)

type voteKey struct {
	requestID   uuid.UUID
	custodianID uuid.UUID
}

// Store is an in-memory implementation of opening.Store. A single mutex
// serializes every vote and view mutation, which is exactly the atomicity
// the interface demands.
type Store struct {
	mu        sync.Mutex
	requests  map[uuid.UUID]*opening.Request
	votes     map[voteKey]*opening.Approval
	voteOrder []voteKey
	order     []uuid.UUID
}

// New creates an empty in-memory opening store.
func New() *Store {
	return &Store{
		requests: make(map[uuid.UUID]*opening.Request),
		votes:    make(map[voteKey]*opening.Approval),
	}
}

func (s *Store) CreateRequest(_ context.Context, req *opening.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *req
	s.requests[req.ID] = &copied
	s.order = append(s.order, req.ID)
	return nil
}

func (s *Store) GetRequest(_ context.Context, id uuid.UUID) (*opening.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *Store) ListSummaries(_ context.Context, status opening.Status, limit int) ([]*opening.RequestSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*opening.RequestSummary
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		req := s.requests[s.order[i]]
		if req.Status != status {
			continue
		}
		out = append(out, &opening.RequestSummary{
			ID:        req.ID,
			CaseID:    req.CaseID,
			Status:    req.Status,
			MRequired: req.MRequired,
			Approvals: s.approveCountLocked(req.ID),
		})
	}
	return out, nil
}

func (s *Store) ListApprovals(_ context.Context, requestID uuid.UUID) ([]*opening.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*opening.Approval
	for _, key := range s.voteOrder {
		if key.requestID != requestID {
			continue
		}
		copied := *s.votes[key]
		out = append(out, &copied)
	}
	return out, nil
}

// AddApprovalAndRecount performs the duplicate check, the insert, the recount
// and the quorum transition under one lock hold.
func (s *Store) AddApprovalAndRecount(_ context.Context, approval *opening.Approval) (*opening.VoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[approval.RequestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	key := voteKey{requestID: approval.RequestID, custodianID: approval.CustodianID}
	if _, voted := s.votes[key]; voted {
		return nil, sentinel.ErrConflict
	}

	copied := *approval
	s.votes[key] = &copied
	s.voteOrder = append(s.voteOrder, key)

	approvals := s.approveCountLocked(req.ID)

	transitioned := false
	if req.Status == opening.StatusPending && approvals >= req.MRequired {
		req.Status = opening.StatusApprovedMReached
		transitioned = true
	}

	return &opening.VoteResult{
		Approvals:    approvals,
		Status:       req.Status,
		MRequired:    req.MRequired,
		Transitioned: transitioned,
	}, nil
}

// SetViewToken swaps the stored token for a fresh one, but only if it still
// holds the value the caller observed. A stale swap reports a conflict so a
// concurrent issuer's token survives.
func (s *Store) SetViewToken(_ context.Context, requestID uuid.UUID, current, token string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if req.ViewedAt != nil {
		return sentinel.ErrAlreadyViewed
	}
	if req.ViewToken != current {
		return sentinel.ErrConflict
	}

	expiresAt := expires
	req.ViewToken = token
	req.ViewTokenExpires = &expiresAt
	return nil
}

// ConsumeIfUnviewed is the single conditional write that makes disclosure
// one-time. The first caller wins; everyone after observes false.
func (s *Store) ConsumeIfUnviewed(_ context.Context, requestID uuid.UUID, viewedBy uuid.UUID, viewedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if req.ViewedAt != nil {
		return false, nil
	}

	at := viewedAt
	by := viewedBy
	req.ViewedAt = &at
	req.ViewedBy = &by
	req.Status = opening.StatusViewed
	req.ViewToken = ""
	req.ViewTokenExpires = nil
	return true, nil
}

func (s *Store) approveCountLocked(requestID uuid.UUID) int {
	count := 0
	for key, vote := range s.votes {
		if key.requestID == requestID && vote.Decision == opening.DecisionApprove {
			count++
		}
	}
	return count
}
