package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"caseseal/internal/cases"
	"caseseal/pkg/sentinel"
)

// Store is a mutex-guarded in-memory implementation of cases.Store.
type Store struct {
	mu          sync.RWMutex
	cases       map[uuid.UUID]*cases.Case
	byNumber    map[string]uuid.UUID
	resolutions map[uuid.UUID]*cases.Resolution
	order       []uuid.UUID // case insertion order, for newest-first listing
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		cases:       make(map[uuid.UUID]*cases.Case),
		byNumber:    make(map[string]uuid.UUID),
		resolutions: make(map[uuid.UUID]*cases.Resolution),
	}
}

func (s *Store) CreateCase(_ context.Context, c *cases.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[c.CaseNumber]; exists {
		return sentinel.ErrConflict
	}

	copied := *c
	s.cases[c.ID] = &copied
	s.byNumber[c.CaseNumber] = c.ID
	s.order = append(s.order, c.ID)
	return nil
}

func (s *Store) GetCase(_ context.Context, id uuid.UUID) (*cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *Store) ListCases(_ context.Context, limit int) ([]*cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*cases.Case
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *s.cases[s.order[i]]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) ListCasesByJudge(_ context.Context, judgeID uuid.UUID) ([]*cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*cases.Case
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.cases[s.order[i]]
		if c.AssignedJudge != nil && *c.AssignedJudge == judgeID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) UpdateCaseStatus(_ context.Context, id uuid.UUID, status cases.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cases[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Status = status
	return nil
}

func (s *Store) CreateResolution(_ context.Context, r *cases.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *r
	s.resolutions[r.ID] = &copied
	return nil
}

func (s *Store) GetResolution(_ context.Context, id uuid.UUID) (*cases.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resolutions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *Store) MarkResolutionSigned(_ context.Context, r *cases.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.resolutions[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Status = r.Status
	stored.DocHash = r.DocHash
	stored.Signature = r.Signature
	stored.SignedAt = r.SignedAt
	return nil
}

func (s *Store) ListSignedResolutions(_ context.Context, caseID uuid.UUID) ([]*cases.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*cases.Resolution
	for _, r := range s.resolutions {
		if r.CaseID == caseID && r.Status == cases.ResolutionSigned {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
