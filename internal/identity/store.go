package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"caseseal/pkg/sentinel"
)

// Store looks up identity records. The core consumes it read-only: it only
// needs usernames for disclosure payloads and audit attribution.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// InMemoryStore is a mutex-guarded identity store for development and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*User
	byUsername map[string]*User
}

// NewInMemoryStore creates an empty in-memory identity store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[uuid.UUID]*User),
		byUsername: make(map[string]*User),
	}
}

// Create adds a user. Re-creating the same username overwrites the earlier
// record, which keeps seeding idempotent.
func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.byID[user.ID] = &copied
	s.byUsername[user.Username] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byUsername[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
