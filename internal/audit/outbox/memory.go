package outbox

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory outbox for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []*Entry
}

// NewMemoryStore creates an empty in-memory outbox.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

// Drain publishes up to limit pending entries while holding the store mutex.
// The mutex is the claim: a second drain blocks until this one finishes and
// then sees the published entries already marked.
func (s *MemoryStore) Drain(ctx context.Context, limit int, publish PublishFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	published := 0
	claimed := 0
	for _, entry := range s.entries {
		if !entry.IsPending() {
			continue
		}
		claimed++

		copied := *entry
		if err := publish(ctx, &copied); err == nil {
			now := time.Now()
			entry.ProcessedAt = &now
			published++
		}
		if claimed >= limit {
			break
		}
	}
	return published, nil
}

// Pending returns copies of up to limit unprocessed entries, oldest first.
func (s *MemoryStore) Pending(_ context.Context, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Entry
	for _, entry := range s.entries {
		if !entry.IsPending() {
			continue
		}
		copied := *entry
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CountPending(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending int64
	for _, entry := range s.entries {
		if entry.IsPending() {
			pending++
		}
	}
	return pending, nil
}
