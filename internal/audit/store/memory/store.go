package memory

import (
	"context"
	"sync"

	"caseseal/internal/audit"
)

// Store is a mutex-guarded, append-only in-memory audit store.
type Store struct {
	mu     sync.RWMutex
	events []*audit.Event
}

// New creates an empty in-memory audit store.
func New() *Store {
	return &Store{}
}

// Append records an event. Events are never updated or deleted.
func (s *Store) Append(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

// List returns events newest-first, honoring filters.
func (s *Store) List(_ context.Context, filters audit.Filters) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 200
	}

	var out []*audit.Event
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		event := s.events[i]
		if !matches(event, filters) {
			continue
		}
		copied := *event
		out = append(out, &copied)
	}
	return out, nil
}

func matches(event *audit.Event, filters audit.Filters) bool {
	if filters.Action != "" && event.Action != filters.Action {
		return false
	}
	if len(filters.Actions) > 0 {
		found := false
		for _, action := range filters.Actions {
			if event.Action == action {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.Role != "" && event.Role != filters.Role {
		return false
	}
	if filters.Success != nil && event.Success != *filters.Success {
		return false
	}
	return true
}

// Stats aggregates counts without exposing individual rows.
func (s *Store) Stats(_ context.Context) (*audit.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &audit.Stats{
		ByAction:  make(map[string]int),
		ByRole:    make(map[string]int),
		BySuccess: map[string]int{"success": 0, "failure": 0},
	}
	for _, event := range s.events {
		stats.ByAction[string(event.Action)]++
		role := event.Role
		if role == "" {
			role = "unknown"
		}
		stats.ByRole[role]++
		if event.Success {
			stats.BySuccess["success"]++
		} else {
			stats.BySuccess["failure"]++
		}
		stats.Total++
	}
	return stats, nil
}
