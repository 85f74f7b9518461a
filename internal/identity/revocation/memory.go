// Package revocation holds the token revocation list capability.
//
// Upstream this was an implicit process-wide blacklist map. Here it is an
// explicitly owned, injectable capability with a defined lifecycle: the
// in-memory list resets on restart and suits single-instance deployments,
// the Redis list is shared across instances.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time; injected for testability.
type Clock func() time.Time

// MemoryTRL is an in-memory token revocation list.
type MemoryTRL struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> expiry
	clock   Clock
}

// MemoryTRLOption configures a MemoryTRL instance.
type MemoryTRLOption func(*MemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryTRLOption {
	return func(trl *MemoryTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

// NewMemoryTRL constructs an in-memory token revocation list.
func NewMemoryTRL(opts ...MemoryTRLOption) *MemoryTRL {
	trl := &MemoryTRL{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// Revoke adds a token JTI to the revocation list with a TTL.
func (t *MemoryTRL) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[jti] = t.clock().Add(ttl)
	return nil
}

// IsRevoked checks if a token is in the revocation list.
// Expired entries are pruned lazily on lookup.
func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	t.mu.RLock()
	expiry, ok := t.entries[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if t.clock().After(expiry) {
		t.mu.Lock()
		delete(t.entries, jti)
		t.mu.Unlock()
		return false, nil
	}
	return true, nil
}
