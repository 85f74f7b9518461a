package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"caseseal/internal/audit/outbox"
)

type MemoryStoreSuite struct {
	suite.Suite

	store *outbox.MemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = outbox.NewMemoryStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) append(aggregateID string) *outbox.Entry {
	entry := outbox.NewEntry("audit", aggregateID, "OPENING_VIEW", []byte(`{}`))
	s.Require().NoError(s.store.Append(s.ctx, entry))
	return entry
}

func (s *MemoryStoreSuite) TestDrainMarksPublishedEntries() {
	s.append("event-1")
	s.append("event-2")

	var seen []string
	published, err := s.store.Drain(s.ctx, 10, func(_ context.Context, entry *outbox.Entry) error {
		seen = append(seen, entry.AggregateID)
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, published)
	s.Equal([]string{"event-1", "event-2"}, seen, "entries drain oldest first")

	pending, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Zero(pending)
}

func (s *MemoryStoreSuite) TestDrainKeepsFailedEntriesPending() {
	s.append("event-1")
	s.append("event-2")

	published, err := s.store.Drain(s.ctx, 10, func(_ context.Context, entry *outbox.Entry) error {
		if entry.AggregateID == "event-1" {
			return errors.New("broker unavailable")
		}
		return nil
	})
	s.Require().NoError(err)
	s.Equal(1, published)

	pending, err := s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("event-1", pending[0].AggregateID)
}

func (s *MemoryStoreSuite) TestDrainHonorsLimit() {
	for range 5 {
		s.append("event")
	}

	published, err := s.store.Drain(s.ctx, 2, func(context.Context, *outbox.Entry) error {
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, published)

	pending, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), pending)
}

// Concurrent drains must split the backlog, never publish an entry twice.
func (s *MemoryStoreSuite) TestConcurrentDrainsPublishEachEntryOnce() {
	const entries = 20
	for range entries {
		s.append("event")
	}

	var (
		mu        sync.Mutex
		delivered = make(map[string]int)
		wg        sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Drain(s.ctx, entries, func(_ context.Context, entry *outbox.Entry) error {
				mu.Lock()
				delivered[entry.ID.String()]++
				mu.Unlock()
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Len(delivered, entries)
	for id, count := range delivered {
		s.Equal(1, count, "entry %s published more than once", id)
	}
}
