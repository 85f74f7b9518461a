package outbox

import (
	"context"
)

// PublishFunc delivers a single entry to the mirror stream. A nil return
// marks the entry processed; an error leaves it pending for the next drain.
type PublishFunc func(ctx context.Context, entry *Entry) error

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a new entry to the outbox.
	Append(ctx context.Context, entry *Entry) error

	// Drain hands up to limit pending entries, oldest first, to publish and
	// marks the successfully published ones processed. The implementation
	// holds its claim on the batch for the whole call (row locks held until
	// commit, or the store mutex), so two concurrent drains never publish
	// the same entry twice. Returns the number of entries published.
	Drain(ctx context.Context, limit int, publish PublishFunc) (int, error)

	// CountPending returns the number of unprocessed entries.
	CountPending(ctx context.Context) (int64, error)
}
