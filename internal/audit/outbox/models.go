package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a pending event in the outbox.
// It follows the transactional outbox pattern for reliable event publishing.
type Entry struct {
	ID            uuid.UUID
	AggregateType string     // e.g. "audit"
	AggregateID   string     // the audit event ID
	EventType     string     // e.g. "OPENING_VIEW"
	Payload       []byte     // JSON-encoded auditor projection
	CreatedAt     time.Time  // when the entry was created
	ProcessedAt   *time.Time // NULL = pending, non-NULL = published to Kafka
}

// IsPending returns true if this entry has not been processed yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates a new outbox entry with a generated UUID.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}
