package disclosure

import (
	"time"

	"github.com/google/uuid"
)

// TokenGrant is returned by token issuance. ExpiresIn is the remaining
// validity in seconds, which shrinks on idempotent re-issue.
type TokenGrant struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

// CaseRecord is the unsealed case metadata inside a disclosure payload.
type CaseRecord struct {
	ID         uuid.UUID `json:"id"`
	CaseNumber string    `json:"case_number"`
	Title      string    `json:"title"`
	Parties    string    `json:"parties"`
	Status     string    `json:"status"`
}

// ResolutionRecord is a signed resolution inside a disclosure payload.
type ResolutionRecord struct {
	ID        uuid.UUID  `json:"id"`
	Content   string     `json:"content"`
	DocHash   string     `json:"doc_hash"`
	Signature string     `json:"signature"`
	SignedAt  *time.Time `json:"signed_at"`
}

// Payload is the full disclosure delivered exactly once per request.
type Payload struct {
	RequestID   uuid.UUID          `json:"request_id"`
	Case        CaseRecord         `json:"case"`
	Resolutions []ResolutionRecord `json:"resolutions"`
	ApprovedBy  []string           `json:"approved_by"`
	ViewedAt    time.Time          `json:"viewed_at"`
}

// Denial reason codes recorded in the audit trail and metrics.
const (
	ReasonAlreadyViewed = "already_viewed"
	ReasonBadToken      = "bad_token"
	ReasonExpiredToken  = "expired_token"
)
