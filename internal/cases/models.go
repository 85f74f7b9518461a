package cases

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a case through its registry lifecycle.
type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusResolutionSigned Status = "RESOLUTION_SIGNED"
)

// Case is a court case registered by the secretary office.
type Case struct {
	ID            uuid.UUID
	CaseNumber    string
	Title         string
	Parties       string
	Status        Status
	CreatedBy     uuid.UUID
	AssignedJudge *uuid.UUID
	CreatedAt     time.Time
}

// ResolutionStatus tracks a resolution from draft to signed.
type ResolutionStatus string

const (
	ResolutionDraft  ResolutionStatus = "DRAFT"
	ResolutionSigned ResolutionStatus = "SIGNED"
)

// Resolution is a judicial decision attached to a case. Once signed it
// carries the content hash and the anonymous group signature token.
type Resolution struct {
	ID        uuid.UUID
	CaseID    uuid.UUID
	Content   string
	Status    ResolutionStatus
	DocHash   string
	Signature string
	CreatedBy uuid.UUID
	SignedAt  *time.Time
	CreatedAt time.Time
}
