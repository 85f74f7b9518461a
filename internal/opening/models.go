package opening

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks an opening request through its lifecycle. Transitions are
// strictly monotonic: PENDING -> APPROVED_M_REACHED -> VIEWED. Once VIEWED
// the request is permanently read-only.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusApprovedMReached Status = "APPROVED_M_REACHED"
	StatusViewed           Status = "VIEWED"
)

// Decision is a custodian's vote on an opening request.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Request is a petition to unseal a case record, requiring MRequired
// custodian approvals before a one-time view token can be issued.
//
// The token fields are non-empty only between issuance and consumption or
// expiry. ViewedAt set means the request is closed forever.
type Request struct {
	ID        uuid.UUID
	CaseID    uuid.UUID
	Reason    string
	MRequired int
	Status    Status
	CreatedBy uuid.UUID
	CreatedAt time.Time

	ViewToken        string
	ViewTokenExpires *time.Time
	ViewedAt         *time.Time
	ViewedBy         *uuid.UUID
}

// Approval is a custodian's recorded vote. At most one row exists per
// (request, custodian) pair, whatever the decision.
type Approval struct {
	ID          uuid.UUID
	RequestID   uuid.UUID
	CustodianID uuid.UUID
	Decision    Decision
	CreatedAt   time.Time
}

// VoteResult is the outcome of recording a vote: the recomputed approval
// count, the resulting status and whether this vote caused the quorum
// transition.
type VoteResult struct {
	Approvals    int
	Status       Status
	MRequired    int
	Transitioned bool
}

// RequestSummary is the listing projection, carrying the live approve count.
type RequestSummary struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"case_id"`
	Status    Status    `json:"status"`
	MRequired int       `json:"m_required"`
	Approvals int       `json:"approvals"`
}
