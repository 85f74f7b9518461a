package opening

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines persistence for opening requests and approvals.
//
// The three mutating vote/view primitives are where the concurrency
// guarantees live, so implementations must make each one atomic:
//
//   - AddApprovalAndRecount serializes the duplicate-vote check, the insert
//     and the recount-and-transition. Two concurrent votes must never both
//     read a stale count, and the PENDING -> APPROVED_M_REACHED transition
//     must be applied exactly once.
//   - SetViewToken writes the token only while the request is unviewed and
//     still carries the token value the caller read (current, empty when
//     none). Two concurrent issuers therefore cannot silently overwrite
//     each other's fresh token; the loser observes sentinel.ErrConflict.
//   - ConsumeIfUnviewed is a single conditional write keyed on
//     viewed_at IS NULL, so at most one concurrent caller observes success.
//
// Missing requests yield sentinel.ErrNotFound, duplicate votes and stale
// token swaps sentinel.ErrConflict, writes against a viewed request
// sentinel.ErrAlreadyViewed.
type Store interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	ListSummaries(ctx context.Context, status Status, limit int) ([]*RequestSummary, error)
	ListApprovals(ctx context.Context, requestID uuid.UUID) ([]*Approval, error)

	AddApprovalAndRecount(ctx context.Context, approval *Approval) (*VoteResult, error)
	SetViewToken(ctx context.Context, requestID uuid.UUID, current, token string, expires time.Time) error
	ConsumeIfUnviewed(ctx context.Context, requestID uuid.UUID, viewedBy uuid.UUID, viewedAt time.Time) (bool, error)
}
