package cases

import (
	"context"

	"github.com/google/uuid"
)

// Store defines persistence for cases and resolutions.
//
// Implementations return sentinel.ErrNotFound for missing records and
// sentinel.ErrConflict for duplicate case numbers.
type Store interface {
	CreateCase(ctx context.Context, c *Case) error
	GetCase(ctx context.Context, id uuid.UUID) (*Case, error)
	ListCases(ctx context.Context, limit int) ([]*Case, error)
	ListCasesByJudge(ctx context.Context, judgeID uuid.UUID) ([]*Case, error)
	UpdateCaseStatus(ctx context.Context, id uuid.UUID, status Status) error

	CreateResolution(ctx context.Context, r *Resolution) error
	GetResolution(ctx context.Context, id uuid.UUID) (*Resolution, error)
	MarkResolutionSigned(ctx context.Context, r *Resolution) error
	ListSignedResolutions(ctx context.Context, caseID uuid.UUID) ([]*Resolution, error)
}
