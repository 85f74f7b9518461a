package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"caseseal/internal/opening"
	"caseseal/pkg/sentinel"
)

// Store persists opening requests and approvals in PostgreSQL.
//
// Vote atomicity relies on a row lock on the request (SELECT FOR UPDATE)
// plus the unique index on (request_id, custodian_id). Disclosure atomicity
// relies on a single conditional UPDATE keyed on viewed_at IS NULL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed opening store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateRequest(ctx context.Context, req *opening.Request) error {
	query := `
		INSERT INTO opening_requests (id, case_id, reason, m_required, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.CaseID, req.Reason, req.MRequired, string(req.Status), req.CreatedBy, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert opening request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*opening.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, case_id, reason, m_required, status, created_by, created_at,
		       view_token, view_token_expires, viewed_at, viewed_by
		FROM opening_requests WHERE id = $1
	`, id)
	return scanRequest(row.Scan)
}

func (s *Store) ListSummaries(ctx context.Context, status opening.Status, limit int) ([]*opening.RequestSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.case_id, r.status, r.m_required,
		       COUNT(a.id) FILTER (WHERE a.decision = 'APPROVE') AS approvals
		FROM opening_requests r
		LEFT JOIN opening_approvals a ON a.request_id = r.id
		WHERE r.status = $1
		GROUP BY r.id
		ORDER BY r.created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("query opening summaries: %w", err)
	}
	defer rows.Close()

	var out []*opening.RequestSummary
	for rows.Next() {
		var summary opening.RequestSummary
		var st string
		if err := rows.Scan(&summary.ID, &summary.CaseID, &st, &summary.MRequired, &summary.Approvals); err != nil {
			return nil, fmt.Errorf("scan opening summary: %w", err)
		}
		summary.Status = opening.Status(st)
		out = append(out, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opening summaries: %w", err)
	}
	return out, nil
}

func (s *Store) ListApprovals(ctx context.Context, requestID uuid.UUID) ([]*opening.Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, custodian_id, decision, created_at
		FROM opening_approvals
		WHERE request_id = $1
		ORDER BY created_at ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}
	defer rows.Close()

	var out []*opening.Approval
	for rows.Next() {
		var approval opening.Approval
		var decision string
		if err := rows.Scan(&approval.ID, &approval.RequestID, &approval.CustodianID, &decision, &approval.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		approval.Decision = opening.Decision(decision)
		out = append(out, &approval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return out, nil
}

// AddApprovalAndRecount runs the duplicate check, insert, recount and quorum
// transition in one transaction holding a row lock on the request.
func (s *Store) AddApprovalAndRecount(ctx context.Context, approval *opening.Approval) (*opening.VoteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		status    string
		mRequired int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT status, m_required FROM opening_requests WHERE id = $1 FOR UPDATE
	`, approval.RequestID).Scan(&status, &mRequired)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock opening request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO opening_approvals (id, request_id, custodian_id, decision, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, approval.ID, approval.RequestID, approval.CustodianID, string(approval.Decision), approval.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert approval: %w", err)
	}

	var approvals int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM opening_approvals WHERE request_id = $1 AND decision = 'APPROVE'
	`, approval.RequestID).Scan(&approvals)
	if err != nil {
		return nil, fmt.Errorf("recount approvals: %w", err)
	}

	transitioned := false
	if opening.Status(status) == opening.StatusPending && approvals >= mRequired {
		_, err = tx.ExecContext(ctx, `
			UPDATE opening_requests SET status = $2 WHERE id = $1
		`, approval.RequestID, string(opening.StatusApprovedMReached))
		if err != nil {
			return nil, fmt.Errorf("apply quorum transition: %w", err)
		}
		status = string(opening.StatusApprovedMReached)
		transitioned = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vote transaction: %w", err)
	}

	return &opening.VoteResult{
		Approvals:    approvals,
		Status:       opening.Status(status),
		MRequired:    mRequired,
		Transitioned: transitioned,
	}, nil
}

// SetViewToken swaps the stored token for a fresh one in a single
// compare-and-set UPDATE. The predicate requires the row to be unviewed and
// to still hold the token value the caller read, so a concurrent issuer's
// fresh token cannot be overwritten; the loser gets sentinel.ErrConflict.
func (s *Store) SetViewToken(ctx context.Context, requestID uuid.UUID, current, token string, expires time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE opening_requests
		SET view_token = $3, view_token_expires = $4
		WHERE id = $1 AND viewed_at IS NULL AND COALESCE(view_token, '') = $2
	`, requestID, current, token, expires)
	if err != nil {
		return fmt.Errorf("set view token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set view token: %w", err)
	}
	if affected == 0 {
		var viewed bool
		err := s.db.QueryRowContext(ctx,
			`SELECT viewed_at IS NOT NULL FROM opening_requests WHERE id = $1`, requestID,
		).Scan(&viewed)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check opening request: %w", err)
		}
		if viewed {
			return sentinel.ErrAlreadyViewed
		}
		return sentinel.ErrConflict
	}
	return nil
}

// ConsumeIfUnviewed atomically closes the request. The WHERE predicate makes
// concurrent consumers race on a single row update: exactly one wins.
func (s *Store) ConsumeIfUnviewed(ctx context.Context, requestID uuid.UUID, viewedBy uuid.UUID, viewedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE opening_requests
		SET viewed_at = $2, viewed_by = $3, status = $4,
		    view_token = NULL, view_token_expires = NULL
		WHERE id = $1 AND viewed_at IS NULL
	`, requestID, viewedAt, viewedBy, string(opening.StatusViewed))
	if err != nil {
		return false, fmt.Errorf("consume view token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume view token: %w", err)
	}
	return affected == 1, nil
}

type scanFunc func(dest ...any) error

func scanRequest(scan scanFunc) (*opening.Request, error) {
	var (
		req      opening.Request
		status   string
		token    sql.NullString
		expires  sql.NullTime
		viewedAt sql.NullTime
		viewedBy uuid.NullUUID
	)
	err := scan(
		&req.ID, &req.CaseID, &req.Reason, &req.MRequired, &status, &req.CreatedBy, &req.CreatedAt,
		&token, &expires, &viewedAt, &viewedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan opening request: %w", err)
	}

	req.Status = opening.Status(status)
	req.ViewToken = token.String
	if expires.Valid {
		req.ViewTokenExpires = &expires.Time
	}
	if viewedAt.Valid {
		req.ViewedAt = &viewedAt.Time
	}
	if viewedBy.Valid {
		req.ViewedBy = &viewedBy.UUID
	}
	return &req, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
