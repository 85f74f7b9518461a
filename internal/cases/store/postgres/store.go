package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"caseseal/internal/cases"
	"caseseal/pkg/sentinel"
)

// Store persists cases and resolutions in PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed case store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCase(ctx context.Context, c *cases.Case) error {
	query := `
		INSERT INTO cases (id, case_number, title, parties, status, created_by, assigned_judge, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.CaseNumber, c.Title, c.Parties, string(c.Status), c.CreatedBy, c.AssignedJudge, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *Store) GetCase(ctx context.Context, id uuid.UUID) (*cases.Case, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, case_number, title, parties, status, created_by, assigned_judge, created_at
		FROM cases WHERE id = $1
	`, id)
	return scanCase(row)
}

func (s *Store) ListCases(ctx context.Context, limit int) ([]*cases.Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_number, title, parties, status, created_by, assigned_judge, created_at
		FROM cases ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()
	return scanCases(rows)
}

func (s *Store) ListCasesByJudge(ctx context.Context, judgeID uuid.UUID) ([]*cases.Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_number, title, parties, status, created_by, assigned_judge, created_at
		FROM cases WHERE assigned_judge = $1 ORDER BY created_at DESC
	`, judgeID)
	if err != nil {
		return nil, fmt.Errorf("query cases by judge: %w", err)
	}
	defer rows.Close()
	return scanCases(rows)
}

func (s *Store) UpdateCaseStatus(ctx context.Context, id uuid.UUID, status cases.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cases SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) CreateResolution(ctx context.Context, r *cases.Resolution) error {
	query := `
		INSERT INTO resolutions (id, case_id, content, status, doc_hash, signature, created_by, signed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.CaseID, r.Content, string(r.Status), r.DocHash, r.Signature, r.CreatedBy, r.SignedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}

func (s *Store) GetResolution(ctx context.Context, id uuid.UUID) (*cases.Resolution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, case_id, content, status, doc_hash, signature, created_by, signed_at, created_at
		FROM resolutions WHERE id = $1
	`, id)

	var r cases.Resolution
	var status string
	err := row.Scan(&r.ID, &r.CaseID, &r.Content, &status, &r.DocHash, &r.Signature, &r.CreatedBy, &r.SignedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan resolution: %w", err)
	}
	r.Status = cases.ResolutionStatus(status)
	return &r, nil
}

func (s *Store) MarkResolutionSigned(ctx context.Context, r *cases.Resolution) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE resolutions
		SET status = $2, doc_hash = $3, signature = $4, signed_at = $5
		WHERE id = $1
	`, r.ID, string(r.Status), r.DocHash, r.Signature, r.SignedAt)
	if err != nil {
		return fmt.Errorf("mark resolution signed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark resolution signed: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListSignedResolutions(ctx context.Context, caseID uuid.UUID) ([]*cases.Resolution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, content, status, doc_hash, signature, created_by, signed_at, created_at
		FROM resolutions
		WHERE case_id = $1 AND status = 'SIGNED'
		ORDER BY created_at ASC
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("query signed resolutions: %w", err)
	}
	defer rows.Close()

	var out []*cases.Resolution
	for rows.Next() {
		var r cases.Resolution
		var status string
		err := rows.Scan(&r.ID, &r.CaseID, &r.Content, &status, &r.DocHash, &r.Signature, &r.CreatedBy, &r.SignedAt, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		r.Status = cases.ResolutionStatus(status)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return out, nil
}

func scanCase(row *sql.Row) (*cases.Case, error) {
	var c cases.Case
	var status string
	err := row.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Parties, &status, &c.CreatedBy, &c.AssignedJudge, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan case: %w", err)
	}
	c.Status = cases.Status(status)
	return &c, nil
}

func scanCases(rows *sql.Rows) ([]*cases.Case, error) {
	var out []*cases.Case
	for rows.Next() {
		var c cases.Case
		var status string
		err := rows.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Parties, &status, &c.CreatedBy, &c.AssignedJudge, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		c.Status = cases.Status(status)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
