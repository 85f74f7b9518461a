package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"caseseal/internal/audit"
)

// Store persists audit events in PostgreSQL. Rows are append-only; the schema
// has no UPDATE path and the application never issues one.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a single audit event.
func (s *Store) Append(ctx context.Context, event *audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, ts, actor, target, actor_pseudo, target_pseudo,
			role, action, ip_masked, success, details_redacted,
			request_id, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.Actor,
		event.Target,
		event.ActorPseudo,
		event.TargetPseudo,
		event.Role,
		string(event.Action),
		event.IPMasked,
		event.Success,
		event.DetailsRedacted,
		event.RequestID,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns events newest-first, honoring filters.
func (s *Store) List(ctx context.Context, filters audit.Filters) ([]*audit.Event, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT id, ts, actor, target, actor_pseudo, target_pseudo,
		       role, action, ip_masked, success, details_redacted,
		       request_id, device
		FROM audit_events
		WHERE ($1 = '' OR action = $1)
		  AND (cardinality($2::text[]) = 0 OR action = ANY($2))
		  AND ($3 = '' OR role = $3)
		  AND ($4::boolean IS NULL OR success = $4)
		ORDER BY ts DESC
		LIMIT $5
	`

	actions := make([]string, 0, len(filters.Actions))
	for _, action := range filters.Actions {
		actions = append(actions, string(action))
	}

	var success sql.NullBool
	if filters.Success != nil {
		success = sql.NullBool{Bool: *filters.Success, Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query,
		string(filters.Action),
		pq.Array(actions),
		filters.Role,
		success,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*audit.Event, error) {
	var events []*audit.Event

	for rows.Next() {
		var (
			event  audit.Event
			action string
		)
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Actor,
			&event.Target,
			&event.ActorPseudo,
			&event.TargetPseudo,
			&event.Role,
			&action,
			&event.IPMasked,
			&event.Success,
			&event.DetailsRedacted,
			&event.RequestID,
			&event.Device,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// Stats aggregates counts by action, role and success flag.
func (s *Store) Stats(ctx context.Context) (*audit.Stats, error) {
	stats := &audit.Stats{
		ByAction:  make(map[string]int),
		ByRole:    make(map[string]int),
		BySuccess: map[string]int{"success": 0, "failure": 0},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT action, COALESCE(NULLIF(role, ''), 'unknown'), success, COUNT(*)
		FROM audit_events
		GROUP BY 1, 2, 3
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			action  string
			role    string
			success bool
			count   int
		)
		if err := rows.Scan(&action, &role, &success, &count); err != nil {
			return nil, fmt.Errorf("scan audit stats: %w", err)
		}
		stats.ByAction[action] += count
		stats.ByRole[role] += count
		if success {
			stats.BySuccess["success"] += count
		} else {
			stats.BySuccess["failure"] += count
		}
		stats.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit stats: %w", err)
	}
	return stats, nil
}
