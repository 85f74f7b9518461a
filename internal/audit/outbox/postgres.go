package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists outbox entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed outbox store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		entry.Payload,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Drain claims a batch of pending entries inside a single transaction. The
// row locks taken by FOR UPDATE SKIP LOCKED stay held until the commit after
// the publishes and processed marks, so a concurrent drain skips the claimed
// rows instead of publishing them again. Entries whose publish fails are not
// marked and stay pending.
func (s *PostgresStore) Drain(ctx context.Context, limit int, publish PublishFunc) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox drain: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, processed_at
		FROM audit_outbox
		WHERE processed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("claim pending outbox entries: %w", err)
	}

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID,
			&entry.AggregateType,
			&entry.AggregateID,
			&entry.EventType,
			&entry.Payload,
			&entry.CreatedAt,
			&entry.ProcessedAt,
		)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate outbox entries: %w", err)
	}
	// The result set must be closed before the transaction runs the marks.
	rows.Close()

	published := 0
	for _, entry := range entries {
		if err := publish(ctx, entry); err != nil {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE audit_outbox SET processed_at = $2 WHERE id = $1`,
			entry.ID, time.Now(),
		)
		if err != nil {
			return published, fmt.Errorf("mark outbox entry processed: %w", err)
		}
		published++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox drain: %w", err)
	}
	return published, nil
}

func (s *PostgresStore) CountPending(ctx context.Context) (int64, error) {
	var pending int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE processed_at IS NULL`,
	).Scan(&pending)
	if err != nil {
		return 0, fmt.Errorf("count pending outbox entries: %w", err)
	}
	return pending, nil
}
