// Package sqlite stores the saga log in the storefront's SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog"
)

// The table is append-only: the newest row per saga_id is its current state.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    current_step    TEXT    NOT NULL DEFAULT '',
    payload         TEXT,
    error_messages  TEXT    NOT NULL DEFAULT '[]',
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    updated_at      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

var _ sagalog.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// New applies the saga_logs schema to db and returns a repository on it.
// The handle is shared with the storefront store and is not closed here.
func New(ctx context.Context, db *sql.DB) (*Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply saga log schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

func (r *Repository) History(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	const q = `
		SELECT saga_id, status, current_step, COALESCE(payload, ''), error_messages,
		       trace_id, span_id, updated_at
		FROM   saga_logs
		WHERE  saga_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: saga history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	var out []sagalog.SagaLog
	for rows.Next() {
		var entry sagalog.SagaLog
		var updatedAt string
		if err := rows.Scan(
			&entry.SagaID,
			&entry.Status,
			&entry.CurrentStep,
			&entry.Payload,
			&entry.ErrorMessages,
			&entry.TraceID,
			&entry.SpanID,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan saga log: %w", err)
		}
		if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
