package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

var _ ports.SessionRepository = (*Store)(nil)

// TouchSession registers a guest session or refreshes its last activity.
func (s *Store) TouchSession(ctx context.Context, id string, at time.Time) error {
	ts := formatTime(at)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guest_sessions (id, created_at, last_seen_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = excluded.last_seen_at`,
		id, ts, ts)
	return translate(err, "touch session")
}

// PurgeSessions removes idle guest sessions; carts and addresses cascade.
// Orders keep the session id as plain text.
func (s *Store) PurgeSessions(ctx context.Context, idleBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guest_sessions WHERE last_seen_at < ?`, formatTime(idleBefore))
	if err != nil {
		return 0, translate(err, "purge sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge sessions: %w", err)
	}
	return int(n), nil
}
