package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/storage"
)

// PutSession stores or replaces a session record.
func (s *Store) PutSession(ctx context.Context, sess domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, name, seed, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    seed = excluded.seed,
    updated_at = excluded.updated_at
`, sess.ID, sess.Name, sess.Seed, toMillis(sess.CreatedAt), toMillis(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession returns a session record by id.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	var sess domain.Session
	var createdAt, updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, seed, created_at, updated_at FROM sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.Name, &sess.Seed, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)
	return sess, nil
}

// ListSessions returns every session ordered by creation time.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, name, seed, created_at, updated_at FROM sessions ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var sess domain.Session
		var createdAt, updatedAt int64
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Seed, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.CreatedAt = fromMillis(createdAt)
		sess.UpdatedAt = fromMillis(updatedAt)
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session with its journal, sequence counter and
// combat documents.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	for _, stmt := range []string{
		"DELETE FROM events WHERE session_id = ?",
		"DELETE FROM event_seq WHERE session_id = ?",
		"DELETE FROM combats WHERE session_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete session data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
