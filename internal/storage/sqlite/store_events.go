package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fablestack/engine/internal/game/event"
)

// AppendEvent atomically assigns the next sequence number and persists
// the event. The counter row is never decremented, so sequence numbers
// stay monotonic across truncation.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	appended, err := appendEventInTx(ctx, tx, evt)
	if err != nil {
		return event.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit tx: %w", err)
	}
	return appended, nil
}

// AppendEvents persists the batch in one transaction so a mid-batch
// failure stores nothing. Sequence numbers within the batch are
// contiguous.
func (s *Store) AppendEvents(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	appended := make([]event.Event, 0, len(events))
	for _, evt := range events {
		stored, err := appendEventInTx(ctx, tx, evt)
		if err != nil {
			return nil, err
		}
		appended = append(appended, stored)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return appended, nil
}

// appendEventInTx assigns the next sequence number and inserts the
// event inside the caller's transaction.
func appendEventInTx(ctx context.Context, tx *sql.Tx, evt event.Event) (event.Event, error) {
	if strings.TrimSpace(evt.SessionID) == "" {
		return event.Event{}, fmt.Errorf("event session id is required")
	}

	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO event_seq (session_id, next_seq) VALUES (?, 1) ON CONFLICT(session_id) DO NOTHING",
		evt.SessionID,
	); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}

	var seq uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE session_id = ?",
		evt.SessionID,
	).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	evt.Seq = seq

	if _, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = next_seq + 1 WHERE session_id = ?",
		evt.SessionID,
	); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}

	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO events (session_id, seq, timestamp, kind, icon, payload) VALUES (?, ?, ?, ?, ?, ?)",
		evt.SessionID, evt.Seq, toMillis(evt.Timestamp), string(evt.Kind), evt.Icon, string(payload),
	); err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return evt, nil
}

// ListEvents returns up to limit events with seq > afterSeq in sequence
// order. A non-positive limit means no bound.
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT session_id, seq, timestamp, kind, icon, payload FROM events WHERE session_id = ? AND seq > ? ORDER BY seq LIMIT ?",
		sessionID, afterSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var evt event.Event
		var ts int64
		var kind, payload string
		if err := rows.Scan(&evt.SessionID, &evt.Seq, &ts, &kind, &evt.Icon, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Timestamp = fromMillis(ts)
		evt.Kind = event.Kind(kind)
		evt.PayloadJSON = []byte(payload)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// TruncateEvents deletes every event with seq > afterSeq. The counter
// row is intentionally left alone.
func (s *Store) TruncateEvents(ctx context.Context, sessionID string, afterSeq uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM events WHERE session_id = ? AND seq > ?",
		sessionID, afterSeq,
	)
	if err != nil {
		return 0, fmt.Errorf("truncate events: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("truncate events rows affected: %w", err)
	}
	return int(removed), nil
}

// LastSeq returns the highest sequence number ever assigned for the
// session, zero when none was.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var next uint64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE session_id = ?",
		sessionID,
	).Scan(&next)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get event seq: %w", err)
	}
	return next - 1, nil
}
