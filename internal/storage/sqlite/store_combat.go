package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/storage"
)

// PutCombat stores or replaces an encounter document keyed by session
// and started sequence.
func (s *Store) PutCombat(ctx context.Context, rec storage.CombatRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	initial := rec.InitialJSON
	if len(initial) == 0 {
		initial = []byte("{}")
	}
	state := rec.StateJSON
	if len(state) == 0 {
		state = []byte("{}")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO combats (session_id, started_seq, initial_json, state_json, phase, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id, started_seq) DO UPDATE SET
    state_json = excluded.state_json,
    phase = excluded.phase,
    updated_at = excluded.updated_at
`, rec.SessionID, rec.StartedSeq, string(initial), string(state), string(rec.Phase), toMillis(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put combat: %w", err)
	}
	return nil
}

// GetLatestCombat returns the encounter with the highest StartedSeq not
// exceeding maxStartedSeq.
func (s *Store) GetLatestCombat(ctx context.Context, sessionID string, maxStartedSeq uint64) (storage.CombatRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CombatRecord{}, err
	}

	var rec storage.CombatRecord
	var initial, state, phase string
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT session_id, started_seq, initial_json, state_json, phase, updated_at
FROM combats
WHERE session_id = ? AND (? = 0 OR started_seq <= ?)
ORDER BY started_seq DESC
LIMIT 1
`, sessionID, maxStartedSeq, maxStartedSeq).Scan(&rec.SessionID, &rec.StartedSeq, &initial, &state, &phase, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return storage.CombatRecord{}, storage.ErrNotFound
		}
		return storage.CombatRecord{}, fmt.Errorf("get latest combat: %w", err)
	}
	rec.InitialJSON = []byte(initial)
	rec.StateJSON = []byte(state)
	rec.Phase = domain.Phase(phase)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// DeleteCombatsStartedAfter removes encounters whose StartedSeq is
// strictly greater than seq.
func (s *Store) DeleteCombatsStartedAfter(ctx context.Context, sessionID string, seq uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM combats WHERE session_id = ? AND started_seq > ?",
		sessionID, seq,
	); err != nil {
		return fmt.Errorf("delete combats: %w", err)
	}
	return nil
}
