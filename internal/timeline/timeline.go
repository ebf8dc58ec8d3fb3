// Package timeline exposes the append-only session journal: ordered
// reads, restore-point indexing, and point-in-time rollback.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/game/projection"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/storage"
)

const (
	readPageSize = 200
	// previewRunes bounds the human preview attached to restore points.
	previewRunes = 80
)

// RestorePoint marks a journal sequence that is a safe rollback target,
// derived from turn boundaries. It is rebuilt on demand and never stored
// as independent ground truth.
type RestorePoint struct {
	Seq       uint64
	Timestamp time.Time
	Preview   string
}

// Timeline is a session-scoped view over the event journal.
type Timeline struct {
	events  storage.EventStore
	combats storage.CombatStore
}

// New creates a timeline over the given stores.
func New(events storage.EventStore, combats storage.CombatStore) *Timeline {
	return &Timeline{events: events, combats: combats}
}

// Append validates and persists one event, returning it with its
// assigned sequence number.
func (t *Timeline) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if strings.TrimSpace(evt.SessionID) == "" {
		return event.Event{}, errors.New(errors.CodeSessionEmptyID, "event session id is required")
	}
	if !evt.Kind.IsValid() {
		return event.Event{}, errors.New(errors.CodeEventInvalidKind,
			fmt.Sprintf("unknown event kind %q", evt.Kind))
	}
	return t.events.AppendEvent(ctx, evt)
}

// AppendAll validates every event up front and persists the batch
// atomically, so a single game action never commits partially.
func (t *Timeline) AppendAll(ctx context.Context, events []event.Event) ([]event.Event, error) {
	for _, evt := range events {
		if strings.TrimSpace(evt.SessionID) == "" {
			return nil, errors.New(errors.CodeSessionEmptyID, "event session id is required")
		}
		if !evt.Kind.IsValid() {
			return nil, errors.New(errors.CodeEventInvalidKind,
				fmt.Sprintf("unknown event kind %q", evt.Kind))
		}
	}
	return t.events.AppendEvents(ctx, events)
}

// Read returns the events with fromSeq < seq <= toSeq in order. A zero
// toSeq means read to the journal tail.
func (t *Timeline) Read(ctx context.Context, sessionID string, fromSeq, toSeq uint64) ([]event.Event, error) {
	var out []event.Event
	last := fromSeq
	for {
		page, err := t.events.ListEvents(ctx, sessionID, last, readPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return out, nil
		}
		for _, evt := range page {
			if toSeq > 0 && evt.Seq > toSeq {
				return out, nil
			}
			out = append(out, evt)
			last = evt.Seq
		}
	}
}

// RestorePoints derives the ordered rollback targets from the journal:
// one per user-input event, previewing the player's text.
func (t *Timeline) RestorePoints(ctx context.Context, sessionID string) ([]RestorePoint, error) {
	var points []RestorePoint
	last := uint64(0)
	for {
		page, err := t.events.ListEvents(ctx, sessionID, last, readPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return points, nil
		}
		for _, evt := range page {
			last = evt.Seq
			if evt.Kind != event.KindUserInput {
				continue
			}
			points = append(points, RestorePoint{
				Seq:       evt.Seq,
				Timestamp: evt.Timestamp,
				Preview:   preview(evt.PayloadJSON),
			})
		}
	}
}

// RollbackTo truncates every event with seq strictly greater than
// targetSeq and recomputes derived combat state from the retained
// prefix. The truncated events are not recoverable; the sequence counter
// is preserved so later appends never reuse a truncated number. Returns
// the new tail sequence.
func (t *Timeline) RollbackTo(ctx context.Context, sessionID string, targetSeq uint64) (uint64, error) {
	last, err := t.events.LastSeq(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if targetSeq > last {
		return 0, errors.WithMetadata(errors.CodeTimelineInvalidSequence,
			fmt.Sprintf("rollback target %d is beyond the journal tail %d", targetSeq, last),
			map[string]string{"tail": fmt.Sprintf("%d", last)})
	}

	if _, err := t.events.TruncateEvents(ctx, sessionID, targetSeq); err != nil {
		return 0, err
	}
	if err := t.combats.DeleteCombatsStartedAfter(ctx, sessionID, targetSeq); err != nil {
		return 0, err
	}
	if err := t.recomputeCombat(ctx, sessionID, targetSeq); err != nil {
		return 0, err
	}
	return targetSeq, nil
}

// Inventory rebuilds the session inventory from the full retained journal.
func (t *Timeline) Inventory(ctx context.Context, sessionID string) (*domain.Inventory, error) {
	state := projection.NewState()
	if _, err := projection.ReplaySession(ctx, t.events, projection.Applier{State: state}, sessionID); err != nil {
		return nil, err
	}
	return state.Inventory, nil
}

// recomputeCombat rebuilds the newest surviving encounter from its
// initial snapshot plus the retained combat events, and stores it back.
func (t *Timeline) recomputeCombat(ctx context.Context, sessionID string, targetSeq uint64) error {
	rec, err := t.combats.GetLatestCombat(ctx, sessionID, targetSeq)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil
		}
		return err
	}

	var combatState domain.CombatState
	if err := json.Unmarshal(rec.InitialJSON, &combatState); err != nil {
		return fmt.Errorf("decode combat snapshot: %w", err)
	}

	state := projection.NewState()
	state.SeedCombat(&combatState)
	_, err = projection.ReplaySessionWith(ctx, t.events, projection.Applier{State: state}, sessionID, projection.ReplayOptions{
		AfterSeq: rec.StartedSeq,
		UntilSeq: targetSeq,
		Filter: func(evt event.Event) bool {
			return evt.Kind == event.KindCombatDamage || evt.Kind == event.KindCombatTurn
		},
	})
	if err != nil {
		return err
	}

	stateJSON, err := json.Marshal(&combatState)
	if err != nil {
		return fmt.Errorf("encode combat state: %w", err)
	}
	rec.StateJSON = stateJSON
	rec.Phase = combatState.Phase
	rec.UpdatedAt = time.Now().UTC()
	return t.combats.PutCombat(ctx, rec)
}

// preview extracts a short human-readable summary from a user-input
// payload.
func preview(payloadJSON []byte) string {
	var payload event.UserInputPayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return ""
	}
	text := strings.TrimSpace(payload.Text)
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes]) + "…"
}
