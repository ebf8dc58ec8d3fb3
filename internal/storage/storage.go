// Package storage defines the persistence contracts for sessions,
// timelines and combat encounters.
package storage

import (
	"context"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	apperrors "github.com/fablestack/engine/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// CombatRecord is the persisted form of one combat encounter. Concluded
// encounters stay stored for post-mortem review. InitialJSON preserves the
// state at encounter start so derived state can be recomputed from the
// event journal after a rollback.
type CombatRecord struct {
	SessionID string
	// StartedSeq is the journal sequence of the combat-started event.
	StartedSeq uint64
	// InitialJSON is the CombatState document at encounter start.
	InitialJSON []byte
	// StateJSON is the current CombatState document.
	StateJSON []byte
	Phase     domain.Phase
	UpdatedAt time.Time
}

// EventStore owns the append-only event journal. Sequence numbers are
// strictly increasing per session and are never reused, even after a
// truncation.
type EventStore interface {
	// AppendEvent assigns the next sequence number and persists the event.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// AppendEvents persists the events as one atomic batch with contiguous
	// sequence numbers. Either every event is stored or none is.
	AppendEvents(ctx context.Context, events []event.Event) ([]event.Event, error)
	// ListEvents returns up to limit events with seq > afterSeq in order.
	ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error)
	// TruncateEvents removes every event with seq > afterSeq and returns
	// how many were removed. The sequence counter is left untouched.
	TruncateEvents(ctx context.Context, sessionID string, afterSeq uint64) (int, error)
	// LastSeq returns the highest sequence number ever assigned for the
	// session, which can exceed the newest stored event after a truncation.
	LastSeq(ctx context.Context, sessionID string) (uint64, error)
}

// SessionStore owns durable session records.
type SessionStore interface {
	PutSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	ListSessions(ctx context.Context) ([]domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// CombatStore owns combat encounter documents keyed by session and the
// sequence at which the encounter started.
type CombatStore interface {
	PutCombat(ctx context.Context, rec CombatRecord) error
	// GetLatestCombat returns the encounter with the highest StartedSeq
	// not exceeding maxStartedSeq. A maxStartedSeq of zero means no
	// upper bound.
	GetLatestCombat(ctx context.Context, sessionID string, maxStartedSeq uint64) (CombatRecord, error)
	// DeleteCombatsStartedAfter removes encounters whose StartedSeq is
	// strictly greater than seq. Used when a rollback truncates past an
	// encounter's start.
	DeleteCombatsStartedAfter(ctx context.Context, sessionID string, seq uint64) error
}

// Store aggregates the stores a running engine needs.
type Store interface {
	EventStore
	SessionStore
	CombatStore
}
