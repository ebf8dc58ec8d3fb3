// Package memory provides an in-memory Store for tests and ephemeral
// runs. It mirrors the sqlite store's semantics, including sequence
// counters that survive truncation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/storage"
)

// Store keeps all records in process memory, guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	events   map[string][]event.Event
	seqs     map[string]uint64
	sessions map[string]domain.Session
	combats  map[string][]storage.CombatRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		events:   make(map[string][]event.Event),
		seqs:     make(map[string]uint64),
		sessions: make(map[string]domain.Session),
		combats:  make(map[string][]storage.CombatRecord),
	}
}

// AppendEvent assigns the next sequence number and stores the event.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqs[evt.SessionID]++
	evt.Seq = s.seqs[evt.SessionID]
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.events[evt.SessionID] = append(s.events[evt.SessionID], evt)
	return evt, nil
}

// AppendEvents stores the batch under one lock acquisition. Validation
// happens before any counter moves so a bad event stores nothing.
func (s *Store) AppendEvents(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, evt := range events {
		if evt.SessionID == "" {
			return nil, fmt.Errorf("event session id is required")
		}
	}

	appended := make([]event.Event, 0, len(events))
	for _, evt := range events {
		s.seqs[evt.SessionID]++
		evt.Seq = s.seqs[evt.SessionID]
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now().UTC()
		}
		s.events[evt.SessionID] = append(s.events[evt.SessionID], evt)
		appended = append(appended, evt)
	}
	return appended, nil
}

// ListEvents returns up to limit events with seq > afterSeq in order.
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []event.Event
	for _, evt := range s.events[sessionID] {
		if evt.Seq <= afterSeq {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// TruncateEvents removes events with seq > afterSeq, preserving the
// sequence counter so truncated numbers are never reassigned.
func (s *Store) TruncateEvents(ctx context.Context, sessionID string, afterSeq uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.events[sessionID]
	kept := all[:0]
	removed := 0
	for _, evt := range all {
		if evt.Seq > afterSeq {
			removed++
			continue
		}
		kept = append(kept, evt)
	}
	s.events[sessionID] = kept
	return removed, nil
}

// LastSeq returns the highest sequence number ever assigned.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[sessionID], nil
}

// PutSession stores or replaces a session record.
func (s *Store) PutSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

// GetSession returns a session record by id.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, storage.ErrNotFound
	}
	return sess, nil
}

// ListSessions returns every session ordered by id.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteSession removes a session and its journal, counters included.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.events, id)
	delete(s.seqs, id)
	delete(s.combats, id)
	return nil
}

// PutCombat stores or replaces an encounter document keyed by session
// and started sequence.
func (s *Store) PutCombat(ctx context.Context, rec storage.CombatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.combats[rec.SessionID]
	for i := range recs {
		if recs[i].StartedSeq == rec.StartedSeq {
			recs[i] = rec
			return nil
		}
	}
	recs = append(recs, rec)
	sort.Slice(recs, func(i, j int) bool { return recs[i].StartedSeq < recs[j].StartedSeq })
	s.combats[rec.SessionID] = recs
	return nil
}

// GetLatestCombat returns the encounter with the highest StartedSeq not
// exceeding maxStartedSeq. Zero means no upper bound.
func (s *Store) GetLatestCombat(ctx context.Context, sessionID string, maxStartedSeq uint64) (storage.CombatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.combats[sessionID]
	for i := len(recs) - 1; i >= 0; i-- {
		if maxStartedSeq == 0 || recs[i].StartedSeq <= maxStartedSeq {
			return recs[i], nil
		}
	}
	return storage.CombatRecord{}, storage.ErrNotFound
}

// DeleteCombatsStartedAfter removes encounters started after seq.
func (s *Store) DeleteCombatsStartedAfter(ctx context.Context, sessionID string, seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.combats[sessionID]
	kept := recs[:0]
	for _, rec := range recs {
		if rec.StartedSeq > seq {
			continue
		}
		kept = append(kept, rec)
	}
	s.combats[sessionID] = kept
	return nil
}
