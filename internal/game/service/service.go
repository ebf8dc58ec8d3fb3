// Package service implements the engine's boundary operations: session
// lifecycle, combat and skill resolution, inventory mutation, history
// and rollback, and the turn streaming flow.
//
// Mechanical truth is computed and committed to the timeline before any
// narration for the same turn is accepted.
package service

import (
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fablestack/engine/internal/core/dice"
	"github.com/fablestack/engine/internal/game/combat"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/storage"
	"github.com/fablestack/engine/internal/timeline"
)

const tracerName = "github.com/fablestack/engine/internal/game/service"

// DefaultNarrationTimeout bounds how long a turn waits for the narrator
// before recording a narration-unavailable system log.
const DefaultNarrationTimeout = 30 * time.Second

// Service exposes the engine's boundary operations over a Store.
type Service struct {
	store    storage.Store
	timeline *timeline.Timeline
	narrator Narrator
	resolver IntentResolver

	narrationTimeout time.Duration
	frameBuffer      int
	roller           func() int
	tracer           trace.Tracer

	mu      sync.Mutex
	inTurn  map[string]bool
	opLocks map[string]*sync.Mutex
	rngs    map[string]*rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithNarrator sets the narration collaborator used by StreamTurn.
func WithNarrator(n Narrator) Option {
	return func(s *Service) { s.narrator = n }
}

// WithIntentResolver sets the intent resolution collaborator used by
// StreamTurn to turn player input into mechanical operations.
func WithIntentResolver(r IntentResolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithNarrationTimeout overrides the narration phase timeout.
func WithNarrationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.narrationTimeout = d
		}
	}
}

// WithFrameBuffer overrides the outbound frame buffer per turn.
func WithFrameBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.frameBuffer = n
		}
	}
}

// WithRoller replaces the per-session d20 source, making combat
// resolution deterministic.
func WithRoller(roll func() int) Option {
	return func(s *Service) { s.roller = roll }
}

// New creates a Service over the given store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		timeline:         timeline.New(store, store),
		narrationTimeout: DefaultNarrationTimeout,
		frameBuffer:      0,
		tracer:           otel.Tracer(tracerName),
		inTurn:           make(map[string]bool),
		opLocks:          make(map[string]*sync.Mutex),
		rngs:             make(map[string]*rand.Rand),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Timeline returns the timeline view shared with the service.
func (s *Service) Timeline() *timeline.Timeline {
	return s.timeline
}

// beginTurn marks the session's turn-resolution flow as in flight.
// A second concurrent turn on the same session is rejected.
func (s *Service) beginTurn(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTurn[sessionID] {
		return errors.New(errors.CodeTurnInFlight, "a turn is already in flight for this session")
	}
	s.inTurn[sessionID] = true
	return nil
}

func (s *Service) endTurn(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inTurn, sessionID)
}

func (s *Service) turnInFlight(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTurn[sessionID]
}

// opLock serializes mechanical mutations on one session. Distinct
// sessions proceed in parallel.
func (s *Service) opLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.opLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.opLocks[sessionID] = lock
	}
	return lock
}

// rngFor returns the session's seeded roll source.
func (s *Service) rngFor(sessionID string, seed int64) *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	rng, ok := s.rngs[sessionID]
	if !ok {
		rng = dice.NewRng(seed)
		s.rngs[sessionID] = rng
	}
	return rng
}

// engineFor builds a combat engine drawing from the session's rolls.
func (s *Service) engineFor(sessionID string, seed int64) *combat.Engine {
	if s.roller != nil {
		return combat.NewEngineWithRoller(s.roller)
	}
	return combat.NewEngine(s.rngFor(sessionID, seed))
}

// forget drops per-session runtime state after a session is deleted.
func (s *Service) forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inTurn, sessionID)
	delete(s.opLocks, sessionID)
	delete(s.rngs, sessionID)
}
