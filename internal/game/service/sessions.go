package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/platform/id"
)

// CreateSession provisions a new session with a fresh roll seed.
func (s *Service) CreateSession(ctx context.Context, name string) (domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateSession")
	defer span.End()

	sessionID, err := id.NewID()
	if err != nil {
		return domain.Session{}, errors.Wrap(errors.CodeUnknown, "generate session id", err)
	}
	now := time.Now().UTC()
	session := domain.Session{
		ID:        sessionID,
		Name:      name,
		Seed:      rand.Int63(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateSession(session); err != nil {
		return domain.Session{}, errors.Wrap(errors.CodeSessionEmptyID, "invalid session", err)
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// GetSession loads a session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, errors.New(errors.CodeSessionEmptyID, "session id is required")
	}
	return s.store.GetSession(ctx, sessionID)
}

// ListSessions returns all known sessions.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.store.ListSessions(ctx)
}

// DeleteSession removes a session together with its journal, counters,
// and combat records. A session with a turn in flight is not deleted.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "service.DeleteSession")
	defer span.End()

	if sessionID == "" {
		return errors.New(errors.CodeSessionEmptyID, "session id is required")
	}
	if s.turnInFlight(sessionID) {
		return errors.New(errors.CodeTurnInFlight, "cannot delete a session with a turn in flight")
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	s.forget(sessionID)
	return nil
}
