package service

import (
	"context"

	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/timeline"
)

// GetHistory returns the session's events with fromSeq < seq <= toSeq.
// A fromSeq of zero reads from the start of the journal; a toSeq of
// zero reads through its end.
func (s *Service) GetHistory(ctx context.Context, sessionID string, fromSeq, toSeq uint64) ([]event.Event, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.timeline.Read(ctx, sessionID, fromSeq, toSeq)
}

// GetRestorePoints lists the sequences the session can be rolled back
// to, one per player-input event.
func (s *Service) GetRestorePoints(ctx context.Context, sessionID string) ([]timeline.RestorePoint, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.timeline.RestorePoints(ctx, sessionID)
}

// RestoreHistory rolls the session back so targetSeq is the newest
// retained event. Rollback is rejected while a turn is in flight.
func (s *Service) RestoreHistory(ctx context.Context, sessionID string, targetSeq uint64) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "service.RestoreHistory")
	defer span.End()

	if s.turnInFlight(sessionID) {
		return 0, errors.New(errors.CodeRollbackDuringTurn, "cannot roll back while a turn is in flight")
	}

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}
	return s.timeline.RollbackTo(ctx, sessionID, targetSeq)
}

// GetInventory returns the session's derived inventory.
func (s *Service) GetInventory(ctx context.Context, sessionID string) (map[string]int, int, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, 0, err
	}
	inv, err := s.timeline.Inventory(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	return inv.Items, inv.Currency, nil
}
