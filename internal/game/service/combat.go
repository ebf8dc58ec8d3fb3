package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fablestack/engine/internal/game/combat"
	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/platform/errors"
	"github.com/fablestack/engine/internal/storage"
)

// BeginCombat starts a new encounter for the session. It is rejected
// while an encounter is already in progress.
func (s *Service) BeginCombat(ctx context.Context, sessionID string, roster []domain.Combatant) (*domain.CombatState, []event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.BeginCombat")
	defer span.End()

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if rec, err := s.store.GetLatestCombat(ctx, sessionID, 0); err == nil {
		prev, derr := decodeCombatState(rec.StateJSON)
		if derr != nil {
			return nil, nil, derr
		}
		if prev.InProgress() {
			return nil, nil, errors.New(errors.CodeCombatAlreadyActive, "an encounter is already in progress")
		}
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return nil, nil, err
	}

	engine := s.engineFor(sessionID, session.Seed)
	state, events, err := engine.Begin(sessionID, roster)
	if err != nil {
		return nil, nil, err
	}
	appended, err := s.appendAll(ctx, events)
	if err != nil {
		return nil, nil, err
	}

	// The opening event's sequence anchors the encounter's snapshot so
	// rollback can rebuild the state from it.
	startedSeq := appended[0].Seq
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeUnknown, "encode combat state", err)
	}
	rec := storage.CombatRecord{
		SessionID:   sessionID,
		StartedSeq:  startedSeq,
		InitialJSON: stateJSON,
		StateJSON:   stateJSON,
		Phase:       state.Phase,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.PutCombat(ctx, rec); err != nil {
		return nil, nil, err
	}
	return state, appended, nil
}

// PerformAttack resolves one attack by the active combatant and
// commits the resulting events and state.
func (s *Service) PerformAttack(ctx context.Context, sessionID, actorID, targetID string, weapon domain.Weapon) (combat.AttackResult, *domain.CombatState, []event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.PerformAttack")
	defer span.End()

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return combat.AttackResult{}, nil, nil, err
	}
	state, rec, err := s.loadActiveCombat(ctx, sessionID)
	if err != nil {
		return combat.AttackResult{}, nil, nil, err
	}
	engine := s.engineFor(sessionID, session.Seed)
	result, events, err := engine.Attack(state, actorID, targetID, weapon)
	if err != nil {
		return combat.AttackResult{}, nil, nil, err
	}
	appended, err := s.appendAll(ctx, events)
	if err != nil {
		return combat.AttackResult{}, nil, nil, err
	}
	if err := s.persistCombat(ctx, rec, state); err != nil {
		return combat.AttackResult{}, nil, nil, err
	}
	return result, state, appended, nil
}

// PerformFlee marks the active combatant as fled and advances the turn.
func (s *Service) PerformFlee(ctx context.Context, sessionID, actorID string) (*domain.CombatState, []event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.PerformFlee")
	defer span.End()

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	state, rec, err := s.loadActiveCombat(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	engine := s.engineFor(sessionID, session.Seed)
	events, err := engine.Flee(state, actorID)
	if err != nil {
		return nil, nil, err
	}
	appended, err := s.appendAll(ctx, events)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persistCombat(ctx, rec, state); err != nil {
		return nil, nil, err
	}
	return state, appended, nil
}

// GetCombatState returns the session's most recent encounter state.
func (s *Service) GetCombatState(ctx context.Context, sessionID string) (*domain.CombatState, error) {
	if sessionID == "" {
		return nil, errors.New(errors.CodeSessionEmptyID, "session id is required")
	}
	rec, err := s.store.GetLatestCombat(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}
	return decodeCombatState(rec.StateJSON)
}

func (s *Service) loadActiveCombat(ctx context.Context, sessionID string) (*domain.CombatState, storage.CombatRecord, error) {
	rec, err := s.store.GetLatestCombat(ctx, sessionID, 0)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, storage.CombatRecord{}, errors.New(errors.CodeCombatNotActive, "no encounter in progress")
		}
		return nil, storage.CombatRecord{}, err
	}
	state, err := decodeCombatState(rec.StateJSON)
	if err != nil {
		return nil, storage.CombatRecord{}, err
	}
	if !state.InProgress() {
		return nil, storage.CombatRecord{}, errors.New(errors.CodeCombatNotActive, "no encounter in progress")
	}
	return state, rec, nil
}

func (s *Service) persistCombat(ctx context.Context, rec storage.CombatRecord, state *domain.CombatState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(errors.CodeUnknown, "encode combat state", err)
	}
	rec.StateJSON = stateJSON
	rec.Phase = state.Phase
	rec.UpdatedAt = time.Now().UTC()
	return s.store.PutCombat(ctx, rec)
}

// appendAll commits one action's events as a single atomic batch, so a
// storage failure never leaves a partial action in the journal.
func (s *Service) appendAll(ctx context.Context, events []event.Event) ([]event.Event, error) {
	return s.timeline.AppendAll(ctx, events)
}

func decodeCombatState(raw []byte) (*domain.CombatState, error) {
	var state domain.CombatState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "decode combat state", err)
	}
	return &state, nil
}
