package service

import (
	"context"

	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/game/skill"
)

// PerformSkillCheck resolves a skill check against the session's roll
// source and commits exactly one skill-check event.
func (s *Service) PerformSkillCheck(ctx context.Context, sessionID, characterID string, req skill.Request) (skill.Result, event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "service.PerformSkillCheck")
	defer span.End()

	lock := s.opLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return skill.Result{}, event.Event{}, err
	}
	result, err := skill.Resolve(s.rngFor(sessionID, session.Seed), req)
	if err != nil {
		return skill.Result{}, event.Event{}, err
	}
	evt, err := event.New(sessionID, event.KindSkillCheck, event.SkillCheckPayload{
		CharacterID: characterID,
		SkillName:   req.SkillName,
		StatName:    req.StatName,
		Difficulty:  string(req.Difficulty),
		Target:      result.Target,
		Roll:        result.Roll,
		Success:     result.Success,
		Margin:      result.Margin,
	})
	if err != nil {
		return skill.Result{}, event.Event{}, err
	}
	stored, err := s.timeline.Append(ctx, evt)
	if err != nil {
		return skill.Result{}, event.Event{}, err
	}
	return result, stored, nil
}
