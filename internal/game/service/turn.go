package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/game/stream"
	"github.com/fablestack/engine/internal/platform/errors"
)

// Narrator streams prose for a committed turn. Implementations call
// emit once per token; emit filters control tags before the token
// reaches the consumer. Returning an error, or exceeding the narration
// deadline, records a narration-unavailable log without invalidating
// the turn's mechanics.
type Narrator interface {
	Narrate(ctx context.Context, sessionID, playerInput string, mechanics []event.Event, emit func(ctx context.Context, token string) error) error
}

// IntentResolver maps player input to mechanical operations. It runs
// with the turn already in flight and calls back into the service's
// operations, which commit their events atomically. The returned slice
// is the ordered list of committed events for the turn.
type IntentResolver interface {
	ResolveIntent(ctx context.Context, sessionID, playerInput string) ([]event.Event, error)
}

// StreamTurn runs one full turn for the session: the player's input is
// journaled, intent resolution commits the turn's mechanical events,
// and only then narration streams. Frames arrive on the returned
// channel in order; the channel closes after the end-of-turn marker.
//
// Cancelling ctx abandons delivery of remaining frames but never the
// committed mechanics.
func (s *Service) StreamTurn(ctx context.Context, sessionID, playerInput string) (<-chan stream.Frame, error) {
	ctx, span := s.tracer.Start(ctx, "service.StreamTurn")

	if strings.TrimSpace(playerInput) == "" {
		span.End()
		return nil, errors.New(errors.CodeTurnEmptyInput, "player input is required")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		span.End()
		return nil, err
	}
	if err := s.beginTurn(sessionID); err != nil {
		span.End()
		return nil, err
	}

	coord := stream.NewCoordinator(s.frameBuffer)
	go func() {
		defer span.End()
		defer s.endTurn(sessionID)
		s.runTurn(ctx, coord, sessionID, playerInput)
	}()
	return coord.Frames(), nil
}

func (s *Service) runTurn(ctx context.Context, coord *stream.Coordinator, sessionID, playerInput string) {
	defer coord.Close(ctx)

	input, err := s.recordUserInput(ctx, sessionID, playerInput)
	if err != nil {
		coord.EmitError(ctx, err)
		return
	}
	if err := coord.EmitEvent(ctx, input); err != nil {
		return
	}

	// Mechanics commit before any narration is accepted. A failed
	// resolution leaves only the player's input on the timeline; the
	// error frame tells the consumer the turn had no mechanical effect.
	var mechanics []event.Event
	if s.resolver != nil {
		mechanics, err = s.resolver.ResolveIntent(ctx, sessionID, playerInput)
		if err != nil {
			coord.EmitError(ctx, err)
			return
		}
		for _, evt := range mechanics {
			if err := coord.EmitEvent(ctx, evt); err != nil {
				return
			}
		}
	}

	if s.narrator == nil {
		return
	}
	if err := s.narrate(ctx, coord, sessionID, playerInput, mechanics); err != nil {
		if ctx.Err() != nil {
			// Consumer is gone. Mechanics are already committed, so
			// there is nothing to unwind.
			return
		}
		logEvt, logErr := s.recordNarrationUnavailable(ctx, sessionID, err)
		if logErr == nil {
			coord.EmitEvent(ctx, logEvt)
		}
		coord.EmitError(ctx, errors.Wrap(errors.CodeNarrationUnavailable, "narration unavailable", err))
	}
}

// narrate runs the narrator under the narration deadline, flushes the
// tag filter and journals the completed narration.
func (s *Service) narrate(ctx context.Context, coord *stream.Coordinator, sessionID, playerInput string, mechanics []event.Event) error {
	nctx, cancel := context.WithTimeout(ctx, s.narrationTimeout)
	defer cancel()

	nctx, span := s.tracer.Start(nctx, "service.narrate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if err := s.narrator.Narrate(nctx, sessionID, playerInput, mechanics, coord.WriteToken); err != nil {
		return err
	}
	if err := coord.FlushNarration(ctx); err != nil {
		return err
	}
	narration := coord.Narration()
	if narration == "" {
		return nil
	}
	evt, err := event.New(sessionID, event.KindNarrativeChunk, event.NarrativeChunkPayload{
		Text:    narration,
		Speaker: coord.Speaker(),
	})
	if err != nil {
		return err
	}
	stored, err := s.timeline.Append(ctx, evt)
	if err != nil {
		return err
	}
	return coord.EmitEvent(ctx, stored)
}

func (s *Service) recordUserInput(ctx context.Context, sessionID, text string) (event.Event, error) {
	evt, err := event.New(sessionID, event.KindUserInput, event.UserInputPayload{Text: text})
	if err != nil {
		return event.Event{}, err
	}
	return s.timeline.Append(ctx, evt)
}

func (s *Service) recordNarrationUnavailable(ctx context.Context, sessionID string, cause error) (event.Event, error) {
	evt, err := event.New(sessionID, event.KindSystemLog, event.SystemLogPayload{
		Message: "narration unavailable: " + cause.Error(),
		Level:   "warn",
	})
	if err != nil {
		return event.Event{}, err
	}
	return s.timeline.Append(ctx, evt)
}
