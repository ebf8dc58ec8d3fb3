package projection

import (
	"context"
	"fmt"
	"strings"

	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/storage"
)

const replayPageSize = 200

// ReplayOptions configures event replay behavior.
type ReplayOptions struct {
	AfterSeq uint64
	UntilSeq uint64
	Filter   func(event.Event) bool
}

// ReplaySession replays the session's full journal and applies projections
// in order, returning the last sequence observed.
func ReplaySession(ctx context.Context, eventStore storage.EventStore, applier Applier, sessionID string) (uint64, error) {
	return ReplaySessionWith(ctx, eventStore, applier, sessionID, ReplayOptions{})
}

// ReplaySessionWith replays events with additional filtering and bounds.
func ReplaySessionWith(ctx context.Context, eventStore storage.EventStore, applier Applier, sessionID string, options ReplayOptions) (uint64, error) {
	if eventStore == nil {
		return 0, fmt.Errorf("event store is not configured")
	}
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("session id is required")
	}

	lastSeq := options.AfterSeq
	for {
		events, err := eventStore.ListEvents(ctx, sessionID, lastSeq, replayPageSize)
		if err != nil {
			return lastSeq, err
		}
		if len(events) == 0 {
			return lastSeq, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return lastSeq, nil
			}
			lastSeq = evt.Seq
			if options.Filter != nil && !options.Filter(evt) {
				continue
			}
			if err := applier.Apply(ctx, evt); err != nil {
				return lastSeq, err
			}
		}
	}
}
