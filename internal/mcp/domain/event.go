package domain

import (
	"encoding/json"
	"time"

	"github.com/fablestack/engine/internal/game/event"
)

// EventEntry is the wire form of one journal event.
type EventEntry struct {
	Seq       uint64          `json:"seq" jsonschema:"monotonic sequence number within the session"`
	Kind      string          `json:"kind" jsonschema:"event kind"`
	Icon      string          `json:"icon" jsonschema:"display icon for the event kind"`
	Timestamp string          `json:"timestamp" jsonschema:"RFC3339 timestamp"`
	Payload   json.RawMessage `json:"payload" jsonschema:"kind-specific event payload"`
}

func eventEntry(evt event.Event) EventEntry {
	return EventEntry{
		Seq:       evt.Seq,
		Kind:      string(evt.Kind),
		Icon:      evt.Icon,
		Timestamp: evt.Timestamp.UTC().Format(time.RFC3339),
		Payload:   json.RawMessage(evt.PayloadJSON),
	}
}

func eventEntries(events []event.Event) []EventEntry {
	entries := make([]EventEntry, 0, len(events))
	for _, evt := range events {
		entries = append(entries, eventEntry(evt))
	}
	return entries
}
