package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// New builds an unsequenced event for the session with the payload
// marshaled to JSON and a default display icon. Storage assigns Seq on
// append.
func New(sessionID string, kind Kind, payload any) (Event, error) {
	if !kind.IsValid() {
		return Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Event{
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC(),
		Kind:        kind,
		Icon:        DefaultIcon(kind),
		PayloadJSON: data,
	}, nil
}

// DefaultIcon returns the display hint clients render for the kind.
func DefaultIcon(k Kind) string {
	switch k {
	case KindUserInput:
		return "quote"
	case KindSystemLog:
		return "gear"
	case KindNarrativeChunk:
		return "scroll"
	case KindChoiceOffered:
		return "signpost"
	case KindSkillCheck:
		return "dice"
	case KindCombatAttack:
		return "sword"
	case KindCombatDamage:
		return "burst"
	case KindCombatTurn:
		return "hourglass"
	case KindItemAdded, KindItemRemoved:
		return "bag"
	case KindCurrencyChange:
		return "coin"
	}
	return ""
}
