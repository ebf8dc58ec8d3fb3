package event

import "time"

// Kind identifies the kind of a timeline event.
type Kind string

// Player and system events.
const (
	// KindUserInput records a raw player action or utterance.
	KindUserInput Kind = "user-input"
	// KindSystemLog records an operational notice shown to the player.
	KindSystemLog Kind = "system-log"
	// KindNarrativeChunk records a block of narration text.
	KindNarrativeChunk Kind = "narrative-chunk"
	// KindChoiceOffered records a set of choices presented to the player.
	KindChoiceOffered Kind = "choice-offered"
)

// Mechanics events.
const (
	// KindSkillCheck records a resolved skill check.
	KindSkillCheck Kind = "skill-check"
	// KindCombatAttack records a resolved attack roll.
	KindCombatAttack Kind = "combat-attack"
	// KindCombatDamage records damage applied to a combatant.
	KindCombatDamage Kind = "combat-damage"
	// KindCombatTurn records a turn or round transition.
	KindCombatTurn Kind = "combat-turn"
)

// Resource events.
const (
	// KindItemAdded records items entering an inventory.
	KindItemAdded Kind = "item-added"
	// KindItemRemoved records items leaving an inventory.
	KindItemRemoved Kind = "item-removed"
	// KindCurrencyChange records a currency balance change.
	KindCurrencyChange Kind = "currency-change"
)

// Event represents an immutable entry in a session's timeline journal.
type Event struct {
	// SessionID is the session this event belongs to.
	SessionID string
	// Seq is the event sequence number within the session (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Kind identifies the kind of event.
	Kind Kind
	// Icon is an optional display hint for clients.
	Icon string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the kind is one of the closed set of event kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindUserInput, KindSystemLog, KindNarrativeChunk, KindChoiceOffered,
		KindSkillCheck, KindCombatAttack, KindCombatDamage, KindCombatTurn,
		KindItemAdded, KindItemRemoved, KindCurrencyChange:
		return true
	}
	return false
}

// IsMechanical reports whether the kind records a rules resolution rather
// than prose or player input.
func (k Kind) IsMechanical() bool {
	switch k {
	case KindSkillCheck, KindCombatAttack, KindCombatDamage, KindCombatTurn,
		KindItemAdded, KindItemRemoved, KindCurrencyChange:
		return true
	}
	return false
}
