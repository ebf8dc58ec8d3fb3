package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCombatantID indicates a combatant has no identifier.
	ErrInvalidCombatantID = errors.New("combatant id must not be empty")
	// ErrInvalidSide indicates an unknown combat side.
	ErrInvalidSide = errors.New("invalid combat side")
	// ErrInvalidHP indicates hit points outside the valid range.
	ErrInvalidHP = errors.New("hp must be in range 0..max")
)

// Side identifies which faction a combatant fights for.
type Side string

const (
	// SidePlayer is the player character's side.
	SidePlayer Side = "player"
	// SideAlly fights alongside the player.
	SideAlly Side = "ally"
	// SideEnemy opposes the player.
	SideEnemy Side = "enemy"
)

// IsValid reports whether the side is one of the known factions.
func (s Side) IsValid() bool {
	switch s {
	case SidePlayer, SideAlly, SideEnemy:
		return true
	}
	return false
}

// Opposes reports whether two sides are hostile to each other.
// Player and ally stand together against enemy.
func (s Side) Opposes(other Side) bool {
	return (s == SideEnemy) != (other == SideEnemy)
}

// Status tracks a combatant's participation in the encounter.
type Status string

const (
	// StatusAlive means the combatant acts in turn order.
	StatusAlive Status = "alive"
	// StatusDown means the combatant reached 0 HP and no longer acts.
	StatusDown Status = "down"
	// StatusFled means the combatant left the encounter voluntarily.
	StatusFled Status = "fled"
)

// Combatant is a single participant in a combat encounter. It is owned
// exclusively by the CombatState that contains it.
type Combatant struct {
	ID          string
	DisplayName string
	Side        Side

	CurrentHP int
	MaxHP     int
	CurrentMP int
	MaxMP     int

	ArmorClass int
	// AttackBonus is the proficiency bonus added to every attack roll.
	AttackBonus int

	StrengthMod  int
	DexterityMod int
	WisdomMod    int

	InitiativeScore int
	Status          Status
}

// Initiative computes the deterministic initiative score:
// dexterity modifier plus half the wisdom modifier, rounded down.
func Initiative(dexterityMod, wisdomMod int) int {
	return dexterityMod + floorDiv(wisdomMod, 2)
}

// AttackAbilityMod returns the ability modifier an attack uses:
// strength for melee, dexterity for ranged.
func (c Combatant) AttackAbilityMod(ranged bool) int {
	if ranged {
		return c.DexterityMod
	}
	return c.StrengthMod
}

// ApplyDamage subtracts damage from current HP, flooring at 0. A combatant
// reduced to 0 HP is marked down. Returns the HP before and after.
func (c *Combatant) ApplyDamage(amount int) (before, after int) {
	before = c.CurrentHP
	after = before - amount
	if after < 0 {
		after = 0
	}
	c.CurrentHP = after
	if c.CurrentHP == 0 {
		c.Status = StatusDown
	}
	return before, after
}

// ValidateCombatant validates roster invariants before an encounter begins.
func ValidateCombatant(c Combatant) error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCombatantID
	}
	if !c.Side.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, c.Side)
	}
	if c.MaxHP <= 0 || c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
		return fmt.Errorf("%w: combatant %s has hp %d/%d", ErrInvalidHP, c.ID, c.CurrentHP, c.MaxHP)
	}
	return nil
}

// floorDiv divides and rounds toward negative infinity, so negative
// modifiers halve the way the rules expect.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
