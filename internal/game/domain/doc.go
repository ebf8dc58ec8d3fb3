// Package domain defines the core entities of a play session.
//
// # Session
//
// A Session is one player's ongoing playthrough. It owns exactly one
// timeline of events and at most one active combat encounter.
//
// # Combat
//
// CombatState is the full state of a combat encounter: a fixed turn
// order, a round counter, the active combatant index, and the phase
// state machine. Combatants are owned exclusively by the CombatState
// that contains them; concluded encounters are archived, not deleted.
//
// # Inventory
//
// Inventory tracks a session's item quantities and currency balance.
// Both are invariantly non-negative; mutations that would break that
// are rejected without partial effect.
package domain
