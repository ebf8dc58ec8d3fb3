// Package projection rebuilds derived session state by replaying the
// event journal. After a rollback the retained prefix is the only source
// of truth; everything here is recomputable from it.
package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fablestack/engine/internal/game/combat"
	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
)

// State is the derived session state a replay produces: the inventory and,
// when an encounter snapshot was seeded, the combat state.
type State struct {
	Inventory *domain.Inventory
	// Combat is nil unless SeedCombat installed an encounter snapshot;
	// combat events replayed without a snapshot are ignored.
	Combat *domain.CombatState
}

// NewState returns derived state with an empty inventory.
func NewState() *State {
	return &State{Inventory: domain.NewInventory()}
}

// SeedCombat installs the encounter snapshot that subsequent combat
// events mutate.
func (s *State) SeedCombat(cs *domain.CombatState) {
	s.Combat = cs
}

// Applier applies journal entries to derived state.
type Applier struct {
	State *State
}

// Apply applies one event. Inventory payloads carry resulting totals, so
// application is idempotent; prose and input events are no-ops.
func (a Applier) Apply(ctx context.Context, evt event.Event) error {
	if a.State == nil {
		return fmt.Errorf("derived state is not configured")
	}
	switch evt.Kind {
	case event.KindItemAdded:
		return a.applyItemTotal(evt)
	case event.KindItemRemoved:
		return a.applyItemTotal(evt)
	case event.KindCurrencyChange:
		return a.applyCurrencyChange(evt)
	case event.KindCombatDamage:
		return a.applyCombatDamage(evt)
	case event.KindCombatTurn:
		return a.applyCombatTurn(evt)
	default:
		return nil
	}
}

func (a Applier) applyItemTotal(evt event.Event) error {
	var payload event.ItemAddedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Kind, err)
	}
	if payload.ItemID == "" {
		return fmt.Errorf("%s event %d has no item id", evt.Kind, evt.Seq)
	}
	if payload.Total <= 0 {
		delete(a.State.Inventory.Items, payload.ItemID)
		return nil
	}
	a.State.Inventory.Items[payload.ItemID] = payload.Total
	return nil
}

func (a Applier) applyCurrencyChange(evt event.Event) error {
	var payload event.CurrencyChangePayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("decode currency-change payload: %w", err)
	}
	a.State.Inventory.Currency = payload.Balance
	return nil
}

func (a Applier) applyCombatDamage(evt event.Event) error {
	if a.State.Combat == nil {
		return nil
	}
	var payload event.CombatDamagePayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("decode combat-damage payload: %w", err)
	}
	target, ok := a.State.Combat.Combatants[payload.TargetID]
	if !ok {
		return fmt.Errorf("combat-damage event %d targets unknown combatant %q", evt.Seq, payload.TargetID)
	}
	target.CurrentHP = payload.HPAfter
	if payload.Down || payload.HPAfter == 0 {
		target.Status = domain.StatusDown
	}
	return nil
}

func (a Applier) applyCombatTurn(evt event.Event) error {
	if a.State.Combat == nil {
		return nil
	}
	var payload event.CombatTurnPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("decode combat-turn payload: %w", err)
	}
	cs := a.State.Combat

	switch payload.Transition {
	case combat.TransitionCombatStarted:
		// the seeded snapshot already reflects encounter start
		return nil
	case combat.TransitionTurnAdvanced, combat.TransitionRoundAdvanced:
		cs.RoundNumber = payload.RoundNumber
		cs.Phase = domain.PhaseAwaitingAction
		for i, id := range cs.TurnOrder {
			if id == payload.ActiveID {
				cs.ActiveIndex = i
				return nil
			}
		}
		return fmt.Errorf("combat-turn event %d names unknown active combatant %q", evt.Seq, payload.ActiveID)
	case combat.TransitionCombatantFled:
		c, ok := cs.Combatants[payload.CombatantID]
		if !ok {
			return fmt.Errorf("combat-turn event %d names unknown combatant %q", evt.Seq, payload.CombatantID)
		}
		c.Status = domain.StatusFled
		return nil
	case combat.TransitionCombatConcluded:
		cs.Phase = domain.PhaseConcluded
		cs.Outcome = domain.Outcome(payload.Outcome)
		return nil
	default:
		return fmt.Errorf("combat-turn event %d has unknown transition %q", evt.Seq, payload.Transition)
	}
}
