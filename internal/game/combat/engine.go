// Package combat implements the combat state machine: initiative,
// turn sequencing, attack resolution and encounter life cycle.
package combat

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/fablestack/engine/internal/core/check"
	"github.com/fablestack/engine/internal/core/dice"
	"github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/platform/errors"
)

// Turn transition labels recorded in combat-turn payloads.
const (
	TransitionCombatStarted   = "combat-started"
	TransitionTurnAdvanced    = "turn-advanced"
	TransitionRoundAdvanced   = "round-advanced"
	TransitionCombatantFled   = "combatant-fled"
	TransitionCombatConcluded = "combat-concluded"
)

// Engine resolves combat actions against a CombatState. Every mutation
// produces exactly one event per attack, damage application and turn
// boundary; a failed action leaves the state untouched.
type Engine struct {
	d20 func() int
}

// NewEngine creates an engine drawing attack rolls from the seeded source.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{d20: func() int { return dice.D20(rng) }}
}

// NewEngineWithRoller creates an engine using a custom d20 source,
// for deterministic resolution in tests.
func NewEngineWithRoller(roll func() int) *Engine {
	return &Engine{d20: roll}
}

// Begin starts an encounter from a roster. Turn order is the descending
// initiative sort, ties broken by higher dexterity modifier and then by
// roster order, so recomputation always reproduces the same order.
func (e *Engine) Begin(sessionID string, roster []domain.Combatant) (*domain.CombatState, []event.Event, error) {
	if len(roster) == 0 {
		return nil, nil, errors.New(errors.CodeCombatEmptyRoster, "combat roster must not be empty")
	}

	combatants := make(map[string]*domain.Combatant, len(roster))
	order := make([]string, 0, len(roster))
	for i := range roster {
		c := roster[i]
		if err := domain.ValidateCombatant(c); err != nil {
			return nil, nil, errors.Wrap(errors.CodeCombatInvalidCombatant, err.Error(), err)
		}
		if _, exists := combatants[c.ID]; exists {
			return nil, nil, errors.New(errors.CodeCombatInvalidCombatant,
				fmt.Sprintf("duplicate combatant id %q", c.ID))
		}
		if c.Status == "" {
			c.Status = domain.StatusAlive
		}
		c.InitiativeScore = domain.Initiative(c.DexterityMod, c.WisdomMod)
		combatants[c.ID] = &c
		order = append(order, c.ID)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := combatants[order[i]], combatants[order[j]]
		if a.InitiativeScore != b.InitiativeScore {
			return a.InitiativeScore > b.InitiativeScore
		}
		return a.DexterityMod > b.DexterityMod
	})

	state := &domain.CombatState{
		SessionID:   sessionID,
		RoundNumber: 1,
		TurnOrder:   order,
		ActiveIndex: 0,
		Combatants:  combatants,
		Phase:       domain.PhaseAwaitingAction,
	}

	started, err := event.New(sessionID, event.KindCombatTurn, event.CombatTurnPayload{
		Transition:  TransitionCombatStarted,
		RoundNumber: state.RoundNumber,
		ActiveID:    state.ActiveID(),
		TurnOrder:   append([]string(nil), order...),
	})
	if err != nil {
		return nil, nil, err
	}

	return state, []event.Event{started}, nil
}

// AttackResult captures everything a resolved attack produced.
type AttackResult struct {
	Hit          bool
	CriticalHit  bool
	CriticalMiss bool
	AttackRoll   int
	AttackTotal  int
	Damage       int
	TargetDown   bool
}

// Attack resolves one attack by the active combatant. On success the
// returned events hold the attack, any damage, and the turn boundary
// that follows, in that order. Rejections leave the state unchanged.
func (e *Engine) Attack(state *domain.CombatState, actorID, targetID string, weapon domain.Weapon) (AttackResult, []event.Event, error) {
	actor, err := guardAction(state, actorID)
	if err != nil {
		return AttackResult{}, nil, err
	}
	target, ok := state.Combatants[targetID]
	if !ok {
		return AttackResult{}, nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("combatant %q not found", targetID))
	}
	if err := domain.ValidateWeapon(weapon); err != nil {
		return AttackResult{}, nil, errors.Wrap(errors.CodeCombatInvalidWeapon, err.Error(), err)
	}

	state.Phase = domain.PhaseResolvingAction

	raw := e.d20()
	abilityMod := actor.AttackAbilityMod(weapon.Ranged)
	total := raw + abilityMod + actor.AttackBonus

	result := AttackResult{
		AttackRoll:  raw,
		AttackTotal: total,
	}
	switch {
	case raw == 20:
		result.Hit = true
		result.CriticalHit = true
	case raw == 1:
		result.CriticalMiss = true
	default:
		result.Hit = check.MeetsDifficulty(total, target.ArmorClass)
	}

	events := make([]event.Event, 0, 3)

	attackEvt, err := event.New(state.SessionID, event.KindCombatAttack, event.CombatAttackPayload{
		AttackerID:   actor.ID,
		DefenderID:   target.ID,
		WeaponName:   weapon.Name,
		AttackRoll:   raw,
		AttackBonus:  abilityMod + actor.AttackBonus,
		AttackTotal:  total,
		DefenderAC:   target.ArmorClass,
		Hit:          result.Hit,
		CriticalHit:  result.CriticalHit,
		CriticalMiss: result.CriticalMiss,
	})
	if err != nil {
		state.Phase = domain.PhaseAwaitingAction
		return AttackResult{}, nil, err
	}
	events = append(events, attackEvt)

	if result.Hit {
		damage := weapon.BaseDamage
		if !weapon.Ranged {
			damage += actor.StrengthMod
		}
		if damage < 0 {
			damage = 0
		}
		if result.CriticalHit {
			damage *= 2
		}
		before, after := target.ApplyDamage(damage)
		result.Damage = damage
		result.TargetDown = target.Status == domain.StatusDown

		damageEvt, err := event.New(state.SessionID, event.KindCombatDamage, event.CombatDamagePayload{
			AttackerID: actor.ID,
			TargetID:   target.ID,
			Amount:     damage,
			HPBefore:   before,
			HPAfter:    after,
			Down:       result.TargetDown,
		})
		if err != nil {
			return AttackResult{}, nil, err
		}
		events = append(events, damageEvt)
	}

	turnEvt, err := e.advance(state)
	if err != nil {
		return AttackResult{}, nil, err
	}
	events = append(events, turnEvt)

	return result, events, nil
}

// Flee removes the active combatant from the encounter without affecting
// outcome resolution for the others, then advances the turn.
func (e *Engine) Flee(state *domain.CombatState, actorID string) ([]event.Event, error) {
	actor, err := guardAction(state, actorID)
	if err != nil {
		return nil, err
	}

	state.Phase = domain.PhaseResolvingAction
	actor.Status = domain.StatusFled

	fled, err := event.New(state.SessionID, event.KindCombatTurn, event.CombatTurnPayload{
		Transition:  TransitionCombatantFled,
		RoundNumber: state.RoundNumber,
		CombatantID: actor.ID,
	})
	if err != nil {
		return nil, err
	}

	turnEvt, err := e.advance(state)
	if err != nil {
		return nil, err
	}
	return []event.Event{fled, turnEvt}, nil
}

// guardAction checks the shared preconditions for an action by actorID.
func guardAction(state *domain.CombatState, actorID string) (*domain.Combatant, error) {
	if state == nil || state.Phase == domain.PhaseNotStarted {
		return nil, errors.New(errors.CodeCombatNotActive, "no active combat encounter")
	}
	if state.Phase == domain.PhaseConcluded {
		return nil, errors.New(errors.CodeCombatConcluded, "combat encounter already concluded")
	}
	actor, ok := state.Combatants[actorID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("combatant %q not found", actorID))
	}
	if actorID != state.ActiveID() {
		return nil, errors.WithMetadata(errors.CodeCombatOutOfTurn,
			fmt.Sprintf("combatant %q acted out of turn", actorID),
			map[string]string{"active_id": state.ActiveID()})
	}
	if actor.Status != domain.StatusAlive {
		return nil, errors.New(errors.CodeCombatActorDown,
			fmt.Sprintf("combatant %q cannot act with status %s", actorID, actor.Status))
	}
	return actor, nil
}

// advance moves to the next alive combatant or concludes the encounter,
// and returns the single turn-boundary event.
func (e *Engine) advance(state *domain.CombatState) (event.Event, error) {
	if done, outcome := concluded(state); done {
		state.Phase = domain.PhaseConcluded
		state.Outcome = outcome
		winning := domain.SideEnemy
		if outcome == domain.OutcomeVictory {
			winning = domain.SidePlayer
		}
		return event.New(state.SessionID, event.KindCombatTurn, event.CombatTurnPayload{
			Transition:  TransitionCombatConcluded,
			RoundNumber: state.RoundNumber,
			Outcome:     string(outcome),
			WinningSide: string(winning),
		})
	}

	transition := TransitionTurnAdvanced
	for i := 0; i < len(state.TurnOrder); i++ {
		state.ActiveIndex++
		if state.ActiveIndex >= len(state.TurnOrder) {
			state.ActiveIndex = 0
			state.RoundNumber++
			state.Phase = domain.PhaseRoundAdvance
			transition = TransitionRoundAdvanced
		}
		if state.Active().Status == domain.StatusAlive {
			break
		}
	}

	state.Phase = domain.PhaseAwaitingAction
	return event.New(state.SessionID, event.KindCombatTurn, event.CombatTurnPayload{
		Transition:  transition,
		RoundNumber: state.RoundNumber,
		ActiveID:    state.ActiveID(),
	})
}

// concluded reports whether one side has no alive members left.
func concluded(state *domain.CombatState) (bool, domain.Outcome) {
	if !state.HostilesAlive(domain.SidePlayer) {
		return true, domain.OutcomeVictory
	}
	if !state.PlayerSideAlive() {
		for _, c := range state.Combatants {
			if c.Status == domain.StatusFled && !c.Side.Opposes(domain.SidePlayer) {
				return true, domain.OutcomeFled
			}
		}
		return true, domain.OutcomeDefeat
	}
	return false, ""
}
