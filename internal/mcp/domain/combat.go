package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gamedomain "github.com/fablestack/engine/internal/game/domain"
	"github.com/fablestack/engine/internal/game/service"
)

// CombatantInput describes one roster member for combat_begin.
type CombatantInput struct {
	ID           string `json:"id" jsonschema:"unique combatant identifier"`
	DisplayName  string `json:"display_name,omitempty" jsonschema:"display name"`
	Side         string `json:"side" jsonschema:"side (player, ally, enemy)"`
	CurrentHP    int    `json:"current_hp" jsonschema:"current hit points"`
	MaxHP        int    `json:"max_hp" jsonschema:"maximum hit points"`
	CurrentMP    int    `json:"current_mp,omitempty" jsonschema:"current magic points"`
	MaxMP        int    `json:"max_mp,omitempty" jsonschema:"maximum magic points"`
	ArmorClass   int    `json:"armor_class" jsonschema:"armor class for attack resolution"`
	AttackBonus  int    `json:"attack_bonus,omitempty" jsonschema:"proficiency bonus added to attack rolls"`
	StrengthMod  int    `json:"strength_mod,omitempty" jsonschema:"strength modifier"`
	DexterityMod int    `json:"dexterity_mod,omitempty" jsonschema:"dexterity modifier"`
	WisdomMod    int    `json:"wisdom_mod,omitempty" jsonschema:"wisdom modifier"`
}

// CombatantState is the wire form of one combatant's live state.
type CombatantState struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Side        string `json:"side"`
	CurrentHP   int    `json:"current_hp"`
	MaxHP       int    `json:"max_hp"`
	Initiative  int    `json:"initiative"`
	Status      string `json:"status"`
}

// CombatStateResult is the wire form of an encounter's state.
type CombatStateResult struct {
	Round      int              `json:"round" jsonschema:"current round number"`
	TurnOrder  []string         `json:"turn_order" jsonschema:"combatant ids in initiative order"`
	ActiveID   string           `json:"active_id" jsonschema:"combatant whose turn it is"`
	Phase      string           `json:"phase" jsonschema:"encounter phase"`
	Outcome    string           `json:"outcome,omitempty" jsonschema:"conclusion outcome when phase is concluded"`
	Combatants []CombatantState `json:"combatants" jsonschema:"combatants in initiative order"`
}

// CombatBeginInput represents the MCP tool input for starting combat.
type CombatBeginInput struct {
	SessionID string           `json:"session_id" jsonschema:"session identifier"`
	Roster    []CombatantInput `json:"roster" jsonschema:"all participants of the encounter"`
}

// CombatBeginResult represents the MCP tool output for starting combat.
type CombatBeginResult struct {
	State  CombatStateResult `json:"state" jsonschema:"initial encounter state"`
	Events []EventEntry      `json:"events" jsonschema:"committed events"`
}

// CombatAttackInput represents the MCP tool input for an attack.
type CombatAttackInput struct {
	SessionID  string `json:"session_id" jsonschema:"session identifier"`
	ActorID    string `json:"actor_id" jsonschema:"attacking combatant, must be the active combatant"`
	TargetID   string `json:"target_id" jsonschema:"defending combatant"`
	WeaponName string `json:"weapon_name" jsonschema:"weapon name"`
	BaseDamage int    `json:"base_damage" jsonschema:"weapon base damage"`
	Ranged     bool   `json:"ranged,omitempty" jsonschema:"ranged attacks use dexterity and add no strength to damage"`
}

// CombatAttackResult represents the MCP tool output for an attack.
type CombatAttackResult struct {
	Hit          bool              `json:"hit" jsonschema:"whether the attack hit"`
	CriticalHit  bool              `json:"critical_hit" jsonschema:"natural 20"`
	CriticalMiss bool              `json:"critical_miss" jsonschema:"natural 1"`
	AttackRoll   int               `json:"attack_roll" jsonschema:"raw d20 roll"`
	AttackTotal  int               `json:"attack_total" jsonschema:"roll plus modifiers"`
	Damage       int               `json:"damage" jsonschema:"damage dealt"`
	TargetDown   bool              `json:"target_down" jsonschema:"whether the target dropped to 0 HP"`
	State        CombatStateResult `json:"state" jsonschema:"encounter state after the attack"`
	Events       []EventEntry      `json:"events" jsonschema:"committed events"`
}

// CombatFleeInput represents the MCP tool input for fleeing.
type CombatFleeInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	ActorID   string `json:"actor_id" jsonschema:"fleeing combatant, must be the active combatant"`
}

// CombatFleeResult represents the MCP tool output for fleeing.
type CombatFleeResult struct {
	State  CombatStateResult `json:"state" jsonschema:"encounter state after the flight"`
	Events []EventEntry      `json:"events" jsonschema:"committed events"`
}

// CombatStateInput represents the MCP tool input for reading combat state.
type CombatStateInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// CombatBeginTool defines the MCP tool schema for starting combat.
func CombatBeginTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_begin",
		Description: "Starts an encounter from a roster. Turn order is deterministic: initiative descending, ties broken by dexterity and then roster order.",
	}
}

// CombatAttackTool defines the MCP tool schema for attacks.
func CombatAttackTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_attack",
		Description: "Resolves one attack by the active combatant: d20 plus modifiers versus armor class, natural 20 crits for double damage, natural 1 always misses.",
	}
}

// CombatFleeTool defines the MCP tool schema for fleeing.
func CombatFleeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_flee",
		Description: "Removes the active combatant from the encounter without concluding it for the remaining sides.",
	}
}

// CombatStateTool defines the MCP tool schema for reading combat state.
func CombatStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_state",
		Description: "Returns the session's most recent encounter state.",
	}
}

// CombatBeginHandler executes a combat begin request.
func CombatBeginHandler(svc *service.Service) mcp.ToolHandlerFor[CombatBeginInput, CombatBeginResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatBeginInput) (*mcp.CallToolResult, CombatBeginResult, error) {
		roster := make([]gamedomain.Combatant, 0, len(input.Roster))
		for _, c := range input.Roster {
			roster = append(roster, gamedomain.Combatant{
				ID:           c.ID,
				DisplayName:  c.DisplayName,
				Side:         gamedomain.Side(c.Side),
				CurrentHP:    c.CurrentHP,
				MaxHP:        c.MaxHP,
				CurrentMP:    c.CurrentMP,
				MaxMP:        c.MaxMP,
				ArmorClass:   c.ArmorClass,
				AttackBonus:  c.AttackBonus,
				StrengthMod:  c.StrengthMod,
				DexterityMod: c.DexterityMod,
				WisdomMod:    c.WisdomMod,
			})
		}
		state, events, err := svc.BeginCombat(ctx, input.SessionID, roster)
		if err != nil {
			return nil, CombatBeginResult{}, toolError("combat begin", err)
		}
		return nil, CombatBeginResult{State: combatStateResult(state), Events: eventEntries(events)}, nil
	}
}

// CombatAttackHandler executes an attack request.
func CombatAttackHandler(svc *service.Service) mcp.ToolHandlerFor[CombatAttackInput, CombatAttackResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatAttackInput) (*mcp.CallToolResult, CombatAttackResult, error) {
		weapon := gamedomain.Weapon{Name: input.WeaponName, BaseDamage: input.BaseDamage, Ranged: input.Ranged}
		result, state, events, err := svc.PerformAttack(ctx, input.SessionID, input.ActorID, input.TargetID, weapon)
		if err != nil {
			return nil, CombatAttackResult{}, toolError("attack", err)
		}
		return nil, CombatAttackResult{
			Hit:          result.Hit,
			CriticalHit:  result.CriticalHit,
			CriticalMiss: result.CriticalMiss,
			AttackRoll:   result.AttackRoll,
			AttackTotal:  result.AttackTotal,
			Damage:       result.Damage,
			TargetDown:   result.TargetDown,
			State:        combatStateResult(state),
			Events:       eventEntries(events),
		}, nil
	}
}

// CombatFleeHandler executes a flee request.
func CombatFleeHandler(svc *service.Service) mcp.ToolHandlerFor[CombatFleeInput, CombatFleeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatFleeInput) (*mcp.CallToolResult, CombatFleeResult, error) {
		state, events, err := svc.PerformFlee(ctx, input.SessionID, input.ActorID)
		if err != nil {
			return nil, CombatFleeResult{}, toolError("flee", err)
		}
		return nil, CombatFleeResult{State: combatStateResult(state), Events: eventEntries(events)}, nil
	}
}

// CombatStateHandler executes a combat state request.
func CombatStateHandler(svc *service.Service) mcp.ToolHandlerFor[CombatStateInput, CombatStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatStateInput) (*mcp.CallToolResult, CombatStateResult, error) {
		state, err := svc.GetCombatState(ctx, input.SessionID)
		if err != nil {
			return nil, CombatStateResult{}, toolError("combat state", err)
		}
		return nil, combatStateResult(state), nil
	}
}

func combatStateResult(state *gamedomain.CombatState) CombatStateResult {
	result := CombatStateResult{
		Round:     state.RoundNumber,
		TurnOrder: state.TurnOrder,
		ActiveID:  state.ActiveID(),
		Phase:     string(state.Phase),
		Outcome:   string(state.Outcome),
	}
	for _, id := range state.TurnOrder {
		c, ok := state.Combatants[id]
		if !ok {
			continue
		}
		result.Combatants = append(result.Combatants, CombatantState{
			ID:          c.ID,
			DisplayName: c.DisplayName,
			Side:        string(c.Side),
			CurrentHP:   c.CurrentHP,
			MaxHP:       c.MaxHP,
			Initiative:  c.InitiativeScore,
			Status:      string(c.Status),
		})
	}
	return result
}
