package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors - malformed input, rejected before any mutation.
	CodeSessionEmptyID          Code = "SESSION_EMPTY_ID"
	CodeSkillInvalidStat        Code = "SKILL_INVALID_STAT"
	CodeSkillInvalidRank        Code = "SKILL_INVALID_RANK"
	CodeSkillInvalidDifficulty  Code = "SKILL_INVALID_DIFFICULTY"
	CodeCombatEmptyRoster       Code = "COMBAT_EMPTY_ROSTER"
	CodeCombatInvalidCombatant  Code = "COMBAT_INVALID_COMBATANT"
	CodeCombatInvalidWeapon     Code = "COMBAT_INVALID_WEAPON"
	CodeInventoryEmptyItemID    Code = "INVENTORY_EMPTY_ITEM_ID"
	CodeTimelineInvalidSequence Code = "TIMELINE_INVALID_SEQUENCE"
	CodeEventInvalidKind        Code = "EVENT_INVALID_KIND"
	CodeDiceInvalidSides        Code = "DICE_INVALID_SIDES"
	CodeTurnEmptyInput          Code = "TURN_EMPTY_INPUT"

	// State-conflict errors - the current state disallows the operation.
	CodeCombatAlreadyActive   Code = "COMBAT_ALREADY_ACTIVE"
	CodeCombatNotActive       Code = "COMBAT_NOT_ACTIVE"
	CodeCombatConcluded       Code = "COMBAT_CONCLUDED"
	CodeCombatOutOfTurn       Code = "COMBAT_OUT_OF_TURN"
	CodeCombatActorDown       Code = "COMBAT_ACTOR_DOWN"
	CodeInventoryInsufficient Code = "INVENTORY_INSUFFICIENT_QUANTITY"
	CodeCurrencyInsufficient  Code = "CURRENCY_INSUFFICIENT_BALANCE"
	CodeTurnInFlight          Code = "TURN_IN_FLIGHT"
	CodeRollbackDuringTurn    Code = "ROLLBACK_DURING_TURN"

	// Storage errors.
	CodeNotFound Code = "NOT_FOUND"

	// Narration errors - recorded, never invalidate committed mechanics.
	CodeNarrationUnavailable Code = "NARRATION_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSessionEmptyID,
		CodeSkillInvalidStat,
		CodeSkillInvalidRank,
		CodeSkillInvalidDifficulty,
		CodeCombatEmptyRoster,
		CodeCombatInvalidCombatant,
		CodeCombatInvalidWeapon,
		CodeInventoryEmptyItemID,
		CodeTimelineInvalidSequence,
		CodeEventInvalidKind,
		CodeDiceInvalidSides,
		CodeTurnEmptyInput:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCombatAlreadyActive,
		CodeCombatNotActive,
		CodeCombatConcluded,
		CodeCombatOutOfTurn,
		CodeCombatActorDown,
		CodeInventoryInsufficient,
		CodeCurrencyInsufficient,
		CodeTurnInFlight,
		CodeRollbackDuringTurn:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Unavailable - a collaborator did not respond in time
	case CodeNarrationUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// IsValidation reports whether the code describes malformed input.
func (c Code) IsValidation() bool {
	return c.GRPCCode() == codes.InvalidArgument
}

// IsStateConflict reports whether the code describes a state conflict.
func (c Code) IsStateConflict() bool {
	return c.GRPCCode() == codes.FailedPrecondition
}
