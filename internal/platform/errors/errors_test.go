package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeCombatOutOfTurn, "goblin acted out of turn")
	target := New(CodeCombatOutOfTurn, "different message")

	if !errors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeNotFound, "missing")
	if errors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "append event", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "append event" {
		t.Fatalf("expected internal message, got %q", err.Error())
	}
}

func TestGetCode(t *testing.T) {
	err := New(CodeSkillInvalidDifficulty, "unknown tier")
	wrapped := fmt.Errorf("resolve check: %w", err)

	if got := GetCode(wrapped); got != CodeSkillInvalidDifficulty {
		t.Fatalf("expected code through wrapping, got %s", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code for plain error, got %s", got)
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeSkillInvalidDifficulty, codes.InvalidArgument},
		{CodeSkillInvalidRank, codes.InvalidArgument},
		{CodeCombatEmptyRoster, codes.InvalidArgument},
		{CodeCombatAlreadyActive, codes.FailedPrecondition},
		{CodeCombatOutOfTurn, codes.FailedPrecondition},
		{CodeCombatConcluded, codes.FailedPrecondition},
		{CodeTurnInFlight, codes.FailedPrecondition},
		{CodeRollbackDuringTurn, codes.FailedPrecondition},
		{CodeInventoryInsufficient, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeNarrationUnavailable, codes.Unavailable},
		{CodeUnknown, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.want {
				t.Errorf("GRPCCode(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestToGRPCStatusAttachesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeCombatOutOfTurn, "not your turn", map[string]string{
		"actor_id": "abc",
	})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a gRPC status")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", st.Code())
	}
	if len(st.Details()) == 0 {
		t.Fatal("expected error details")
	}
}

func TestValidationAndConflictPredicates(t *testing.T) {
	if !CodeSkillInvalidRank.IsValidation() {
		t.Fatal("expected validation code")
	}
	if CodeSkillInvalidRank.IsStateConflict() {
		t.Fatal("validation code should not be a conflict")
	}
	if !CodeCombatConcluded.IsStateConflict() {
		t.Fatal("expected state-conflict code")
	}
}
