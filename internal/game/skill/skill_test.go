package skill

import (
	"testing"

	"github.com/fablestack/engine/internal/core/check"
	"github.com/fablestack/engine/internal/core/dice"
	"github.com/fablestack/engine/internal/platform/errors"
)

func TestResolveDeterministic(t *testing.T) {
	req := Request{StatValue: 14, SkillRank: 2, Difficulty: check.DifficultyNormal}

	first, err := Resolve(dice.NewRng(42), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(dice.NewRng(42), req)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("same seed produced different results: %+v vs %+v", first, second)
	}
	if first.Target != 62 {
		t.Errorf("target = %d, want 62", first.Target)
	}
	if first.Roll < 1 || first.Roll > 100 {
		t.Errorf("roll = %d, want within [1,100]", first.Roll)
	}
	if first.Success != (first.Roll <= first.Target) {
		t.Errorf("success = %v inconsistent with roll %d vs target %d", first.Success, first.Roll, first.Target)
	}
	if first.Margin != first.Target-first.Roll {
		t.Errorf("margin = %d, want %d", first.Margin, first.Target-first.Roll)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantCode errors.Code
	}{
		{"negative stat", Request{StatValue: -1, SkillRank: 0, Difficulty: check.DifficultyNormal}, errors.CodeSkillInvalidStat},
		{"negative rank", Request{StatValue: 10, SkillRank: -1, Difficulty: check.DifficultyNormal}, errors.CodeSkillInvalidRank},
		{"unknown tier", Request{StatValue: 10, SkillRank: 0, Difficulty: "impossible"}, errors.CodeSkillInvalidDifficulty},
		{"empty tier", Request{StatValue: 10, SkillRank: 0}, errors.CodeSkillInvalidDifficulty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(dice.NewRng(1), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestResolveDifficultyShiftsTarget(t *testing.T) {
	base := Request{StatValue: 14, SkillRank: 2}

	targets := map[check.Difficulty]int{}
	for _, d := range []check.Difficulty{check.DifficultyFavorable, check.DifficultyNormal, check.DifficultyUnfavorable} {
		req := base
		req.Difficulty = d
		res, err := Resolve(dice.NewRng(7), req)
		if err != nil {
			t.Fatal(err)
		}
		targets[d] = res.Target
	}

	if targets[check.DifficultyFavorable] != 82 || targets[check.DifficultyNormal] != 62 || targets[check.DifficultyUnfavorable] != 42 {
		t.Errorf("targets = %v, want favorable 82, normal 62, unfavorable 42", targets)
	}
}
