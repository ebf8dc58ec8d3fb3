// Package skill resolves skill checks against percentile targets.
package skill

import (
	"fmt"
	"math/rand"

	"github.com/fablestack/engine/internal/core/check"
	"github.com/fablestack/engine/internal/core/dice"
	"github.com/fablestack/engine/internal/platform/errors"
)

// Request describes one skill check to resolve.
type Request struct {
	StatValue  int
	SkillRank  int
	Difficulty check.Difficulty
	// SkillName and StatName are identifiers carried into the emitted
	// event for downstream narration. They do not affect resolution.
	SkillName string
	StatName  string
}

// Result is the resolved outcome of a skill check.
type Result struct {
	Target  int
	Roll    int
	Success bool
	Margin  int
}

// Validate rejects malformed requests before any roll is drawn.
func Validate(req Request) error {
	if req.StatValue < 0 {
		return errors.New(errors.CodeSkillInvalidStat,
			fmt.Sprintf("stat value must not be negative, got %d", req.StatValue))
	}
	if req.SkillRank < 0 {
		return errors.New(errors.CodeSkillInvalidRank,
			fmt.Sprintf("skill rank must not be negative, got %d", req.SkillRank))
	}
	if !req.Difficulty.IsValid() {
		return errors.New(errors.CodeSkillInvalidDifficulty,
			fmt.Sprintf("unknown difficulty tier %q", req.Difficulty))
	}
	return nil
}

// Resolve validates the request, draws one percentile roll from rng and
// returns the verdict. The margin is target minus roll, so larger positive
// margins indicate more comfortable successes.
func Resolve(rng *rand.Rand, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	offset, _ := req.Difficulty.Offset()
	target := check.Target(req.StatValue, req.SkillRank, offset)
	outcome := check.Check(target, dice.D100(rng))

	return Result{
		Target:  outcome.Target,
		Roll:    outcome.Roll,
		Success: outcome.Success,
		Margin:  outcome.Margin,
	}, nil
}
