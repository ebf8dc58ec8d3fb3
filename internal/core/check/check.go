// Package check implements the pure target and margin arithmetic shared by
// skill checks and combat resolution.
package check

// Target bounds keep outcomes probabilistic at the extremes: a check is never
// guaranteed and never impossible.
const (
	TargetMin = 1
	TargetMax = 99
)

// Difficulty is a coarse modifier applied to a skill-check target.
type Difficulty string

const (
	// DifficultyFavorable eases the check target by 20.
	DifficultyFavorable Difficulty = "favorable"
	// DifficultyNormal leaves the check target unmodified.
	DifficultyNormal Difficulty = "normal"
	// DifficultyUnfavorable hardens the check target by 20.
	DifficultyUnfavorable Difficulty = "unfavorable"
)

// Offset returns the target offset for the difficulty tier, and whether the
// tier is known.
func (d Difficulty) Offset() (int, bool) {
	switch d {
	case DifficultyFavorable:
		return -20, true
	case DifficultyNormal:
		return 0, true
	case DifficultyUnfavorable:
		return 20, true
	default:
		return 0, false
	}
}

// IsValid reports whether the difficulty tier is supported.
func (d Difficulty) IsValid() bool {
	_, ok := d.Offset()
	return ok
}

// Target computes a percentile check target from a stat value, a skill rank
// and a difficulty offset, clamped to [TargetMin, TargetMax].
func Target(statValue, skillRank, offset int) int {
	return ClampTarget(statValue*3 + skillRank*10 - offset)
}

// ClampTarget bounds a raw target into [TargetMin, TargetMax].
func ClampTarget(target int) int {
	if target < TargetMin {
		return TargetMin
	}
	if target > TargetMax {
		return TargetMax
	}
	return target
}

// RollUnder reports success for percentile checks: a roll at or under the
// target succeeds (boundary inclusive).
func RollUnder(roll, target int) bool {
	return roll <= target
}

// MeetsDifficulty returns true if total >= difficulty.
// This is the roll-over comparison used by combat attack resolution.
func MeetsDifficulty(total, difficulty int) bool {
	return total >= difficulty
}

// Margin calculates the margin of success or failure for a percentile check.
// Positive values indicate success, negative indicate failure.
func Margin(target, roll int) int {
	return target - roll
}

// Result represents the outcome of a percentile check.
type Result struct {
	Target  int
	Roll    int
	Success bool
	Margin  int
}

// Check performs a percentile check and returns the result.
func Check(target, roll int) Result {
	return Result{
		Target:  target,
		Roll:    roll,
		Success: RollUnder(roll, target),
		Margin:  Margin(target, roll),
	}
}
