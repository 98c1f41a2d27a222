// Package progress derives display metrics (badge tier, completion ratio, BMI)
// from stored and user-supplied numbers. Everything here is pure arithmetic.
package progress

import "errors"

// Badge is a gamification tier derived from accumulated experience points.
type Badge string

const (
	BadgeBeginner        Badge = "Beginner"
	BadgeMuscleBuilder   Badge = "MuscleBuilder"
	BadgeFatBurner       Badge = "FatBurner"
	BadgeConsistencyKing Badge = "ConsistencyKing"
)

// DefaultCompletionTarget is the number of completed workouts that fills the
// progress bar.
const DefaultCompletionTarget = 20

// ErrInvalidMeasurement is returned by BMI for non-positive height or weight.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// BadgeFor maps experience points onto a tier. Thresholds are fixed and
// non-overlapping: 1000+ ConsistencyKing, 500+ FatBurner, 250+ MuscleBuilder.
func BadgeFor(xp int) Badge {
	switch {
	case xp >= 1000:
		return BadgeConsistencyKing
	case xp >= 500:
		return BadgeFatBurner
	case xp >= 250:
		return BadgeMuscleBuilder
	default:
		return BadgeBeginner
	}
}

// CompletionRatio returns completed/target in [0,1], saturating at 1.0.
// A non-positive target falls back to DefaultCompletionTarget.
func CompletionRatio(completed, target int) float64 {
	if target <= 0 {
		target = DefaultCompletionTarget
	}
	if completed <= 0 {
		return 0
	}
	if completed >= target {
		return 1.0
	}
	return float64(completed) / float64(target)
}

// BMI computes weight / (height/100)^2. Height and weight must be positive;
// the guard runs before any division.
func BMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, ErrInvalidMeasurement
	}
	m := heightCm / 100
	return weightKg / (m * m), nil
}
