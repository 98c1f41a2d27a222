// Package prompt renders a coaching request into the prompt sent to the
// generative model. Building is a pure function of the request: identical
// input always yields an identical prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/heracleslabs/coachbot/internal/models"
)

// Goals that carry an extra instruction block. Every other goal maps to the
// empty block.
const (
	GoalMuscleGain = "Bodybuilding (Muscle Gain)"
	GoalWeightLoss = "Fat Burning (Weight Loss)"
)

const muscleGainInstructions = `Focus on hypertrophy-based training.
Include sets, reps, rest time.
Mention progressive overload.
Add protein-rich diet advice.
Keep training sustainable.`

const weightLossInstructions = `Focus on safe fat loss.
Combine strength training and cardio.
Avoid crash diets.
Mention calorie awareness (no extreme restriction).
Promote consistency and recovery.`

const rules = `Rules:
- Be safety-first and injury-aware.
- Avoid medical diagnosis.
- Avoid unsafe or extreme exercises.
- Use clear, structured sections.
- Keep language simple and motivating.`

const outputSections = `Generate:

1. Weekly Workout Structure
2. Exercise Plan (sets, reps, rest)
3. Injury-Aware Recovery Guidance
4. Nutrition & Hydration Plan
5. Warm-up & Cooldown Routine`

// SpecialInstructions returns the goal-specific block for the given goal, or
// the empty string for goals without one.
func SpecialInstructions(goal string) string {
	switch goal {
	case GoalMuscleGain:
		return muscleGainInstructions
	case GoalWeightLoss:
		return weightLossInstructions
	default:
		return ""
	}
}

// Build renders the full coaching prompt for the request.
func Build(req models.CoachingRequest) string {
	var b strings.Builder

	b.WriteString("You are CoachBot AI, a certified youth sports coach and fitness scientist.\n\n")

	b.WriteString("Athlete Details:\n")
	fmt.Fprintf(&b, "- Sport: %s\n", req.Sport)
	fmt.Fprintf(&b, "- Position / Focus: %s\n", req.Position)
	fmt.Fprintf(&b, "- Injury History: %s\n", req.Injury)
	fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "- Diet: %s\n", req.Diet)
	fmt.Fprintf(&b, "- Training Intensity: %s\n", req.Intensity)
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty)
	}
	b.WriteString("\n")

	b.WriteString("Special Instructions:\n")
	b.WriteString(SpecialInstructions(req.Goal))
	b.WriteString("\n\n")

	b.WriteString(rules)
	b.WriteString("\n\n")
	b.WriteString(outputSections)
	b.WriteString("\n")

	return b.String()
}
