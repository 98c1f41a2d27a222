// Package models defines the domain types shared across the coachbot service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal classifies a stored workout record.
type Goal string

const (
	GoalMuscleBuilding Goal = "Muscle Building"
	GoalFatBurning     Goal = "Fat Burning"
	GoalStamina        Goal = "Stamina"
	GoalRecovery       Goal = "Recovery"
)

// Valid reports whether g is one of the known ledger goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalMuscleBuilding, GoalFatBurning, GoalStamina, GoalRecovery:
		return true
	}
	return false
}

// User is an account row. Badge is derived from ExperiencePoints, never stored.
type User struct {
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	ExperiencePoints int       `json:"experience_points"`
	CreatedAt        time.Time `json:"created_at"`
}

// WorkoutRecord is a generated plan persisted for a user. Owner is a weak
// reference: the row survives account deletion unless DeleteAccount cleans it up.
type WorkoutRecord struct {
	ID        uuid.UUID `json:"id"`
	Owner     string    `json:"owner"`
	Goal      Goal      `json:"goal"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Pinned    bool      `json:"pinned"`
	Completed bool      `json:"completed"`
}

// CoachingRequest carries one interaction's athlete profile. It is built per
// request, consumed by the prompt builder, and never persisted.
type CoachingRequest struct {
	Sport       string
	Position    string
	Injury      string
	Goal        string
	Diet        string
	Intensity   string
	Difficulty  string
	Temperature float64
}
