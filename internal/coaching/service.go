// Package coaching orchestrates one user interaction: prompt construction,
// the model call, ledger persistence, and experience accounting. Nothing here
// holds module-level mutable state; the caller identity travels in explicitly.
package coaching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heracleslabs/coachbot/internal/models"
	"github.com/heracleslabs/coachbot/internal/progress"
	"github.com/heracleslabs/coachbot/internal/prompt"
	"github.com/heracleslabs/coachbot/internal/store"
)

// CompletionXP is awarded once per workout, on its 0->1 completion transition.
const CompletionXP = 50

// DefaultTemperature is applied to requests that do not set one, matching the
// profile form's default sampling setting.
const DefaultTemperature = 0.3

type credentialStore interface {
	Get(ctx context.Context, username string) (*models.User, error)
	AddExperience(ctx context.Context, username string, delta int) (int, error)
}

type workoutLedger interface {
	Record(ctx context.Context, owner string, goal models.Goal, content string) (*models.WorkoutRecord, error)
	PinLatest(ctx context.Context, owner string) error
	MarkCompleted(ctx context.Context, owner string, id uuid.UUID) (bool, error)
	ListByGoal(ctx context.Context, owner string, goal *models.Goal) ([]models.WorkoutRecord, error)
	CountCompleted(ctx context.Context, owner string, goal *models.Goal) (int, error)
}

type generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Service wires the stores and the coaching client together.
type Service struct {
	users       credentialStore
	workouts    workoutLedger
	gen         generator
	log         zerolog.Logger
	target      int
	defaultTemp float64
}

type Option func(*Service)

// WithDefaultTemperature sets the sampling temperature used when a request
// omits one.
func WithDefaultTemperature(t float64) Option {
	return func(s *Service) { s.defaultTemp = t }
}

func New(users credentialStore, workouts workoutLedger, gen generator, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		workouts:    workouts,
		gen:         gen,
		log:         log,
		target:      progress.DefaultCompletionTarget,
		defaultTemp: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePlan builds the prompt, calls the model, and records the result.
// The model call happens before any write: a failed generation leaves no
// workout row behind. No store lock is held while the call is in flight.
func (s *Service) GeneratePlan(ctx context.Context, username string, req models.CoachingRequest) (*models.WorkoutRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	temp := req.Temperature
	if temp == 0 {
		temp = s.defaultTemp
	}
	text, err := s.gen.Generate(ctx, prompt.Build(req), temp)
	if err != nil {
		s.log.Error().Err(err).Str("user", username).Str("goal", req.Goal).Msg("plan generation failed")
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	rec, err := s.workouts.Record(ctx, username, GoalForRequest(req.Goal), text)
	if err != nil {
		return nil, fmt.Errorf("record plan: %w", err)
	}
	s.log.Info().Str("user", username).Str("workout", rec.ID.String()).Msg("plan generated")
	return rec, nil
}

// CompleteWorkout marks the record completed and awards CompletionXP exactly
// once. Re-completing is a no-op and reports completedNow=false.
func (s *Service) CompleteWorkout(ctx context.Context, username string, id uuid.UUID) (completedNow bool, err error) {
	completedNow, err = s.workouts.MarkCompleted(ctx, username, id)
	if err != nil {
		return false, err
	}
	if !completedNow {
		return false, nil
	}
	if _, err := s.users.AddExperience(ctx, username, CompletionXP); err != nil {
		return true, fmt.Errorf("award experience: %w", err)
	}
	return true, nil
}

// PinLatest marks the user's most recent workout as a favorite.
func (s *Service) PinLatest(ctx context.Context, username string) error {
	return s.workouts.PinLatest(ctx, username)
}

// ListWorkouts returns the user's records oldest first, optionally filtered.
func (s *Service) ListWorkouts(ctx context.Context, username string, goal *models.Goal) ([]models.WorkoutRecord, error) {
	return s.workouts.ListByGoal(ctx, username, goal)
}

// Overview is what the dashboard renders for a user.
type Overview struct {
	Username         string         `json:"username"`
	ExperiencePoints int            `json:"experience_points"`
	Badge            progress.Badge `json:"badge"`
	CompletedCount   int            `json:"completed_count"`
	CompletionRatio  float64        `json:"completion_ratio"`
}

// Progress derives the user's badge and completion metrics from stored state.
func (s *Service) Progress(ctx context.Context, username string) (*Overview, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	completed, err := s.workouts.CountCompleted(ctx, username, nil)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Username:         user.Username,
		ExperiencePoints: user.ExperiencePoints,
		Badge:            progress.BadgeFor(user.ExperiencePoints),
		CompletedCount:   completed,
		CompletionRatio:  progress.CompletionRatio(completed, s.target),
	}, nil
}

// GoalForRequest maps the profile form's goal wording onto a ledger goal.
func GoalForRequest(goal string) models.Goal {
	switch goal {
	case prompt.GoalMuscleGain, "Increase Strength":
		return models.GoalMuscleBuilding
	case prompt.GoalWeightLoss:
		return models.GoalFatBurning
	case "Post-Injury Recovery":
		return models.GoalRecovery
	default:
		return models.GoalStamina
	}
}

func validateRequest(req models.CoachingRequest) error {
	if strings.TrimSpace(req.Sport) == "" ||
		strings.TrimSpace(req.Position) == "" ||
		strings.TrimSpace(req.Goal) == "" {
		return store.ErrInvalidInput
	}
	return nil
}
