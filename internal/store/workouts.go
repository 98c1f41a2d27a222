package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heracleslabs/coachbot/internal/models"
)

// WorkoutStore is the workout ledger. Records are append-only apart from the
// pinned flag and the one-way completed transition.
type WorkoutStore struct {
	db DBTX
}

func NewWorkoutStore(db DBTX) *WorkoutStore {
	return &WorkoutStore{db: db}
}

// Record appends a generated workout for the owner, stamped with the call time.
func (s *WorkoutStore) Record(ctx context.Context, owner string, goal models.Goal, content string) (*models.WorkoutRecord, error) {
	rec := models.WorkoutRecord{
		ID:        uuid.New(),
		Owner:     owner,
		Goal:      goal,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO workouts (id, owner, goal, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Owner, string(rec.Goal), rec.Content, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	return &rec, nil
}

// PinLatest marks the owner's most recently created record as a favorite.
func (s *WorkoutStore) PinLatest(ctx context.Context, owner string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workouts SET pinned = true
		 WHERE id = (
			SELECT id FROM workouts
			WHERE owner = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		 )`,
		owner,
	)
	if err != nil {
		return fmt.Errorf("pin latest workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoWorkouts
	}
	return nil
}

// MarkCompleted flips the completed flag. The transition is 0->1 only and
// idempotent: re-marking a completed record is a no-op, reported through the
// returned bool so experience is awarded once per record.
func (s *WorkoutStore) MarkCompleted(ctx context.Context, owner string, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE workouts SET completed = true
		 WHERE id = $1 AND owner = $2 AND completed = false`,
		id, owner,
	)
	if err != nil {
		return false, fmt.Errorf("mark workout completed: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// No transition: either already completed or the record does not exist.
	var completed bool
	err = s.db.QueryRow(ctx,
		`SELECT completed FROM workouts WHERE id = $1 AND owner = $2`,
		id, owner,
	).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("check workout: %w", err)
	}
	return false, nil
}

// ListByGoal returns the owner's records oldest first, optionally filtered by
// goal.
func (s *WorkoutStore) ListByGoal(ctx context.Context, owner string, goal *models.Goal) ([]models.WorkoutRecord, error) {
	query := `SELECT id, owner, goal, content, created_at, pinned, completed
		 FROM workouts WHERE owner = $1`
	args := []any{owner}
	if goal != nil {
		query += ` AND goal = $2`
		args = append(args, string(*goal))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var records []models.WorkoutRecord
	for rows.Next() {
		var rec models.WorkoutRecord
		var g string
		if err := rows.Scan(&rec.ID, &rec.Owner, &g, &rec.Content, &rec.CreatedAt, &rec.Pinned, &rec.Completed); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		rec.Goal = models.Goal(g)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return records, nil
}

// CountCompleted counts the owner's completed records, optionally filtered by
// goal.
func (s *WorkoutStore) CountCompleted(ctx context.Context, owner string, goal *models.Goal) (int, error) {
	query := `SELECT count(*) FROM workouts WHERE owner = $1 AND completed = true`
	args := []any{owner}
	if goal != nil {
		query += ` AND goal = $2`
		args = append(args, string(*goal))
	}
	var n int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count completed workouts: %w", err)
	}
	return n, nil
}
