package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/heracleslabs/coachbot/internal/models"
)

// UserStore is the credential store: accounts, password digests, experience
// points. Passwords are bcrypt-hashed before they reach a query.
type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// Register creates an account. A taken username yields ErrDuplicateUsername;
// every other failure is returned untouched so it cannot masquerade as a
// duplicate.
func (s *UserStore) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: string(hash)}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING experience_points, created_at`,
		username, string(hash),
	).Scan(&user.ExperiencePoints, &user.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// Authenticate looks up the account and compares the bcrypt digest. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches an account by username.
func (s *UserStore) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(ctx,
		`SELECT username, password_hash, experience_points, created_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&user.Username, &user.PasswordHash, &user.ExperiencePoints, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the stored digest.
func (s *UserStore) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE username = $1`,
		username, string(hash),
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes the account and its workout rows in one transaction.
// Workouts carry no foreign key, so the cleanup is explicit here instead of
// leaving orphan rows behind.
func (s *UserStore) DeleteAccount(ctx context.Context, username string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workouts WHERE owner = $1`, username); err != nil {
		return fmt.Errorf("delete workouts: %w", err)
	}
	return tx.Commit(ctx)
}

// AddExperience increments the experience counter and returns the new total.
// Negative deltas are rejected: outside of account deletion the counter only
// moves up.
func (s *UserStore) AddExperience(ctx context.Context, username string, delta int) (int, error) {
	if delta < 0 {
		return 0, ErrInvalidInput
	}
	var total int
	err := s.db.QueryRow(ctx,
		`UPDATE users SET experience_points = experience_points + $2
		 WHERE username = $1
		 RETURNING experience_points`,
		username, delta,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("add experience: %w", err)
	}
	return total, nil
}
