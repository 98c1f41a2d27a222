// Package store persists user accounts and workout records on PostgreSQL.
// All queries live behind typed methods so the uniqueness and idempotence
// invariants are enforced here rather than at call sites.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store-layer error taxonomy. Callers match with errors.Is; nothing in this
// package panics or swallows a failure.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrNoWorkouts         = errors.New("no workouts recorded")
	ErrInvalidInput       = errors.New("invalid input")
)

// DBTX is the database surface the stores need. *pgxpool.Pool satisfies it.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username          text PRIMARY KEY,
	password_hash     text NOT NULL,
	experience_points integer NOT NULL DEFAULT 0 CHECK (experience_points >= 0),
	created_at        timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workouts (
	id         uuid PRIMARY KEY,
	owner      text NOT NULL,
	goal       text NOT NULL,
	content    text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	pinned     boolean NOT NULL DEFAULT false,
	completed  boolean NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS workouts_owner_created_idx ON workouts (owner, created_at);
`

// Migrate creates the two relations if they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// uniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. Only this class maps to ErrDuplicateUsername; any other insert
// failure is surfaced as-is.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
