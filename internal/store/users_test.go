package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		switch target := dest[i].(type) {
		case *int:
			*target = r.values[i].(int)
		case *string:
			*target = r.values[i].(string)
		case *bool:
			*target = r.values[i].(bool)
		case *time.Time:
			*target = r.values[i].(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type stubDBTX struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) stubRow
	beginFn    func(ctx context.Context) (pgx.Tx, error)
}

func (db *stubDBTX) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.beginFn == nil {
		return nil, errors.New("not implemented")
	}
	return db.beginFn(ctx)
}

func (db *stubDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if db.execFn == nil {
		return pgconn.CommandTag{}, nil
	}
	return db.execFn(ctx, sql, args...)
}

func (db *stubDBTX) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *stubDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.queryRowFn(ctx, sql, args...)
}

// stubTx records statements and commit/rollback so transactional methods can
// be checked without a database.
type stubTx struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	committed  bool
	rolledBack bool
}

func (tx *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.execFn(ctx, sql, args...)
}

func (tx *stubTx) Commit(_ context.Context) error {
	tx.committed = true
	return nil
}

func (tx *stubTx) Rollback(_ context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

func (tx *stubTx) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

func (tx *stubTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

func (tx *stubTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

func (tx *stubTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (tx *stubTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}

func (tx *stubTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (tx *stubTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return stubRow{err: errors.New("not implemented")}
}

func (tx *stubTx) Conn() *pgx.Conn { return nil }

var testTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestRegisterMapsUniqueViolation(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}}
		},
	}
	users := NewUserStore(db)

	_, err := users.Register(context.Background(), "alice", "pw1")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestRegisterDoesNotMaskOtherFailures(t *testing.T) {
	dbErr := errors.New("connection reset")
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: dbErr}
		},
	}
	users := NewUserStore(db)

	_, err := users.Register(context.Background(), "alice", "pw1")
	if errors.Is(err, ErrDuplicateUsername) {
		t.Fatal("a non-duplicate failure must not be reported as a duplicate")
	}
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	users := NewUserStore(&stubDBTX{})
	if _, err := users.Register(context.Background(), "", "pw"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := users.Register(context.Background(), "alice", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, args ...any) stubRow {
			if args[0] == "alice" {
				return stubRow{values: []any{"alice", string(hash), 0, testTime}}
			}
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	users := NewUserStore(db)

	user, err := users.Authenticate(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate with correct password: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %q", user.Username)
	}

	if _, err := users.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := users.Authenticate(context.Background(), "nobody", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	db := &stubDBTX{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	users := NewUserStore(db)

	if err := users.ChangePassword(context.Background(), "ghost", "new-pw"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAccountRemovesWorkoutsInOneTransaction(t *testing.T) {
	tx := &stubTx{}
	var stmts []string
	tx.execFn = func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		stmts = append(stmts, sql)
		if args[0] != "alice" {
			t.Fatalf("unexpected owner argument %v", args[0])
		}
		if strings.Contains(sql, "FROM users") {
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		return pgconn.NewCommandTag("DELETE 3"), nil
	}
	db := &stubDBTX{beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil }}
	users := NewUserStore(db)

	if err := users.DeleteAccount(context.Background(), "alice"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if !strings.Contains(stmts[0], "FROM users") {
		t.Fatalf("first statement should delete the user row, got %q", stmts[0])
	}
	if !strings.Contains(stmts[1], "FROM workouts") {
		t.Fatalf("second statement should delete the workout rows, got %q", stmts[1])
	}
	if !tx.committed {
		t.Fatal("transaction was not committed")
	}
}

func TestDeleteAccountUnknownUserRollsBack(t *testing.T) {
	tx := &stubTx{
		execFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	db := &stubDBTX{beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil }}
	users := NewUserStore(db)

	if err := users.DeleteAccount(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if tx.committed {
		t.Fatal("transaction must not commit for an unknown user")
	}
	if !tx.rolledBack {
		t.Fatal("transaction was not rolled back")
	}
}

func TestAddExperienceRejectsNegativeDelta(t *testing.T) {
	called := false
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			called = true
			return stubRow{}
		},
	}
	users := NewUserStore(db)

	if _, err := users.AddExperience(context.Background(), "alice", -5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Fatal("negative delta must not reach the database")
	}
}

func TestAddExperienceReturnsNewTotal(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, args ...any) stubRow {
			if args[0] != "alice" {
				return stubRow{err: pgx.ErrNoRows}
			}
			return stubRow{values: []any{50}}
		},
	}
	users := NewUserStore(db)

	total, err := users.AddExperience(context.Background(), "alice", 50)
	if err != nil {
		t.Fatalf("AddExperience: %v", err)
	}
	if total != 50 {
		t.Fatalf("total = %d, want 50", total)
	}

	if _, err := users.AddExperience(context.Background(), "ghost", 50); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
