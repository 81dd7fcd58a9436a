package twofa

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStoreFailure wraps database-level failures that are neither a missing
// user nor a contract violation.
var ErrStoreFailure = errors.New("two-factor store operation failed")

// PostgresStore implements Store on a pgx connection pool. It expects a
// users table carrying the two-factor columns:
//
//	CREATE TABLE users (
//		id                       UUID PRIMARY KEY,
//		email                    TEXT NOT NULL,
//		totp_enabled             BOOLEAN NOT NULL DEFAULT FALSE,
//		totp_secret_enc          TEXT,
//		totp_verified_at         TIMESTAMPTZ,
//		totp_recovery_codes_hash TEXT[],
//		totp_last_used_step      BIGINT
//	);
//
// The striped per-user locks in Service serialize mutations within one
// process. Deployments running several replicas against the same database
// should extend Update with a conditional WHERE on totp_last_used_step (or
// equivalent) to close the cross-process replay race as well.
type PostgresStore struct {
	db    *pgxpool.Pool
	table string
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// tableNameRegex restricts table names to plain optionally schema-qualified
// identifiers. The name is interpolated into SQL text, so anything else is
// rejected.
var tableNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// WithTable overrides the default "users" table name. Accepts an optionally
// schema-qualified identifier; panics on anything else since the name comes
// from configuration, not request input.
func WithTable(name string) PostgresStoreOption {
	return func(s *PostgresStore) {
		if name == "" {
			return
		}
		if !tableNameRegex.MatchString(name) {
			panic(fmt.Sprintf("twofa: invalid table name %q", name))
		}
		s.table = name
	}
}

// NewPostgresStore creates a Store backed by the given pool.
// Panics on a nil pool to fail fast during initialization.
func NewPostgresStore(db *pgxpool.Pool, opts ...PostgresStoreOption) *PostgresStore {
	if db == nil {
		panic("twofa: pgx pool is required")
	}
	s := &PostgresStore{db: db, table: "users"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const userColumns = "id, email, totp_enabled, totp_secret_enc, totp_verified_at, totp_recovery_codes_hash, totp_last_used_step"

// Get retrieves a user's two-factor record.
func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", userColumns, s.table)

	user, err := scanUser(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return user, nil
}

// Update applies a partial update and returns the updated record.
func (s *PostgresStore) Update(ctx context.Context, userID uuid.UUID, update UserUpdate) (*User, error) {
	assignments := make([]string, 0, 5)
	args := []any{userID}

	addAssignment := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := update.Enabled.Value(); ok {
		addAssignment("totp_enabled", v)
	}
	if v, ok := update.SecretEnvelope.Value(); ok {
		addAssignment("totp_secret_enc", v)
	}
	if v, ok := update.VerifiedAt.Value(); ok {
		addAssignment("totp_verified_at", v)
	}
	if v, ok := update.RecoveryCodeHashes.Value(); ok {
		addAssignment("totp_recovery_codes_hash", v)
	}
	if v, ok := update.LastUsedStep.Value(); ok {
		addAssignment("totp_last_used_step", v)
	}

	if len(assignments) == 0 {
		return s.Get(ctx, userID)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		s.table, strings.Join(assignments, ", "), userColumns,
	)

	user, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Enabled,
		&u.SecretEnvelope,
		&u.VerifiedAt,
		&u.RecoveryCodeHashes,
		&u.LastUsedStep,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
