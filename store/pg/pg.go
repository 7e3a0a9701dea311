// Package pg provides the PostgreSQL UserStore backed by a pgx pool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otpgate/otpgate"
)

// Schema is the table this store expects. Applied by migration tooling, not
// by the store itself.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    verified      BOOLEAN NOT NULL DEFAULT FALSE,
    account_type  TEXT NOT NULL DEFAULT 'local',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username));
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));
`

const uniqueViolation = "23505"

// Store implements otpgate.UserStore on a pgx connection pool. The pool is
// owned by the caller.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect creates a pool from a DSN and verifies the connection.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

const selectColumns = `id, username, email, name, password_hash, verified, account_type, created_at`

func (s *Store) GetByEmail(ctx context.Context, email string) (*otpgate.UserRecord, error) {
	return s.getBy(ctx, `SELECT `+selectColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*otpgate.UserRecord, error) {
	return s.getBy(ctx, `SELECT `+selectColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (s *Store) GetByID(ctx context.Context, id string) (*otpgate.UserRecord, error) {
	return s.getBy(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) getBy(ctx context.Context, query string, arg any) (*otpgate.UserRecord, error) {
	var user otpgate.UserRecord
	var accountType string

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.Name,
		&user.PasswordHash, &user.Verified, &accountType, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, otpgate.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", otpgate.ErrStoreUnavailable, err)
	}

	user.Type = otpgate.AccountType(accountType)
	return &user, nil
}

func (s *Store) Create(ctx context.Context, input otpgate.CreateUserInput) (*otpgate.UserRecord, error) {
	user := otpgate.UserRecord{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
		Verified:     input.Verified,
		Type:         input.Type,
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, name, password_hash, verified, account_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		user.ID, user.Username, user.Email, user.Name,
		user.PasswordHash, user.Verified, string(user.Type),
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, otpgate.ErrEmailTaken
			}
			return nil, otpgate.ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", otpgate.ErrStoreUnavailable, err)
	}

	return &user, nil
}

func (s *Store) MarkVerified(ctx context.Context, email string) error {
	return s.updateOne(ctx,
		`UPDATE users SET verified = TRUE WHERE lower(email) = lower($1)`, email)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, email, newHash string) error {
	return s.updateOne(ctx,
		`UPDATE users SET password_hash = $2 WHERE lower(email) = lower($1)`, email, newHash)
}

func (s *Store) updateOne(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", otpgate.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return otpgate.ErrUserNotFound
	}
	return nil
}
