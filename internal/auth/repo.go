package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberlog/emberlog/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	CreateAccount(ctx context.Context, acct *Account) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
		SELECT id, email, password_hash, role, deleted, created_at, updated_at
		FROM owners
		WHERE email = $1
	`
	var acct Account
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&acct.ID, &acct.Email, &acct.PasswordHash, &acct.Role,
		&acct.Deleted, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &acct, nil
}

// CreateAccount inserts a new owner row with an empty journal document.
func (r *PGRepository) CreateAccount(ctx context.Context, acct *Account) error {
	const query = `
		INSERT INTO owners (id, email, password_hash, role, deleted, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, 0, '{"emotions":[],"days":[]}', $5, $5)
	`
	_, err := r.pool.Exec(ctx, query, acct.ID, acct.Email, acct.PasswordHash, acct.Role, acct.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
