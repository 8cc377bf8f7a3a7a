package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/user/entity"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. A taken username yields apperr.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.JoinAt, u.LastLoginAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("user %q: %w", u.Username, apperr.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetPasswordHash returns the stored hash for username or apperr.ErrNotFound.
func (r *UserRepo) GetPasswordHash(ctx context.Context, username string) (string, error) {
	const q = `SELECT password_hash FROM users WHERE username = $1`
	var hash string
	if err := r.db.GetContext(ctx, &hash, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash, nil
}

// TouchLogin sets last_login_at. Unknown usernames update nothing.
func (r *UserRepo) TouchLogin(ctx context.Context, username string, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2 WHERE username = $1`
	if _, err := r.db.ExecContext(ctx, q, username, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns the public fields of every user.
func (r *UserRepo) List(ctx context.Context) ([]entity.Summary, error) {
	const q = `SELECT username, first_name, last_name, phone FROM users ORDER BY username`
	users := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// GetByUsername fetches the profile without the password hash.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const q = `SELECT username, first_name, last_name, phone, join_at, last_login_at
		FROM users WHERE username = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}
