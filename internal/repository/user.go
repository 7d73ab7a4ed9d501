package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/relaychat/relay/internal/model"
)

// CreateUser inserts a new user into the database.
// The caller supplies PublicID; ID is assigned by the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (public_id, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		user.PublicID,
		strings.ToLower(user.Email),
		user.DisplayName,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal numeric id.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, public_id, email, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByPublicID retrieves a user by their public string id.
func (r *Repository) GetUserByPublicID(ctx context.Context, publicID string) (*model.User, error) {
	query := `
		SELECT id, public_id, email, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE public_id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, publicID))
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, public_id, email, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

// GetOrCreateUser gets a user by email or creates one if not found.
// Used by the OAuth callback, where the identity provider vouches for the
// email address.
func (r *Repository) GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := r.CreateUser(ctx, user); err != nil {
		// Handle race condition - another request may have created it
		if errors.Is(err, ErrEmailExists) {
			return r.GetUserByEmail(ctx, user.Email)
		}
		return nil, err
	}

	return user, nil
}

func (r *Repository) scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.PublicID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
