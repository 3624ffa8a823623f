package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, email, profile_image_url, coin_balance,
			spotify_access_token, spotify_refresh_token, spotify_token_expiry,
			created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.ProfileImageURL,
		&user.CoinBalance,
		&user.SpotifyAccessToken,
		&user.SpotifyRefreshToken,
		&user.SpotifyTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Upsert creates or updates a user's profile. The coin balance and provider
// tokens are left alone on update; they have their own mutation paths.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, email, profile_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = NOW()
		RETURNING coin_balance, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.ProfileImageURL,
	).Scan(&user.CoinBalance, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// UpdateSpotifyTokens stores the linked-provider tokens for a user.
func (r *UserRepository) UpdateSpotifyTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	query := `
		UPDATE users
		SET spotify_access_token = $2, spotify_refresh_token = $3,
			spotify_token_expiry = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, accessToken, refreshToken, expiry)
	if err != nil {
		return fmt.Errorf("updating spotify tokens: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCoins atomically credits a user's coin balance.
func (r *UserRepository) AddCoins(ctx context.Context, id string, amount int) error {
	query := `
		UPDATE users
		SET coin_balance = coin_balance + $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("crediting coins: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
