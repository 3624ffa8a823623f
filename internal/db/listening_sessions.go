package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListeningSessionRepository handles listening-session database operations.
type ListeningSessionRepository struct {
	pool *pgxpool.Pool
}

// Start inserts a new session and credits the track's play counter in the
// same transaction. A play is credited at playback start, not at completion.
func (r *ListeningSessionRepository) Start(ctx context.Context, session *ListeningSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE tracks SET plays = plays + 1 WHERE id = $1`, session.TrackID)
	if err != nil {
		return fmt.Errorf("crediting play counter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	query := `
		INSERT INTO listening_sessions (id, user_id, track_id, duration, coins_earned, completed, created_at)
		VALUES ($1, $2, $3, 0, 0, FALSE, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, query, session.ID, session.UserID, session.TrackID).Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	session.Duration = 0
	session.CoinsEarned = 0
	session.Completed = false

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (r *ListeningSessionRepository) Get(ctx context.Context, id uuid.UUID) (*ListeningSession, error) {
	query := `
		SELECT id, user_id, track_id, duration, coins_earned, completed, created_at
		FROM listening_sessions
		WHERE id = $1
	`
	var session ListeningSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.TrackID,
		&session.Duration,
		&session.CoinsEarned,
		&session.Completed,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &session, nil
}

// Finish persists the final progress report and credits the user's balance in
// the same transaction. The completed flag doubles as the reward guard: once
// set, later reports leave the session and the balance untouched.
func (r *ListeningSessionRepository) Finish(ctx context.Context, id uuid.UUID, duration, coins int, completed bool) (*ListeningSession, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var session ListeningSession
	query := `
		SELECT id, user_id, track_id, duration, coins_earned, completed, created_at
		FROM listening_sessions
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.TrackID,
		&session.Duration,
		&session.CoinsEarned,
		&session.Completed,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying session: %w", err)
	}

	if session.Completed {
		return &session, true, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE listening_sessions
		SET duration = $2, coins_earned = $3, completed = $4
		WHERE id = $1
	`, id, duration, coins, completed)
	if err != nil {
		return nil, false, fmt.Errorf("updating session: %w", err)
	}

	if coins > 0 {
		result, err := tx.Exec(ctx, `
			UPDATE users SET coin_balance = coin_balance + $2, updated_at = NOW() WHERE id = $1
		`, session.UserID, coins)
		if err != nil {
			return nil, false, fmt.Errorf("crediting coins: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, false, ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing transaction: %w", err)
	}

	session.Duration = duration
	session.CoinsEarned = coins
	session.Completed = completed
	return &session, false, nil
}

// StatsSince counts a user's sessions created at or after since and sums the
// coins they earned.
func (r *ListeningSessionRepository) StatsSince(ctx context.Context, userID string, since time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(coins_earned), 0)
		FROM listening_sessions
		WHERE user_id = $1 AND created_at >= $2
	`
	var streams, coins int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&streams, &coins); err != nil {
		return 0, 0, fmt.Errorf("querying session stats: %w", err)
	}
	return streams, coins, nil
}
