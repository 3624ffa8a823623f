package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InteractionRepository handles user-interaction database operations.
type InteractionRepository struct {
	pool *pgxpool.Pool
}

// Toggle deletes the interaction row if the tuple exists, otherwise inserts
// it. On insert, bump names the lifetime track counter to credit inside the
// same transaction. Removal never decrements a counter.
func (r *InteractionRepository) Toggle(ctx context.Context, row *UserInteraction, bump CounterField) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		DELETE FROM user_interactions
		WHERE user_id = $1 AND target_id = $2 AND target_type = $3 AND interaction_type = $4
	`, row.UserID, row.TargetID, row.TargetType, row.InteractionType)
	if err != nil {
		return false, fmt.Errorf("deleting interaction: %w", err)
	}

	created := result.RowsAffected() == 0
	if created {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		query := `
			INSERT INTO user_interactions (id, user_id, target_id, target_type, interaction_type, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING created_at
		`
		err := tx.QueryRow(ctx, query,
			row.ID,
			row.UserID,
			row.TargetID,
			row.TargetType,
			row.InteractionType,
		).Scan(&row.CreatedAt)
		if err != nil {
			return false, fmt.Errorf("inserting interaction: %w", err)
		}

		if bump != CounterNone {
			trackID, err := uuid.Parse(row.TargetID)
			if err != nil {
				return false, fmt.Errorf("parsing track target %q: %w", row.TargetID, err)
			}
			// Counter column names come from the CounterField enum, never
			// from request input.
			stmt := fmt.Sprintf(`UPDATE tracks SET %s = %s + 1 WHERE id = $1`, bump, bump)
			result, err := tx.Exec(ctx, stmt, trackID)
			if err != nil {
				return false, fmt.Errorf("crediting %s counter: %w", bump, err)
			}
			if result.RowsAffected() == 0 {
				return false, ErrNotFound
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return created, nil
}

// ActiveCount counts the active interaction rows for a target.
func (r *InteractionRepository) ActiveCount(ctx context.Context, target Target, interactionType InteractionType) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_interactions
		WHERE target_id = $1 AND target_type = $2 AND interaction_type = $3
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, target.ID, target.Type, interactionType).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return count, nil
}
