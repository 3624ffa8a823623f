package db

import (
	"context"
	"fmt"
)

// schema is applied on startup. Statements are idempotent so restarting
// against an existing database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		email TEXT,
		profile_image_url TEXT,
		coin_balance INTEGER NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
		spotify_access_token TEXT,
		spotify_refresh_token TEXT,
		spotify_token_expiry TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album_cover TEXT,
		spotify_track_id TEXT UNIQUE,
		preview_url TEXT,
		duration INTEGER NOT NULL DEFAULT 0,
		uploaded_by TEXT REFERENCES users(id),
		plays INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		shares INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS listening_sessions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		track_id UUID NOT NULL REFERENCES tracks(id),
		duration INTEGER NOT NULL DEFAULT 0,
		coins_earned INTEGER NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listening_sessions_user_created
		ON listening_sessions (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_interactions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		target_id TEXT NOT NULL,
		target_type TEXT NOT NULL,
		interaction_type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, target_id, target_type, interaction_type)
	)`,
	`CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		token_expiry TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires
		ON auth_sessions (expires_at)`,
}

// migrate creates the schema if it does not exist yet.
func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
