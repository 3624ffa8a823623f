// Package db provides PostgreSQL database access for HypeStream.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// New creates a new database connection pool and runs schema migration.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Users returns the user store.
func (db *DB) Users() UserStore {
	return &UserRepository{pool: db.pool}
}

// Tracks returns the track store.
func (db *DB) Tracks() TrackStore {
	return &TrackRepository{pool: db.pool}
}

// ListeningSessions returns the listening-session store.
func (db *DB) ListeningSessions() ListeningSessionStore {
	return &ListeningSessionRepository{pool: db.pool}
}

// Interactions returns the interaction store.
func (db *DB) Interactions() InteractionStore {
	return &InteractionRepository{pool: db.pool}
}

// AuthSessions returns the auth-session store.
func (db *DB) AuthSessions() AuthSessionStore {
	return &AuthSessionRepository{pool: db.pool}
}
