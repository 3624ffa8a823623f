package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for the application. It is implemented by
// the PostgreSQL-backed DB and by the in-memory MemStore used for development
// and tests.
type Store interface {
	Users() UserStore
	Tracks() TrackStore
	ListeningSessions() ListeningSessionStore
	Interactions() InteractionStore
	AuthSessions() AuthSessionStore
	Close()
}

// UserStore handles user persistence.
type UserStore interface {
	// Get retrieves a user by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*User, error)

	// Upsert creates or updates a user's profile fields.
	Upsert(ctx context.Context, user *User) error

	// UpdateSpotifyTokens stores the linked-provider tokens for a user.
	UpdateSpotifyTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error

	// AddCoins atomically credits a user's coin balance.
	AddCoins(ctx context.Context, id string, amount int) error
}

// TrackStore handles track persistence.
type TrackStore interface {
	// Create inserts a new track.
	Create(ctx context.Context, track *Track) error

	// Get retrieves a track by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Track, error)

	// List returns up to limit tracks, newest first.
	List(ctx context.Context, limit int) ([]Track, error)

	// All returns the full catalog, newest first.
	All(ctx context.Context) ([]Track, error)
}

// ListeningSessionStore handles listening-session persistence.
type ListeningSessionStore interface {
	// Start inserts a new session and credits the track's play counter in the
	// same transaction. Returns ErrNotFound if the track does not exist.
	Start(ctx context.Context, session *ListeningSession) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*ListeningSession, error)

	// Finish persists the final progress report and, when coins > 0, credits
	// the user's balance in the same transaction. A session that is already
	// completed is left untouched and reported via alreadyDone, so a repeated
	// report can never award coins twice. Returns the session as stored after
	// the call.
	Finish(ctx context.Context, id uuid.UUID, duration, coins int, completed bool) (session *ListeningSession, alreadyDone bool, err error)

	// StatsSince counts a user's sessions created at or after since and sums
	// the coins they earned.
	StatsSince(ctx context.Context, userID string, since time.Time) (streams, coins int, err error)
}

// InteractionStore handles user-interaction persistence.
type InteractionStore interface {
	// Toggle inserts the interaction if the tuple is absent, or deletes the
	// existing row if present. On insert, bump names the track counter to
	// credit within the same transaction (CounterNone for no side effect).
	// Reports whether a row was created.
	Toggle(ctx context.Context, row *UserInteraction, bump CounterField) (created bool, err error)

	// ActiveCount counts the active interaction rows for a target, the
	// current-state complement to the lifetime track counters.
	ActiveCount(ctx context.Context, target Target, interactionType InteractionType) (int, error)
}

// AuthSessionStore handles web auth-session persistence.
type AuthSessionStore interface {
	Create(ctx context.Context, session *AuthSession) error
	Get(ctx context.Context, id string) (*AuthSession, error)
	Delete(ctx context.Context, id string) error
	UpdateToken(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error
}
