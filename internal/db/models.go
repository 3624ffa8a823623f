package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user. Users are created on first login;
// the coin balance is mutated only through listening-session rewards and the
// Spotify tokens only through the provider-link flow.
type User struct {
	ID                  string
	DisplayName         string
	Email               *string // nullable
	ProfileImageURL     *string // nullable
	CoinBalance         int
	SpotifyAccessToken  *string    // nullable
	SpotifyRefreshToken *string    // nullable
	SpotifyTokenExpiry  *time.Time // nullable
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Track represents a track in the catalog, either uploaded by a user or
// imported from Spotify. Plays, Likes and Shares are lifetime counters and
// only ever increase.
type Track struct {
	ID             uuid.UUID
	Title          string
	Artist         string
	AlbumCover     *string // nullable
	SpotifyTrackID *string // nullable, unique when present
	PreviewURL     *string // nullable
	Duration       int     // seconds
	UploadedBy     *string // nullable for system-imported tracks
	Plays          int
	Likes          int
	Shares         int
	CreatedAt      time.Time
}

// ListeningSession represents one playback attempt by a user on a track.
type ListeningSession struct {
	ID          uuid.UUID
	UserID      string
	TrackID     uuid.UUID
	Duration    int // seconds listened
	CoinsEarned int
	Completed   bool
	CreatedAt   time.Time
}

// TargetType discriminates what an interaction points at.
type TargetType string

// Interaction target kinds.
const (
	TargetUser  TargetType = "user"
	TargetTrack TargetType = "track"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	return t == TargetUser || t == TargetTrack
}

// InteractionType identifies the kind of user-to-target relationship.
type InteractionType string

// Interaction kinds.
const (
	InteractionLike        InteractionType = "like"
	InteractionShare       InteractionType = "share"
	InteractionFollow      InteractionType = "follow"
	InteractionPlaylistAdd InteractionType = "playlist_add"
)

// Valid reports whether it is a known interaction type.
func (it InteractionType) Valid() bool {
	switch it {
	case InteractionLike, InteractionShare, InteractionFollow, InteractionPlaylistAdd:
		return true
	}
	return false
}

// Target is a tagged reference to either a user or a track.
type Target struct {
	Type TargetType
	ID   string
}

// UserInteraction represents an active toggleable relationship between a user
// and a target. At most one row exists per (user, target, targetType,
// interactionType) tuple; presence means active.
type UserInteraction struct {
	ID              uuid.UUID
	UserID          string
	TargetID        string
	TargetType      TargetType
	InteractionType InteractionType
	CreatedAt       time.Time
}

// CounterField names a track counter that a store operation may bump.
type CounterField string

// Track counters adjustable through interactions.
const (
	CounterNone   CounterField = ""
	CounterLikes  CounterField = "likes"
	CounterShares CounterField = "shares"
)

// AuthSession represents an authenticated web session.
type AuthSession struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
