package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used when no DATABASE_URL is configured and
// by tests. All operations run under one mutex, so each store call is a
// single atomic unit just like the transactional Postgres paths.
type MemStore struct {
	mu           sync.Mutex
	users        map[string]*User
	tracks       map[uuid.UUID]*Track
	sessions     map[uuid.UUID]*ListeningSession
	interactions map[interactionKey]*UserInteraction
	authSessions map[string]*AuthSession
}

type interactionKey struct {
	userID          string
	targetID        string
	targetType      TargetType
	interactionType InteractionType
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:        make(map[string]*User),
		tracks:       make(map[uuid.UUID]*Track),
		sessions:     make(map[uuid.UUID]*ListeningSession),
		interactions: make(map[interactionKey]*UserInteraction),
		authSessions: make(map[string]*AuthSession),
	}
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() {}

// Users returns the user store.
func (m *MemStore) Users() UserStore { return (*memUsers)(m) }

// Tracks returns the track store.
func (m *MemStore) Tracks() TrackStore { return (*memTracks)(m) }

// ListeningSessions returns the listening-session store.
func (m *MemStore) ListeningSessions() ListeningSessionStore { return (*memSessions)(m) }

// Interactions returns the interaction store.
func (m *MemStore) Interactions() InteractionStore { return (*memInteractions)(m) }

// AuthSessions returns the auth-session store.
func (m *MemStore) AuthSessions() AuthSessionStore { return (*memAuthSessions)(m) }

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

type memUsers MemStore

func (m *memUsers) Get(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUsers) Upsert(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.users[user.ID]; ok {
		existing.DisplayName = user.DisplayName
		existing.Email = user.Email
		existing.ProfileImageURL = user.ProfileImageURL
		existing.UpdatedAt = now
		user.CoinBalance = existing.CoinBalance
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = now
		return nil
	}

	copied := *user
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.users[user.ID] = &copied
	user.CreatedAt = copied.CreatedAt
	user.UpdatedAt = copied.UpdatedAt
	return nil
}

func (m *memUsers) UpdateSpotifyTokens(_ context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	user.SpotifyAccessToken = &accessToken
	user.SpotifyRefreshToken = &refreshToken
	user.SpotifyTokenExpiry = &expiry
	user.UpdatedAt = time.Now()
	return nil
}

func (m *memUsers) AddCoins(_ context.Context, id string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	user.CoinBalance += amount
	user.UpdatedAt = time.Now()
	return nil
}

// ----------------------------------------------------------------------------
// Tracks
// ----------------------------------------------------------------------------

type memTracks MemStore

func (m *memTracks) Create(_ context.Context, track *Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	copied := *track
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.tracks[track.ID] = &copied
	track.CreatedAt = copied.CreatedAt
	return nil
}

func (m *memTracks) Get(_ context.Context, id uuid.UUID) (*Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, ok := m.tracks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *track
	return &copied, nil
}

func (m *memTracks) List(ctx context.Context, limit int) ([]Track, error) {
	tracks, err := m.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (m *memTracks) All(_ context.Context) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracks := make([]Track, 0, len(m.tracks))
	for _, track := range m.tracks {
		tracks = append(tracks, *track)
	}
	// Newest first, matching the Postgres ordering.
	sortTracksByCreatedAtDesc(tracks)
	return tracks, nil
}

func sortTracksByCreatedAtDesc(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.After(tracks[j].CreatedAt)
	})
}

// ----------------------------------------------------------------------------
// Listening sessions
// ----------------------------------------------------------------------------

type memSessions MemStore

func (m *memSessions) Start(_ context.Context, session *ListeningSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, ok := m.tracks[session.TrackID]
	if !ok {
		return ErrNotFound
	}
	track.Plays++

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.Duration = 0
	session.CoinsEarned = 0
	session.Completed = false
	copied := *session
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.sessions[session.ID] = &copied
	session.CreatedAt = copied.CreatedAt
	return nil
}

func (m *memSessions) Get(_ context.Context, id uuid.UUID) (*ListeningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memSessions) Finish(_ context.Context, id uuid.UUID, duration, coins int, completed bool) (*ListeningSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, false, ErrNotFound
	}

	if session.Completed {
		copied := *session
		return &copied, true, nil
	}

	if coins > 0 {
		user, ok := m.users[session.UserID]
		if !ok {
			return nil, false, ErrNotFound
		}
		user.CoinBalance += coins
	}

	session.Duration = duration
	session.CoinsEarned = coins
	session.Completed = completed
	copied := *session
	return &copied, false, nil
}

func (m *memSessions) StatsSince(_ context.Context, userID string, since time.Time) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var streams, coins int
	for _, session := range m.sessions {
		if session.UserID != userID || session.CreatedAt.Before(since) {
			continue
		}
		streams++
		coins += session.CoinsEarned
	}
	return streams, coins, nil
}

// ----------------------------------------------------------------------------
// Interactions
// ----------------------------------------------------------------------------

type memInteractions MemStore

func (m *memInteractions) Toggle(_ context.Context, row *UserInteraction, bump CounterField) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := interactionKey{
		userID:          row.UserID,
		targetID:        row.TargetID,
		targetType:      row.TargetType,
		interactionType: row.InteractionType,
	}
	if _, ok := m.interactions[key]; ok {
		delete(m.interactions, key)
		return false, nil
	}

	if bump != CounterNone {
		trackID, err := uuid.Parse(row.TargetID)
		if err != nil {
			return false, err
		}
		track, ok := m.tracks[trackID]
		if !ok {
			return false, ErrNotFound
		}
		switch bump {
		case CounterLikes:
			track.Likes++
		case CounterShares:
			track.Shares++
		}
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	copied := *row
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.interactions[key] = &copied
	row.CreatedAt = copied.CreatedAt
	return true, nil
}

func (m *memInteractions) ActiveCount(_ context.Context, target Target, interactionType InteractionType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int
	for key := range m.interactions {
		if key.targetID == target.ID && key.targetType == target.Type && key.interactionType == interactionType {
			count++
		}
	}
	return count, nil
}

// ----------------------------------------------------------------------------
// Auth sessions
// ----------------------------------------------------------------------------

type memAuthSessions MemStore

func (m *memAuthSessions) Create(_ context.Context, session *AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *session
	m.authSessions[session.ID] = &copied
	return nil
}

func (m *memAuthSessions) Get(_ context.Context, id string) (*AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.authSessions[id]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memAuthSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.authSessions, id)
	return nil
}

func (m *memAuthSessions) UpdateToken(_ context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.authSessions[id]
	if !ok {
		return ErrNotFound
	}
	session.AccessToken = accessToken
	session.RefreshToken = refreshToken
	session.TokenExpiry = expiry
	return nil
}
