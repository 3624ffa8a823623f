package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/ninja99524/hypestream/internal/db"
	"github.com/ninja99524/hypestream/internal/feed"
	"github.com/ninja99524/hypestream/internal/importer"
	"github.com/ninja99524/hypestream/internal/interactions"
	"github.com/ninja99524/hypestream/internal/rewards"
	"github.com/ninja99524/hypestream/internal/spotify"
)

// HandlerDeps bundles the collaborators the handlers call into.
type HandlerDeps struct {
	Auth         *spotifyauth.Authenticator
	Sessions     SessionManager
	Store        db.Store
	Rewards      *rewards.Service
	Feed         *feed.Service
	Interactions *interactions.Service
	Importer     *importer.Service
	AppClient    *spotify.Client
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth         *spotifyauth.Authenticator
	sessions     SessionManager
	store        db.Store
	rewards      *rewards.Service
	feed         *feed.Service
	interactions *interactions.Service
	importer     *importer.Service
	appClient    *spotify.Client
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps HandlerDeps) *Handlers {
	return &Handlers{
		auth:         deps.Auth,
		sessions:     deps.Sessions,
		store:        deps.Store,
		rewards:      deps.Rewards,
		feed:         deps.Feed,
		interactions: deps.Interactions,
		importer:     deps.Importer,
		appClient:    deps.AppClient,
	}
}

// ----------------------------------------------------------------------------
// Session middleware
// ----------------------------------------------------------------------------

type contextKey int

const sessionContextKey contextKey = iota

// RequireSession rejects requests without a valid session cookie and stashes
// the session on the request context otherwise.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.sessions.GetFromRequest(r)
		if session == nil {
			respondError(w, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session stored by RequireSession.
func sessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// ----------------------------------------------------------------------------
// JSON shapes
// ----------------------------------------------------------------------------

type userJSON struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"displayName"`
	Email           *string   `json:"email,omitempty"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CoinBalance     int       `json:"coinBalance"`
	SpotifyLinked   bool      `json:"spotifyLinked"`
	CreatedAt       time.Time `json:"createdAt"`
}

type trackJSON struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	AlbumCover     *string   `json:"albumCover,omitempty"`
	SpotifyTrackID *string   `json:"spotifyTrackId,omitempty"`
	PreviewURL     *string   `json:"previewUrl,omitempty"`
	Duration       int       `json:"duration"`
	UploadedBy     *string   `json:"uploadedBy,omitempty"`
	Plays          int       `json:"plays"`
	Likes          int       `json:"likes"`
	Shares         int       `json:"shares"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toUserJSON(user *db.User) userJSON {
	return userJSON{
		ID:              user.ID,
		DisplayName:     user.DisplayName,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		CoinBalance:     user.CoinBalance,
		SpotifyLinked:   user.SpotifyAccessToken != nil,
		CreatedAt:       user.CreatedAt,
	}
}

func toTrackJSON(track db.Track) trackJSON {
	return trackJSON{
		ID:             track.ID,
		Title:          track.Title,
		Artist:         track.Artist,
		AlbumCover:     track.AlbumCover,
		SpotifyTrackID: track.SpotifyTrackID,
		PreviewURL:     track.PreviewURL,
		Duration:       track.Duration,
		UploadedBy:     track.UploadedBy,
		Plays:          track.Plays,
		Likes:          track.Likes,
		Shares:         track.Shares,
		CreatedAt:      track.CreatedAt,
	}
}

func toTrackList(tracks []db.Track) []trackJSON {
	out := make([]trackJSON, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, toTrackJSON(track))
	}
	return out
}

// ----------------------------------------------------------------------------
// Handlers
// ----------------------------------------------------------------------------

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CurrentUser returns the authenticated user's profile (GET /api/auth/user).
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	user, err := h.store.Users().Get(r.Context(), session.UserID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch user", err)
		return
	}
	respondJSON(w, http.StatusOK, toUserJSON(user))
}

// ListTracks returns recent tracks (GET /api/tracks).
func (h *Handlers) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.store.Tracks().List(r.Context(), limitParam(r, feed.DefaultLimit))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tracks", err)
		return
	}
	respondJSON(w, http.StatusOK, toTrackList(tracks))
}

type createTrackRequest struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	AlbumCover *string `json:"albumCover"`
	PreviewURL *string `json:"previewUrl"`
	Duration   int     `json:"duration"`
}

// CreateTrack uploads track metadata (POST /api/tracks).
func (h *Handlers) CreateTrack(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req createTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" || req.Artist == "" || req.Duration < 0 {
		respondError(w, http.StatusBadRequest, "Title and artist are required", nil)
		return
	}

	track := &db.Track{
		ID:         uuid.New(),
		Title:      req.Title,
		Artist:     req.Artist,
		AlbumCover: req.AlbumCover,
		PreviewURL: req.PreviewURL,
		Duration:   req.Duration,
		UploadedBy: &session.UserID,
	}
	if err := h.store.Tracks().Create(r.Context(), track); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create track", err)
		return
	}
	respondJSON(w, http.StatusCreated, toTrackJSON(*track))
}

// DiscoveryFeed returns the ranked feed for the viewer (GET /api/tracks/discovery).
func (h *Handlers) DiscoveryFeed(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	tracks, err := h.feed.Discover(r.Context(), session.UserID, limitParam(r, 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch discovery feed", err)
		return
	}
	respondJSON(w, http.StatusOK, toTrackList(tracks))
}

// StartPlayback opens a listening session (POST /api/tracks/{id}/play).
func (h *Handlers) StartPlayback(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	trackID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid track ID", nil)
		return
	}

	listening, err := h.rewards.Start(r.Context(), session.UserID, trackID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Track not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to start playback", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uuid.UUID{"sessionId": listening.ID})
}

type progressRequest struct {
	Duration int `json:"duration"`
}

type progressResponse struct {
	CoinsEarned int  `json:"coinsEarned"`
	Completed   bool `json:"completed"`
}

// ReportProgress applies a cumulative progress report to a listening session
// (PUT /api/listening-sessions/{id}).
func (h *Handlers) ReportProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	progress, err := h.rewards.ReportProgress(r.Context(), sessionID, req.Duration)
	if errors.Is(err, rewards.ErrInvalidDuration) {
		respondError(w, http.StatusBadRequest, "Duration must not be negative", nil)
		return
	}
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update listening session", err)
		return
	}
	respondJSON(w, http.StatusOK, progressResponse{
		CoinsEarned: progress.CoinsEarned,
		Completed:   progress.Completed,
	})
}

type interactionRequest struct {
	TargetID        string `json:"targetId"`
	TargetType      string `json:"targetType"`
	InteractionType string `json:"interactionType"`
}

type interactionResponse struct {
	Action      string `json:"action"`
	ActiveCount int    `json:"activeCount"`
}

// ToggleInteraction flips a like/share/follow relationship
// (POST /api/interactions).
func (h *Handlers) ToggleInteraction(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	target := db.Target{Type: db.TargetType(req.TargetType), ID: req.TargetID}
	interactionType := db.InteractionType(req.InteractionType)

	action, err := h.interactions.Toggle(r.Context(), session.UserID, target, interactionType)
	if errors.Is(err, interactions.ErrInvalidTarget) {
		respondError(w, http.StatusBadRequest, "Invalid interaction target", nil)
		return
	}
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Target not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to handle interaction", err)
		return
	}

	active, err := h.interactions.ActiveCount(r.Context(), target, interactionType)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to handle interaction", err)
		return
	}
	respondJSON(w, http.StatusOK, interactionResponse{
		Action:      string(action),
		ActiveCount: active,
	})
}

type statsResponse struct {
	TodayStreams int `json:"todayStreams"`
	TodayCoins   int `json:"todayCoins"`
}

// UserStats reports today's listening stats for a user
// (GET /api/users/{id}/stats).
func (h *Handlers) UserStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	stats, err := h.rewards.TodayStats(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch user stats", err)
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{
		TodayStreams: stats.TodayStreams,
		TodayCoins:   stats.TodayCoins,
	})
}

type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCatalog imports the featured artist's catalog
// (POST /api/spotify/import).
func (h *Handlers) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	result, err := h.importer.ImportArtist(r.Context(), session.UserID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to import music", err)
		return
	}
	respondJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

type searchTrackJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	AlbumCover string `json:"albumCover,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Duration   int    `json:"duration"`
}

// SearchTracks searches the provider catalog (GET /api/spotify/search).
func (h *Handlers) SearchTracks(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing search query", nil)
		return
	}

	client := h.appClient
	if session.Token != nil && session.Token.AccessToken != "" {
		client = h.userClient(r, session)
	}

	results, err := client.SearchTracks(r.Context(), query, limitParam(r, 20))
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to search Spotify", err)
		return
	}

	out := make([]searchTrackJSON, 0, len(results))
	for _, track := range results {
		out = append(out, searchTrackJSON{
			ID:         track.ID,
			Title:      track.Title,
			Artist:     track.Artist,
			AlbumCover: track.AlbumCoverURL,
			PreviewURL: track.PreviewURL,
			Duration:   track.Duration,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// userClient builds a provider client from the session's OAuth token and
// persists the token if the transport refreshed it.
func (h *Handlers) userClient(r *http.Request, session *Session) *spotify.Client {
	api := spotifyapi.New(h.auth.Client(r.Context(), session.Token))
	if token, err := api.Token(); err == nil && token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(r.Context(), session.ID, token)
	}
	return spotify.New(api)
}

// limitParam parses the optional ?limit= query parameter.
func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
