package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/ninja99524/hypestream/internal/db"
)

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := generateOAuthState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate state", err)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback). The user
// is created on first authentication, and the provider tokens are stored on
// the user record, which is the whole of the provider-link flow.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing state cookie", nil)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		respondError(w, http.StatusBadRequest, "State mismatch", nil)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Spotify auth error: %s", errMsg), nil)
		return
	}

	// Exchange code for token
	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to get token", err)
		return
	}

	// Get user info from Spotify
	client := spotifyapi.New(h.auth.Client(r.Context(), token))
	profile, err := client.CurrentUser(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to get user info", err)
		return
	}

	user := &db.User{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
	}
	if profile.Email != "" {
		email := profile.Email
		user.Email = &email
	}
	if len(profile.Images) > 0 {
		image := profile.Images[0].URL
		user.ProfileImageURL = &image
	}
	if err := h.store.Users().Upsert(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save user", err)
		return
	}
	if err := h.store.Users().UpdateSpotifyTokens(r.Context(), user.ID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save tokens", err)
		return
	}

	// Create session
	session, err := h.sessions.Create(r.Context(), token, user.ID, user.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
