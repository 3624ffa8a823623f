// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	// DefaultAddr uses explicit IPv4 loopback as required by Spotify for
	// local development redirect URIs.
	DefaultAddr        = "127.0.0.1:8080"
	DefaultRedirectURL = "http://127.0.0.1:8080/callback"

	// Promotional defaults carried over from the original deployment; both
	// are overridable so the policy can change without a redeploy.
	DefaultFeaturedUploaderID = "43385992"
	DefaultFeaturedArtistID   = "12IcqpWZgrkPLmUboLa1Bb"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds application configuration.
type Config struct {
	Addr                string
	DatabaseURL         string // empty selects the in-memory store
	SpotifyClientID     string
	SpotifyClientSecret string
	RedirectURL         string
	FeaturedUploaderID  string
	FeaturedArtistID    string
	StatsLocation       *time.Location // bounds "today" for user stats
}

// Load reads configuration from the environment, consulting a .env file when
// present. Returns ErrMissingCredentials if the Spotify credentials are not
// set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	loc := time.Local
	if tz := os.Getenv("STATS_TZ"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("parsing STATS_TZ: %w", err)
		}
		loc = parsed
	}

	return &Config{
		Addr:                getenv("ADDR", DefaultAddr),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SpotifyClientID:     clientID,
		SpotifyClientSecret: clientSecret,
		RedirectURL:         getenv("REDIRECT_URL", DefaultRedirectURL),
		FeaturedUploaderID:  getenv("FEATURED_UPLOADER_ID", DefaultFeaturedUploaderID),
		FeaturedArtistID:    getenv("FEATURED_ARTIST_ID", DefaultFeaturedArtistID),
		StatsLocation:       loc,
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
