package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/ninja99524/hypestream/internal/db"
	"github.com/ninja99524/hypestream/internal/feed"
	"github.com/ninja99524/hypestream/internal/importer"
	"github.com/ninja99524/hypestream/internal/interactions"
	"github.com/ninja99524/hypestream/internal/rewards"
	"github.com/ninja99524/hypestream/internal/spotify"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr                string
	SpotifyClientID     string
	SpotifyClientSecret string
	RedirectURL         string
	FeaturedUploaderID  string
	FeaturedArtistID    string
	StatsLocation       *time.Location
	Store               db.Store
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions SessionManager
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}

	// Create Spotify authenticator for the login flow
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.SpotifyClientID),
		spotifyauth.WithClientSecret(cfg.SpotifyClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopeUserLibraryRead,
		),
	)

	// Auth sessions live next to the data: in memory for the dev store,
	// in Postgres otherwise.
	var sessions SessionManager
	if _, ok := cfg.Store.(*db.MemStore); ok {
		sessions = NewSessionStore()
	} else {
		sessions = NewDBSessionStore(cfg.Store)
	}

	// App-level client for catalog import and anonymous search
	appClient := spotify.NewAppClient(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	statsLoc := cfg.StatsLocation
	if statsLoc == nil {
		statsLoc = time.Local
	}

	handlers := NewHandlers(HandlerDeps{
		Auth:         auth,
		Sessions:     sessions,
		Store:        cfg.Store,
		Rewards:      rewards.New(cfg.Store, rewards.WithLocation(statsLoc)),
		Feed:         feed.New(cfg.Store, cfg.FeaturedUploaderID),
		Interactions: interactions.New(cfg.Store),
		Importer:     importer.New(cfg.Store, appClient, cfg.FeaturedArtistID),
		AppClient:    appClient,
	})

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		sessions: sessions,
		handlers: handlers,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handlers.Health)

	// Auth routes
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	// API routes require an authenticated session
	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.handlers.RequireSession)

		r.Get("/auth/user", s.handlers.CurrentUser)

		r.Get("/tracks", s.handlers.ListTracks)
		r.Post("/tracks", s.handlers.CreateTrack)
		r.Get("/tracks/discovery", s.handlers.DiscoveryFeed)
		r.Post("/tracks/{id}/play", s.handlers.StartPlayback)

		r.Put("/listening-sessions/{id}", s.handlers.ReportProgress)

		r.Post("/interactions", s.handlers.ToggleInteraction)

		r.Get("/users/{id}/stats", s.handlers.UserStats)

		r.Post("/spotify/import", s.handlers.ImportCatalog)
		r.Get("/spotify/search", s.handlers.SearchTracks)
	})
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logrus.Infof("starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		logrus.Info("shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logrus.Info("server stopped")
	return nil
}
