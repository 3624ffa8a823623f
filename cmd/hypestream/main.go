// Command hypestream runs the HypeStream music-discovery web application.
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ninja99524/hypestream/internal/config"
	"github.com/ninja99524/hypestream/internal/db"
	"github.com/ninja99524/hypestream/internal/web"
)

func main() {
	if err := run(); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}

func run() error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var store db.Store
	if cfg.DatabaseURL == "" {
		logrus.Warn("DATABASE_URL not set, using in-memory store")
		store = db.NewMemStore()
	} else {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		store = database
	}
	defer store.Close()

	server, err := web.NewServer(web.ServerConfig{
		Addr:                cfg.Addr,
		SpotifyClientID:     cfg.SpotifyClientID,
		SpotifyClientSecret: cfg.SpotifyClientSecret,
		RedirectURL:         cfg.RedirectURL,
		FeaturedUploaderID:  cfg.FeaturedUploaderID,
		FeaturedArtistID:    cfg.FeaturedArtistID,
		StatsLocation:       cfg.StatsLocation,
		Store:               store,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
