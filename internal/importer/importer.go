// Package importer copies a provider artist's catalog into the local track
// store.
package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ninja99524/hypestream/internal/db"
	"github.com/ninja99524/hypestream/internal/spotify"
)

// CatalogProvider fetches an artist's full catalog from the music provider.
type CatalogProvider interface {
	ArtistCatalog(ctx context.Context, artistID string) ([]spotify.CatalogTrack, error)
}

// Service imports provider catalogs into the track store.
type Service struct {
	store    db.Store
	provider CatalogProvider
	artistID string
}

// New creates an import service. The artist is the configured featured
// artist whose catalog seeds the app.
func New(store db.Store, provider CatalogProvider, artistID string) *Service {
	return &Service{
		store:    store,
		provider: provider,
		artistID: artistID,
	}
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
}

// ImportArtist fetches the configured artist's catalog and creates a track
// for each entry not already present, owned by the importing user. Tracks are
// matched against the existing catalog by provider track ID. A failure to
// fetch the catalog aborts the import; a failure to create one track is
// logged and skipped so the rest of the run still lands.
func (s *Service) ImportArtist(ctx context.Context, userID string) (*Result, error) {
	catalog, err := s.provider.ArtistCatalog(ctx, s.artistID)
	if err != nil {
		return nil, fmt.Errorf("fetching artist catalog: %w", err)
	}

	existing, err := s.store.Tracks().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading existing tracks: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, track := range existing {
		if track.SpotifyTrackID != nil {
			known[*track.SpotifyTrackID] = true
		}
	}

	logrus.WithFields(logrus.Fields{
		"artist": s.artistID,
		"tracks": len(catalog),
	}).Info("importing artist catalog")

	result := &Result{}
	for _, entry := range catalog {
		if known[entry.ID] {
			result.Skipped++
			continue
		}

		track := toTrack(entry, userID)
		if err := s.store.Tracks().Create(ctx, track); err != nil {
			logrus.WithError(err).WithField("title", entry.Title).Warn("skipping track import")
			result.Skipped++
			continue
		}
		known[entry.ID] = true
		result.Imported++
	}

	logrus.WithFields(logrus.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("finished importing artist catalog")
	return result, nil
}

// toTrack converts a provider catalog entry to a track owned by userID.
func toTrack(entry spotify.CatalogTrack, userID string) *db.Track {
	spotifyID := entry.ID
	track := &db.Track{
		ID:             uuid.New(),
		Title:          entry.Title,
		Artist:         entry.Artist,
		SpotifyTrackID: &spotifyID,
		Duration:       entry.Duration,
		UploadedBy:     &userID,
	}
	if entry.AlbumCoverURL != "" {
		cover := entry.AlbumCoverURL
		track.AlbumCover = &cover
	}
	if entry.PreviewURL != "" {
		preview := entry.PreviewURL
		track.PreviewURL = &preview
	}
	return track
}
