// Package feed implements the discovery feed ranking policy.
package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/ninja99524/hypestream/internal/db"
)

// DefaultLimit is the feed length when the caller does not specify one.
const DefaultLimit = 20

// Rank orders tracks for a viewing user: the featured uploader's tracks
// first, then the viewer's own uploads, then everything else, each tier
// newest first. The policy is fixed and fully deterministic; no engagement
// signal participates.
func Rank(tracks []db.Track, featuredUploaderID, viewerID string, limit int) []db.Track {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]db.Track, len(tracks))
	copy(ranked, tracks)

	sort.SliceStable(ranked, func(i, j int) bool {
		ti := tier(ranked[i], featuredUploaderID, viewerID)
		tj := tier(ranked[j], featuredUploaderID, viewerID)
		if ti != tj {
			return ti < tj
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func tier(track db.Track, featuredUploaderID, viewerID string) int {
	switch {
	case track.UploadedBy != nil && *track.UploadedBy == featuredUploaderID:
		return 0
	case track.UploadedBy != nil && *track.UploadedBy == viewerID:
		return 1
	default:
		return 2
	}
}

// Service produces discovery feeds from the track catalog.
type Service struct {
	store              db.Store
	featuredUploaderID string
}

// New creates a feed service. The featured uploader is a promotional override
// supplied through configuration.
func New(store db.Store, featuredUploaderID string) *Service {
	return &Service{
		store:              store,
		featuredUploaderID: featuredUploaderID,
	}
}

// Discover returns the ranked feed for a viewing user.
func (s *Service) Discover(ctx context.Context, viewerID string, limit int) ([]db.Track, error) {
	tracks, err := s.store.Tracks().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return Rank(tracks, s.featuredUploaderID, viewerID, limit), nil
}
