package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// SearchTracks searches the provider catalog for tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]CatalogTrack, error) {
	if limit <= 0 {
		limit = 20
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Market(market), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]CatalogTrack, 0, len(result.Tracks.Tracks))
	for _, track := range result.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(track))
	}
	return tracks, nil
}
