package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
)

// market pins catalog and search requests to one storefront so the same
// artist always yields the same track set.
const market = "US"

// CatalogTrack is a provider-side track, normalized for import.
type CatalogTrack struct {
	ID            string
	Title         string
	Artist        string
	AlbumCoverURL string // empty when the album has no art
	PreviewURL    string // empty when no preview is available
	Duration      int    // seconds
}

// ArtistCatalog fetches an artist's full catalog: top tracks plus every album
// and single track, deduplicated by provider track ID. A top-tracks or album
// listing failure aborts the fetch; a single album's track listing failure is
// logged and skipped.
func (c *Client) ArtistCatalog(ctx context.Context, artistID string) ([]CatalogTrack, error) {
	id := spotify.ID(artistID)

	top, err := c.api.GetArtistsTopTracks(ctx, id, market)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	var catalog []CatalogTrack
	seen := make(map[string]bool)
	add := func(track CatalogTrack) {
		if track.ID == "" || seen[track.ID] {
			return
		}
		seen[track.ID] = true
		catalog = append(catalog, track)
	}

	for _, track := range top {
		add(convertFullTrack(track))
	}

	albums, err := c.api.GetArtistAlbums(ctx, id,
		[]spotify.AlbumType{spotify.AlbumTypeAlbum, spotify.AlbumTypeSingle},
		spotify.Market(market), spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("fetching artist albums: %w", err)
	}

	for _, album := range albums.Albums {
		tracks, err := c.api.GetAlbumTracks(ctx, album.ID)
		if err != nil {
			logrus.WithError(err).WithField("album", album.Name).Warn("skipping album tracks")
			continue
		}
		for _, track := range tracks.Tracks {
			add(convertSimpleTrack(track, album.Images))
		}
	}

	return catalog, nil
}

// convertFullTrack converts a Spotify FullTrack to a CatalogTrack.
func convertFullTrack(track spotify.FullTrack) CatalogTrack {
	return convertSimpleTrack(track.SimpleTrack, track.Album.Images)
}

// convertSimpleTrack converts a Spotify SimpleTrack to a CatalogTrack, taking
// album art from the given image set (largest first, per the API).
func convertSimpleTrack(track spotify.SimpleTrack, images []spotify.Image) CatalogTrack {
	var artist string
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	var cover string
	if len(images) > 0 {
		cover = images[0].URL
	}

	return CatalogTrack{
		ID:            track.ID.String(),
		Title:         track.Name,
		Artist:        artist,
		AlbumCoverURL: cover,
		PreviewURL:    track.PreviewURL,
		Duration:      int(track.TimeDuration() / time.Second),
	}
}
