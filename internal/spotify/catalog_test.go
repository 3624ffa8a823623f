package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertSimpleTrack(t *testing.T) {
	tests := []struct {
		name   string
		track  spotify.SimpleTrack
		images []spotify.Image
		want   CatalogTrack
	}{
		{
			name: "full metadata",
			track: spotify.SimpleTrack{
				ID:   "abc123",
				Name: "Song",
				Artists: []spotify.SimpleArtist{
					{Name: "Lead"},
					{Name: "Feature"},
				},
				PreviewURL: "https://p.example/abc123",
				Duration:   215000,
			},
			images: []spotify.Image{
				{URL: "https://img.example/large", Width: 640},
				{URL: "https://img.example/small", Width: 64},
			},
			want: CatalogTrack{
				ID:            "abc123",
				Title:         "Song",
				Artist:        "Lead",
				AlbumCoverURL: "https://img.example/large",
				PreviewURL:    "https://p.example/abc123",
				Duration:      215,
			},
		},
		{
			name: "no artists, no images, no preview",
			track: spotify.SimpleTrack{
				ID:       "bare",
				Name:     "Untitled",
				Duration: 30499,
			},
			want: CatalogTrack{
				ID:       "bare",
				Title:    "Untitled",
				Duration: 30,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertSimpleTrack(tt.track, tt.images)
			if got != tt.want {
				t.Errorf("convertSimpleTrack = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConvertFullTrack(t *testing.T) {
	track := spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:       "xyz",
			Name:     "Album Cut",
			Artists:  []spotify.SimpleArtist{{Name: "Band"}},
			Duration: 180000,
		},
		Album: spotify.SimpleAlbum{
			Images: []spotify.Image{{URL: "https://img.example/album"}},
		},
	}

	got := convertFullTrack(track)
	want := CatalogTrack{
		ID:            "xyz",
		Title:         "Album Cut",
		Artist:        "Band",
		AlbumCoverURL: "https://img.example/album",
		Duration:      180,
	}
	if got != want {
		t.Errorf("convertFullTrack = %+v, want %+v", got, want)
	}
}
