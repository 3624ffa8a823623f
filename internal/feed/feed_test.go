package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ninja99524/hypestream/internal/db"
)

const (
	featuredID = "featured-uploader"
	viewerID   = "viewer"
	otherID    = "someone-else"
)

var rankBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// track builds a test track uploaded by the given user (empty for a
// system-imported track) with a creation time offset in minutes.
func track(title, uploader string, minutesAgo int) db.Track {
	t := db.Track{
		ID:        uuid.New(),
		Title:     title,
		Artist:    "Test Artist",
		CreatedAt: rankBase.Add(-time.Duration(minutesAgo) * time.Minute),
	}
	if uploader != "" {
		t.UploadedBy = &uploader
	}
	return t
}

func titles(tracks []db.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}

func TestRankTierOrdering(t *testing.T) {
	tracks := []db.Track{
		track("other-new", otherID, 1),
		track("viewer-old", viewerID, 60),
		track("featured-old", featuredID, 120),
		track("imported", "", 5),
		track("viewer-new", viewerID, 10),
		track("featured-new", featuredID, 30),
	}

	got := Rank(tracks, featuredID, viewerID, 0)

	want := []string{
		"featured-new", "featured-old",
		"viewer-new", "viewer-old",
		"other-new", "imported",
	}
	gotTitles := titles(got)
	if len(gotTitles) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(gotTitles), len(want))
	}
	for i := range want {
		if gotTitles[i] != want[i] {
			t.Errorf("position %d = %q, want %q (full order: %v)", i, gotTitles[i], want[i], gotTitles)
		}
	}
}

func TestRankRecencyWithinTier(t *testing.T) {
	tracks := []db.Track{
		track("oldest", otherID, 300),
		track("newest", otherID, 1),
		track("middle", otherID, 100),
	}

	got := Rank(tracks, featuredID, viewerID, 0)

	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Errorf("track %q (%v) ranked after older %q (%v)",
				got[i].Title, got[i].CreatedAt, got[i-1].Title, got[i-1].CreatedAt)
		}
	}
}

func TestRankLimit(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		limit     int
		wantCount int
	}{
		{name: "explicit limit", total: 10, limit: 3, wantCount: 3},
		{name: "limit above total", total: 5, limit: 50, wantCount: 5},
		{name: "default limit", total: 30, limit: 0, wantCount: DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks := make([]db.Track, tt.total)
			for i := range tracks {
				tracks[i] = track("t", otherID, i)
			}

			got := Rank(tracks, featuredID, viewerID, tt.limit)
			if len(got) != tt.wantCount {
				t.Errorf("got %d tracks, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestRankDeterministic(t *testing.T) {
	tracks := []db.Track{
		track("a", featuredID, 10),
		track("b", viewerID, 10),
		track("c", otherID, 10),
		track("d", otherID, 20),
	}

	first := titles(Rank(tracks, featuredID, viewerID, 0))
	for i := 0; i < 5; i++ {
		again := titles(Rank(tracks, featuredID, viewerID, 0))
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("ranking not stable: run %d produced %v, first run %v", i, again, first)
			}
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	tracks := []db.Track{
		track("b", otherID, 10),
		track("a", featuredID, 1),
	}
	Rank(tracks, featuredID, viewerID, 0)

	if tracks[0].Title != "b" || tracks[1].Title != "a" {
		t.Errorf("input slice reordered: %v", titles(tracks))
	}
}

func TestDiscoverUsesConfiguredFeaturedUploader(t *testing.T) {
	store := db.NewMemStore()
	ctx := context.Background()

	for _, tr := range []db.Track{
		track("other", otherID, 1),
		track("promoted", "promo-account", 500),
	} {
		seeded := tr
		if err := store.Tracks().Create(ctx, &seeded); err != nil {
			t.Fatalf("seeding track: %v", err)
		}
	}

	svc := New(store, "promo-account")
	got, err := svc.Discover(ctx, viewerID, 0)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 || got[0].Title != "promoted" {
		t.Errorf("feed order = %v, want promoted first", titles(got))
	}
}
