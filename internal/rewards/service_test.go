package rewards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ninja99524/hypestream/internal/db"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		elapsed       int
		wantCoins     int
		wantCompleted bool
	}{
		{name: "zero seconds", elapsed: 0, wantCoins: 0, wantCompleted: false},
		{name: "one below threshold", elapsed: 29, wantCoins: 0, wantCompleted: false},
		{name: "exactly threshold", elapsed: 30, wantCoins: 5, wantCompleted: true},
		{name: "well past threshold", elapsed: 225, wantCoins: 5, wantCompleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coins, completed := Evaluate(tt.elapsed)
			if coins != tt.wantCoins || completed != tt.wantCompleted {
				t.Errorf("Evaluate(%d) = (%d, %v), want (%d, %v)",
					tt.elapsed, coins, completed, tt.wantCoins, tt.wantCompleted)
			}
		})
	}
}

// newFixture seeds a store with one user and one track and returns both
// alongside a reward service.
func newFixture(t *testing.T, opts ...Option) (*Service, *db.MemStore, *db.User, *db.Track) {
	t.Helper()
	store := db.NewMemStore()
	ctx := context.Background()

	user := &db.User{ID: "listener", DisplayName: "Listener"}
	if err := store.Users().Upsert(ctx, user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	track := &db.Track{Title: "Song", Artist: "Artist", Duration: 240, Plays: 10}
	if err := store.Tracks().Create(ctx, track); err != nil {
		t.Fatalf("seeding track: %v", err)
	}

	return New(store, opts...), store, user, track
}

func TestStartIncrementsPlays(t *testing.T) {
	svc, store, user, track := newFixture(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.ID == uuid.Nil {
		t.Error("Start returned a session without an ID")
	}
	if session.UserID != user.ID || session.TrackID != track.ID {
		t.Errorf("session = (%q, %s), want (%q, %s)", session.UserID, session.TrackID, user.ID, track.ID)
	}

	got, err := store.Tracks().Get(ctx, track.ID)
	if err != nil {
		t.Fatalf("Get track: %v", err)
	}
	if got.Plays != 11 {
		t.Errorf("plays = %d, want 11", got.Plays)
	}
}

func TestStartUnknownTrack(t *testing.T) {
	svc, _, user, _ := newFixture(t)

	_, err := svc.Start(context.Background(), user.ID, uuid.New())
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Start on unknown track: err = %v, want ErrNotFound", err)
	}
}

func TestReportProgressBelowThreshold(t *testing.T) {
	svc, store, user, track := newFixture(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	progress, err := svc.ReportProgress(ctx, session.ID, 15)
	if err != nil {
		t.Fatalf("ReportProgress: %v", err)
	}
	if progress.CoinsEarned != 0 || progress.Completed {
		t.Errorf("progress = %+v, want no coins and not completed", progress)
	}

	got, err := store.Users().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.CoinBalance != 0 {
		t.Errorf("coin balance = %d, want 0", got.CoinBalance)
	}
}

func TestReportProgressCreditsExactlyOnce(t *testing.T) {
	svc, store, user, track := newFixture(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	first, err := svc.ReportProgress(ctx, session.ID, 35)
	if err != nil {
		t.Fatalf("first ReportProgress: %v", err)
	}
	if first.CoinsEarned != RewardAmount || !first.Completed {
		t.Errorf("first progress = %+v, want %d coins and completed", first, RewardAmount)
	}

	// A repeated report past the threshold must echo the stored result
	// without crediting the balance again.
	second, err := svc.ReportProgress(ctx, session.ID, 90)
	if err != nil {
		t.Fatalf("second ReportProgress: %v", err)
	}
	if second.CoinsEarned != RewardAmount || !second.Completed {
		t.Errorf("second progress = %+v, want %d coins and completed", second, RewardAmount)
	}

	got, err := store.Users().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.CoinBalance != RewardAmount {
		t.Errorf("coin balance = %d, want %d", got.CoinBalance, RewardAmount)
	}

	stored, err := store.ListeningSessions().Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if stored.Duration != 35 {
		t.Errorf("stored duration = %d, want 35 (later reports must not overwrite)", stored.Duration)
	}
}

func TestReportProgressAfterPartialReports(t *testing.T) {
	svc, store, user, track := newFixture(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Cumulative reports below the threshold keep the session open.
	for _, elapsed := range []int{5, 15, 29} {
		progress, err := svc.ReportProgress(ctx, session.ID, elapsed)
		if err != nil {
			t.Fatalf("ReportProgress(%d): %v", elapsed, err)
		}
		if progress.Completed {
			t.Fatalf("session completed at %ds, threshold is %d", elapsed, ThresholdSeconds)
		}
	}

	progress, err := svc.ReportProgress(ctx, session.ID, 30)
	if err != nil {
		t.Fatalf("ReportProgress(30): %v", err)
	}
	if progress.CoinsEarned != RewardAmount || !progress.Completed {
		t.Errorf("progress = %+v, want %d coins and completed", progress, RewardAmount)
	}

	got, err := store.Users().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.CoinBalance != RewardAmount {
		t.Errorf("coin balance = %d, want %d", got.CoinBalance, RewardAmount)
	}
}

func TestReportProgressNegativeDuration(t *testing.T) {
	svc, _, user, track := newFixture(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.ReportProgress(ctx, session.ID, -1); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("ReportProgress(-1): err = %v, want ErrInvalidDuration", err)
	}
}

func TestReportProgressUnknownSession(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	_, err := svc.ReportProgress(context.Background(), uuid.New(), 35)
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("ReportProgress on unknown session: err = %v, want ErrNotFound", err)
	}
}

func TestReportProgressCustomPolicy(t *testing.T) {
	svc, store, user, track := newFixture(t, WithPolicy(10, 60))
	ctx := context.Background()

	session, err := svc.Start(ctx, user.ID, track.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	progress, err := svc.ReportProgress(ctx, session.ID, 45)
	if err != nil {
		t.Fatalf("ReportProgress(45): %v", err)
	}
	if progress.Completed {
		t.Error("session completed at 45s with a 60s threshold")
	}

	progress, err = svc.ReportProgress(ctx, session.ID, 60)
	if err != nil {
		t.Fatalf("ReportProgress(60): %v", err)
	}
	if progress.CoinsEarned != 10 || !progress.Completed {
		t.Errorf("progress = %+v, want 10 coins and completed", progress)
	}

	got, err := store.Users().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if got.CoinBalance != 10 {
		t.Errorf("coin balance = %d, want 10", got.CoinBalance)
	}
}

func TestTodayStats(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	// 08:00 local on June 2nd; local midnight is the stats boundary.
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, loc)

	store := db.NewMemStore()
	ctx := context.Background()

	user := &db.User{ID: "listener", DisplayName: "Listener"}
	if err := store.Users().Upsert(ctx, user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	track := &db.Track{Title: "Song", Artist: "Artist"}
	if err := store.Tracks().Create(ctx, track); err != nil {
		t.Fatalf("seeding track: %v", err)
	}

	svc := New(store, WithLocation(loc), WithClock(func() time.Time { return now }))

	sessions := []struct {
		createdAt   time.Time
		coinsEarned int
		counted     bool
	}{
		{createdAt: now.Add(-1 * time.Hour), coinsEarned: 5, counted: true},
		{createdAt: now.Add(-7 * time.Hour), coinsEarned: 0, counted: true},
		{createdAt: now.Add(-9 * time.Hour), coinsEarned: 5, counted: false},  // yesterday 23:00
		{createdAt: now.Add(-30 * time.Hour), coinsEarned: 5, counted: false}, // the day before
	}

	var wantStreams, wantCoins int
	for _, s := range sessions {
		session := &db.ListeningSession{
			UserID:    user.ID,
			TrackID:   track.ID,
			CreatedAt: s.createdAt,
		}
		if err := store.ListeningSessions().Start(ctx, session); err != nil {
			t.Fatalf("seeding session: %v", err)
		}
		completed := s.coinsEarned > 0
		if _, _, err := store.ListeningSessions().Finish(ctx, session.ID, 35, s.coinsEarned, completed); err != nil {
			t.Fatalf("finishing seeded session: %v", err)
		}
		if s.counted {
			wantStreams++
			wantCoins += s.coinsEarned
		}
	}

	stats, err := svc.TodayStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("TodayStats: %v", err)
	}
	if stats.TodayStreams != wantStreams || stats.TodayCoins != wantCoins {
		t.Errorf("stats = %+v, want %d streams and %d coins", stats, wantStreams, wantCoins)
	}
}
