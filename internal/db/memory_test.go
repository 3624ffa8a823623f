package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemStoreFinishIdempotent(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	user := &User{ID: "u", DisplayName: "U"}
	if err := store.Users().Upsert(ctx, user); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	track := &Track{Title: "T", Artist: "A"}
	if err := store.Tracks().Create(ctx, track); err != nil {
		t.Fatalf("Create: %v", err)
	}

	session := &ListeningSession{UserID: "u", TrackID: track.ID}
	if err := store.ListeningSessions().Start(ctx, session); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, alreadyDone, err := store.ListeningSessions().Finish(ctx, session.ID, 40, 5, true)
	if err != nil {
		t.Fatalf("first Finish: %v", err)
	}
	if alreadyDone {
		t.Error("first Finish reported alreadyDone")
	}
	if got.CoinsEarned != 5 || !got.Completed || got.Duration != 40 {
		t.Errorf("finished session = %+v, want 5 coins, completed, 40s", got)
	}

	got, alreadyDone, err = store.ListeningSessions().Finish(ctx, session.ID, 120, 5, true)
	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	if !alreadyDone {
		t.Error("second Finish did not report alreadyDone")
	}
	if got.Duration != 40 {
		t.Errorf("second Finish changed duration to %d, want 40 preserved", got.Duration)
	}

	u, err := store.Users().Get(ctx, "u")
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if u.CoinBalance != 5 {
		t.Errorf("coin balance = %d, want 5 (credited once)", u.CoinBalance)
	}
}

func TestMemStoreStartUnknownTrack(t *testing.T) {
	store := NewMemStore()

	session := &ListeningSession{UserID: "u", TrackID: uuid.New()}
	if err := store.ListeningSessions().Start(context.Background(), session); !errors.Is(err, ErrNotFound) {
		t.Errorf("Start: err = %v, want ErrNotFound", err)
	}
}

func TestMemStoreUpsertPreservesBalance(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.Users().Upsert(ctx, &User{ID: "u", DisplayName: "Old Name"}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := store.Users().AddCoins(ctx, "u", 15); err != nil {
		t.Fatalf("AddCoins: %v", err)
	}

	// A re-login refreshes the profile but never resets the balance.
	updated := &User{ID: "u", DisplayName: "New Name"}
	if err := store.Users().Upsert(ctx, updated); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if updated.CoinBalance != 15 {
		t.Errorf("returned balance = %d, want 15", updated.CoinBalance)
	}

	got, err := store.Users().Get(ctx, "u")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DisplayName != "New Name" || got.CoinBalance != 15 {
		t.Errorf("user = %+v, want new name with preserved balance", got)
	}
}

func TestMemStoreAuthSessionExpiry(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	now := time.Now()
	live := &AuthSession{ID: "live", UserID: "u", ExpiresAt: now.Add(time.Hour)}
	dead := &AuthSession{ID: "dead", UserID: "u", ExpiresAt: now.Add(-time.Minute)}
	for _, s := range []*AuthSession{live, dead} {
		if err := store.AuthSessions().Create(ctx, s); err != nil {
			t.Fatalf("Create %q: %v", s.ID, err)
		}
	}

	if _, err := store.AuthSessions().Get(ctx, "live"); err != nil {
		t.Errorf("Get live session: %v", err)
	}
	if _, err := store.AuthSessions().Get(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get expired session: err = %v, want ErrNotFound", err)
	}
}
