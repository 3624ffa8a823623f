// Package interactions implements the idempotent like/share/follow toggle.
package interactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ninja99524/hypestream/internal/db"
)

// Action is the outcome of a toggle.
type Action string

// Toggle outcomes.
const (
	ActionCreated Action = "created"
	ActionRemoved Action = "removed"
)

// Common errors.
var (
	// ErrInvalidTarget is returned for an unknown target or interaction type.
	ErrInvalidTarget = errors.New("invalid interaction target")
)

// Service handles user-to-target interaction toggling.
type Service struct {
	store db.Store
}

// New creates an interaction service.
func New(store db.Store) *Service {
	return &Service{store: store}
}

// Toggle flips the interaction state for the exact (user, target, type)
// tuple: an active row is removed, an absent one is created. Creating a track
// like or share credits the track's lifetime counter in the same store
// transaction; removal never decrements it, so the counters record total
// historical engagement while the row set records current state.
func (s *Service) Toggle(ctx context.Context, userID string, target db.Target, interactionType db.InteractionType) (Action, error) {
	if !target.Type.Valid() || !interactionType.Valid() || target.ID == "" {
		return "", ErrInvalidTarget
	}

	bump := db.CounterNone
	if target.Type == db.TargetTrack {
		switch interactionType {
		case db.InteractionLike:
			bump = db.CounterLikes
		case db.InteractionShare:
			bump = db.CounterShares
		}
	}

	row := &db.UserInteraction{
		ID:              uuid.New(),
		UserID:          userID,
		TargetID:        target.ID,
		TargetType:      target.Type,
		InteractionType: interactionType,
	}
	created, err := s.store.Interactions().Toggle(ctx, row, bump)
	if err != nil {
		return "", fmt.Errorf("toggling interaction: %w", err)
	}
	if created {
		return ActionCreated, nil
	}
	return ActionRemoved, nil
}

// ActiveCount reports how many users currently hold the given interaction
// with the target, derived from the active row set rather than the lifetime
// counters.
func (s *Service) ActiveCount(ctx context.Context, target db.Target, interactionType db.InteractionType) (int, error) {
	if !target.Type.Valid() || !interactionType.Valid() {
		return 0, ErrInvalidTarget
	}
	count, err := s.store.Interactions().ActiveCount(ctx, target, interactionType)
	if err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return count, nil
}
