package db

import "testing"

func TestTargetTypeValid(t *testing.T) {
	tests := []struct {
		targetType TargetType
		want       bool
	}{
		{TargetUser, true},
		{TargetTrack, true},
		{TargetType(""), false},
		{TargetType("playlist"), false},
		{TargetType("Track"), false},
	}

	for _, tt := range tests {
		if got := tt.targetType.Valid(); got != tt.want {
			t.Errorf("TargetType(%q).Valid() = %v, want %v", tt.targetType, got, tt.want)
		}
	}
}

func TestInteractionTypeValid(t *testing.T) {
	tests := []struct {
		interactionType InteractionType
		want            bool
	}{
		{InteractionLike, true},
		{InteractionShare, true},
		{InteractionFollow, true},
		{InteractionPlaylistAdd, true},
		{InteractionType(""), false},
		{InteractionType("boost"), false},
	}

	for _, tt := range tests {
		if got := tt.interactionType.Valid(); got != tt.want {
			t.Errorf("InteractionType(%q).Valid() = %v, want %v", tt.interactionType, got, tt.want)
		}
	}
}
