// Package rewards implements the listening-session reward engine: it converts
// a play event plus reported listening time into a coin award, exactly once
// per session.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ninja99524/hypestream/internal/db"
)

// Reward policy. A session past the threshold earns the full amount, never a
// partial one.
const (
	RewardAmount     = 5
	ThresholdSeconds = 30
)

// Common errors.
var (
	// ErrInvalidDuration is returned for a negative elapsed duration.
	ErrInvalidDuration = errors.New("elapsed duration must not be negative")
)

// Evaluate applies the reward policy to a cumulative elapsed duration.
func Evaluate(elapsedSeconds int) (coins int, completed bool) {
	if elapsedSeconds >= ThresholdSeconds {
		return RewardAmount, true
	}
	return 0, false
}

// Service handles listening sessions and coin awards.
type Service struct {
	store     db.Store
	reward    int
	threshold int
	loc       *time.Location
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy overrides the reward amount and completion threshold.
func WithPolicy(reward, thresholdSeconds int) Option {
	return func(s *Service) {
		s.reward = reward
		s.threshold = thresholdSeconds
	}
}

// WithLocation sets the location whose midnight bounds the daily stats.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new reward service.
func New(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		reward:    RewardAmount,
		threshold: ThresholdSeconds,
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a listening session for a user on a track. The track's play
// counter is credited at playback start, whether or not the session later
// completes. Returns db.ErrNotFound for an unknown track.
func (s *Service) Start(ctx context.Context, userID string, trackID uuid.UUID) (*db.ListeningSession, error) {
	session := &db.ListeningSession{
		ID:      uuid.New(),
		UserID:  userID,
		TrackID: trackID,
	}
	if err := s.store.ListeningSessions().Start(ctx, session); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return session, nil
}

// Progress is the outcome of a progress report.
type Progress struct {
	CoinsEarned int
	Completed   bool
}

// ReportProgress applies the reward policy to the reported cumulative elapsed
// seconds and persists the result. The session stores the final duration as
// reported, not an accumulation. A session that already completed keeps its
// stored result and is never credited again; the call then echoes that
// result. Returns db.ErrNotFound for an unknown session.
func (s *Service) ReportProgress(ctx context.Context, sessionID uuid.UUID, elapsedSeconds int) (Progress, error) {
	if elapsedSeconds < 0 {
		return Progress{}, ErrInvalidDuration
	}

	coins, completed := 0, false
	if elapsedSeconds >= s.threshold {
		coins, completed = s.reward, true
	}

	session, alreadyDone, err := s.store.ListeningSessions().Finish(ctx, sessionID, elapsedSeconds, coins, completed)
	if err != nil {
		return Progress{}, fmt.Errorf("finishing session: %w", err)
	}
	if alreadyDone {
		logrus.WithFields(logrus.Fields{
			"session": sessionID,
			"user":    session.UserID,
		}).Debug("progress report on completed session ignored")
	}
	return Progress{CoinsEarned: session.CoinsEarned, Completed: session.Completed}, nil
}

// Stats summarizes a user's listening activity for the current day.
type Stats struct {
	TodayStreams int
	TodayCoins   int
}

// TodayStats reports the user's stream count and coins earned for sessions
// created since local midnight.
func (s *Service) TodayStats(ctx context.Context, userID string) (Stats, error) {
	streams, coins, err := s.store.ListeningSessions().StatsSince(ctx, userID, s.todayStart())
	if err != nil {
		return Stats{}, fmt.Errorf("loading session stats: %w", err)
	}
	return Stats{TodayStreams: streams, TodayCoins: coins}, nil
}

// todayStart returns midnight of the current day in the configured location.
func (s *Service) todayStart() time.Time {
	now := s.now().In(s.loc)
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, s.loc)
}
