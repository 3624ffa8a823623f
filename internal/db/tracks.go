package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const trackColumns = `id, title, artist, album_cover, spotify_track_id, preview_url,
	duration, uploaded_by, plays, likes, shares, created_at`

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new track.
func (r *TrackRepository) Create(ctx context.Context, track *Track) error {
	query := `
		INSERT INTO tracks (id, title, artist, album_cover, spotify_track_id, preview_url, duration, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		track.ID,
		track.Title,
		track.Artist,
		track.AlbumCover,
		track.SpotifyTrackID,
		track.PreviewURL,
		track.Duration,
		track.UploadedBy,
	).Scan(&track.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting track: %w", err)
	}
	return nil
}

// Get retrieves a track by ID.
func (r *TrackRepository) Get(ctx context.Context, id uuid.UUID) (*Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = $1`
	var track Track
	err := scanTrack(r.pool.QueryRow(ctx, query, id), &track)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// List returns up to limit tracks, newest first.
func (r *TrackRepository) List(ctx context.Context, limit int) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// All returns the full catalog, newest first.
func (r *TrackRepository) All(ctx context.Context) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

func scanTrack(row pgx.Row, track *Track) error {
	return row.Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&track.AlbumCover,
		&track.SpotifyTrackID,
		&track.PreviewURL,
		&track.Duration,
		&track.UploadedBy,
		&track.Plays,
		&track.Likes,
		&track.Shares,
		&track.CreatedAt,
	)
}

func collectTracks(rows pgx.Rows) ([]Track, error) {
	var tracks []Track
	for rows.Next() {
		var track Track
		if err := scanTrack(rows, &track); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
