package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// PlaylistRepository caches playlists returned from remote searches.
//
// Playlists are keyed by their service ID; re-caching an existing playlist
// refreshes its metadata instead of inserting a duplicate.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Cache inserts a playlist or refreshes the cached copy when the service ID is
// already present.
func (r *PlaylistRepository) Cache(playlist models.Playlist) error {
	existing, err := r.GetByServiceID(playlist.ID)
	if err == nil && existing != nil {
		return r.refresh(playlist)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO playlists (id, sequence, service_id, name, owner, description, track_count, public, uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		sequence,
		playlist.ID,
		playlist.Name,
		playlist.Owner,
		playlist.Description,
		playlist.TrackCount,
		playlist.Public,
		playlist.URI,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return r.refresh(playlist)
		}
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

func (r *PlaylistRepository) refresh(playlist models.Playlist) error {
	query := `
		UPDATE playlists
		SET name = ?, owner = ?, description = ?, track_count = ?, public = ?, uri = ?, updated_at = ?, deleted_at = NULL
		WHERE service_id = ?
	`

	_, err := r.db.Exec(query,
		playlist.Name,
		playlist.Owner,
		playlist.Description,
		playlist.TrackCount,
		playlist.Public,
		playlist.URI,
		time.Now(),
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh playlist: %w", err)
	}

	return nil
}

// GetByServiceID retrieves a cached playlist by its service ID, excluding soft-deleted rows
func (r *PlaylistRepository) GetByServiceID(serviceID string) (*models.Playlist, error) {
	query := `
		SELECT service_id, name, owner, description, track_count, public, uri
		FROM playlists
		WHERE service_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, serviceID))
}

// Search returns cached playlists whose names contain the query, newest first.
func (r *PlaylistRepository) Search(query string, limit int) ([]models.Playlist, error) {
	if limit <= 0 {
		limit = 10
	}

	stmt := `
		SELECT service_id, name, owner, description, track_count, public, uri
		FROM playlists
		WHERE name LIKE ? AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(stmt, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Owner, &p.Description, &p.TrackCount, &p.Public, &p.URI); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}

// Delete soft-deletes a cached playlist by service ID
func (r *PlaylistRepository) Delete(serviceID string) error {
	result, err := r.db.Exec(
		"UPDATE playlists SET deleted_at = ? WHERE service_id = ? AND deleted_at IS NULL",
		time.Now(), serviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("playlist not found: %s", serviceID)
	}

	return nil
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.Name, &p.Owner, &p.Description, &p.TrackCount, &p.Public, &p.URI)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("playlist not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}
