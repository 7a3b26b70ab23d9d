// package playlists implements playlist search and resolution on top of the
// streaming service API, backed by the local cache.
package playlists

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/repositories"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
)

const defaultSearchLimit = 10

// Manager searches playlists and resolves them to playable track URIs.
//
// Remote results are written through to the cache; when the API is
// unreachable the cache serves as a degraded fallback.
type Manager struct {
	client services.Client
	cache  *repositories.PlaylistRepository
	hist   *repositories.SearchRepository
	logger *log.Logger
}

// NewManager creates a Manager. The cache and history repositories are
// optional; without them search results are simply not persisted.
func NewManager(client services.Client, cache *repositories.PlaylistRepository, hist *repositories.SearchRepository, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{client: client, cache: cache, hist: hist, logger: logger}
}

// Search queries the service for playlists matching query. An empty or
// whitespace-only query returns an empty list without touching the API.
// Results are cached; if the API call fails, cached results matching the
// query are returned instead.
func (m *Manager) Search(ctx context.Context, query string) ([]models.Playlist, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Playlist{}, nil
	}

	results, err := m.client.SearchPlaylists(ctx, query, defaultSearchLimit)
	if err != nil {
		if m.cache == nil {
			return nil, err
		}

		m.logger.Warn("search failed, falling back to cache", "query", query, "error", err)
		cached, cacheErr := m.cache.Search(query, defaultSearchLimit)
		if cacheErr != nil || len(cached) == 0 {
			return nil, err
		}
		return cached, nil
	}

	if m.cache != nil {
		for _, playlist := range results {
			if cacheErr := m.cache.Cache(playlist); cacheErr != nil {
				m.logger.Warn("failed to cache playlist", "id", playlist.ID, "error", cacheErr)
			}
		}
	}
	if m.hist != nil {
		if histErr := m.hist.Record(query, len(results)); histErr != nil {
			m.logger.Warn("failed to record search", "query", query, "error", histErr)
		}
	}

	return results, nil
}

// ResolveFirst searches for query and returns the top result.
func (m *Manager) ResolveFirst(ctx context.Context, query string) (*models.Playlist, error) {
	results, err := m.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrPlaylistNotFound, query)
	}
	return &results[0], nil
}

// Tracks returns the playable track URIs of a playlist.
func (m *Manager) Tracks(ctx context.Context, playlistID string) ([]string, error) {
	uris, err := m.client.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("%w: playlist %s has no playable tracks", shared.ErrPlaylistNotFound, playlistID)
	}
	return uris, nil
}

// History returns the most recent search queries.
func (m *Manager) History(limit int) ([]repositories.SearchRecord, error) {
	if m.hist == nil {
		return nil, nil
	}
	return m.hist.Recent(limit)
}
