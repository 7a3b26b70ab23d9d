// package services defines interface Client for the remote streaming API
package services

import (
	"context"

	"github.com/desertthunder/spotctl/internal/models"
	"golang.org/x/oauth2"
)

// Client defines the operations the playback and playlist managers need from
// the remote streaming service.
type Client interface {
	// Authenticate performs OAuth or token-based authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchPlaylists searches playlists by name, in the API's relevance order.
	// An empty query yields an empty result, not an error.
	SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error)

	// PlaylistTracks returns all track URIs of a playlist, following pagination.
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)

	// Devices lists the playback devices currently visible to the API.
	Devices(ctx context.Context) ([]models.Device, error)

	// Play starts playback of the given track URIs on a device. With no URIs it
	// resumes the existing playback context.
	Play(ctx context.Context, deviceID string, uris []string) error

	// Pause pauses the active playback session.
	Pause(ctx context.Context) error

	// Next skips to the next track.
	Next(ctx context.Context) error

	// Previous returns to the previous track.
	Previous(ctx context.Context) error

	// SetVolume sets the playback volume (0-100) on the active device.
	SetVolume(ctx context.Context, level int) error

	// PlaybackState fetches the current remote player state, or
	// ErrNoActiveSession when no playback context exists.
	PlaybackState(ctx context.Context) (*models.PlaybackState, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by clients supporting the OAuth2 authorization
// code flow with refreshable tokens.
type OAuthService interface {
	Client

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for callback handling.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a previously obtained token, refreshing as needed.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
