// Spotify API implementation of [Client]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Interactive use stays well under the API quota; the limiter only smooths
// bursts like volume ramps.
const requestsPerSecond = 5

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// spotifyPlaylist represents a playlist object from search or lookup responses.
type spotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	URI         string         `json:"uri"`
}

// spotifyPaginatedPlaylists represents a paginated page of playlist objects.
type spotifyPaginatedPlaylists struct {
	Items []*spotifyPlaylist `json:"items"`
	Total int                `json:"total"`
	Next  *string            `json:"next"`
}

type searchResponse struct {
	Playlists spotifyPaginatedPlaylists `json:"playlists"`
}

type playlistTrackItem struct {
	Track struct {
		URI string `json:"uri"`
	} `json:"track"`
}

type playlistTracksPage struct {
	Items []playlistTrackItem `json:"items"`
	Next  *string             `json:"next"`
}

type spotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

type devicesResponse struct {
	Devices []spotifyDevice `json:"devices"`
}

type playerResponse struct {
	IsPlaying  bool `json:"is_playing"`
	ProgressMS int  `json:"progress_ms"`
	Item       *struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		DurationMS int `json:"duration_ms"`
	} `json:"item"`
	Device struct {
		Name          string `json:"name"`
		VolumePercent int    `json:"volume_percent"`
	} `json:"device"`
}

// SpotifyClient implements the Client interface for Spotify API interactions.
// Uses [oauth2] for authentication and a [rate.Limiter] to smooth request bursts.
type SpotifyClient struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	limiter        *rate.Limiter
	mu             sync.Mutex
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyClient creates a new Spotify client with the given OAuth2 credentials.
func NewSpotifyClient(credentials map[string]string) (*SpotifyClient, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-playback-state",
			"user-modify-playback-state",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}, nil
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyClient) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying OAuth2 configuration.
func (s *SpotifyClient) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a callback invoked whenever the token
// source produces a refreshed token, so callers can persist it.
func (s *SpotifyClient) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Authenticate performs authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate authenticates with a previously obtained token. Tokens with a
// refresh token are refreshed transparently and surfaced through the refresh callback.
func (s *SpotifyClient) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	s.token = token
	source := &refreshableTokenSource{
		base:   s.config.TokenSource(ctx, token),
		client: s,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// refreshableTokenSource wraps the oauth2 token source and notifies the client
// when a new token is minted.
type refreshableTokenSource struct {
	base   oauth2.TokenSource
	client *SpotifyClient
	mu     sync.Mutex
	last   *oauth2.Token
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.base.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := r.last == nil || r.last.AccessToken != token.AccessToken
	r.last = token
	r.mu.Unlock()

	if changed {
		r.client.token = token
		if cb := r.client.onTokenRefresh; cb != nil {
			cb(token)
		}
	}

	return token, nil
}

// doRequest performs an authenticated, rate-limited HTTP request to the Spotify API.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(endpoint, "/me/player"):
		// the player endpoints 404 when no playback context exists
		return shared.ErrNoActiveSession
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		// a 204 where a body was expected means no playback context (GET /me/player)
		if resp.StatusCode == http.StatusNoContent {
			return shared.ErrNoActiveSession
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchPlaylists searches playlists by name, preserving the API's relevance order.
func (s *SpotifyClient) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Playlist{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=playlist&limit=%d", url.QueryEscape(query), limit)

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(response.Playlists.Items))
	for _, sp := range response.Playlists.Items {
		// the search endpoint pads pages with nulls for removed playlists
		if sp == nil || sp.ID == "" {
			continue
		}
		displayName := sp.Owner.DisplayName
		if displayName == "" {
			displayName = sp.Owner.ID
		}
		playlists = append(playlists, models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Owner:       displayName,
			TrackCount:  sp.Tracks.Total,
			Public:      sp.Public,
			Description: sp.Description,
			URI:         sp.URI,
		})
	}

	return playlists, nil
}

// PlaylistTracks returns all track URIs of a playlist, following pagination in 100-item pages.
func (s *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	var uris []string
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=100&offset=%d", playlistID, offset)

		var page playlistTracksPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.URI != "" {
				uris = append(uris, item.Track.URI)
			}
		}

		if page.Next == nil {
			break
		}
		offset += 100
	}

	return uris, nil
}

// Devices lists the playback devices currently visible to the API.
func (s *SpotifyClient) Devices(ctx context.Context) ([]models.Device, error) {
	var response devicesResponse
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(response.Devices))
	for _, d := range response.Devices {
		devices = append(devices, models.Device{
			ID:            d.ID,
			Name:          d.Name,
			Type:          d.Type,
			IsActive:      d.IsActive,
			VolumePercent: d.VolumePercent,
		})
	}

	return devices, nil
}

// Play starts playback of the given URIs on a device, or resumes the current
// context when no URIs are given.
func (s *SpotifyClient) Play(ctx context.Context, deviceID string, uris []string) error {
	endpoint := "/me/player/play"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}

	var body any
	if len(uris) > 0 {
		body = map[string]any{"uris": uris}
	}

	return s.doRequest(ctx, http.MethodPut, endpoint, body, nil)
}

// Pause pauses the active playback session.
func (s *SpotifyClient) Pause(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

// Next skips to the next track.
func (s *SpotifyClient) Next(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil)
}

// Previous returns to the previous track.
func (s *SpotifyClient) Previous(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil)
}

// SetVolume sets the playback volume on the active device. The level must
// already be within 0-100; clamping is the controller's concern.
func (s *SpotifyClient) SetVolume(ctx context.Context, level int) error {
	endpoint := fmt.Sprintf("/me/player/volume?volume_percent=%d", level)
	return s.doRequest(ctx, http.MethodPut, endpoint, nil, nil)
}

// PlaybackState fetches the current remote player state.
func (s *SpotifyClient) PlaybackState(ctx context.Context) (*models.PlaybackState, error) {
	var response playerResponse
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &response); err != nil {
		return nil, err
	}

	state := &models.PlaybackState{
		IsPlaying:  response.IsPlaying,
		Volume:     response.Device.VolumePercent,
		ProgressMS: response.ProgressMS,
		DeviceName: response.Device.Name,
	}

	if response.Item != nil {
		state.Track = response.Item.Name
		state.DurationMS = response.Item.DurationMS
		names := make([]string, 0, len(response.Item.Artists))
		for _, a := range response.Item.Artists {
			names = append(names, a.Name)
		}
		state.Artist = strings.Join(names, ", ")
	}

	return state, nil
}
