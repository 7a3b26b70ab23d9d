package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/spotctl/internal/shared"
	internaltest "github.com/desertthunder/spotctl/internal/testing"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, status int, body string) (*SpotifyClient, *internaltest.MockRoundTripper) {
	t.Helper()

	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	rt := internaltest.NewMockRoundTripper(&http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil)

	client.token = &oauth2.Token{AccessToken: "test_token"}
	client.httpClient = &http.Client{Transport: rt}
	return client, rt
}

func TestSpotifyClient(t *testing.T) {
	t.Run("NewSpotifyClient", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			client, err := NewSpotifyClient(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if client.Name() != "Spotify" {
				t.Errorf("expected client name 'Spotify', got %s", client.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyClient(map[string]string{"client_secret": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyClient(map[string]string{"client_id": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, "{}")

		authURL := client.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		client, err := NewSpotifyClient(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			err := client.Authenticate(context.Background(), map[string]string{
				"access_token": "test_access_token",
			})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
			if client.token == nil || client.token.AccessToken != "test_access_token" {
				t.Error("expected token to be set")
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := client.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("SearchPlaylists", func(t *testing.T) {
		t.Run("Empty Query Returns Empty Slice", func(t *testing.T) {
			client, rt := newTestClient(t, http.StatusOK, "{}")

			playlists, err := client.SearchPlaylists(context.Background(), "  ", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 0 {
				t.Errorf("expected empty result, got %d playlists", len(playlists))
			}
			if len(rt.Requests) != 0 {
				t.Error("empty query should not hit the API")
			}
		})

		t.Run("Parses Results In API Order", func(t *testing.T) {
			body := `{"playlists":{"items":[
				{"id":"a","name":"Morning Mix","owner":{"id":"u1","display_name":"Ana"},"tracks":{"total":12},"public":true,"uri":"spotify:playlist:a"},
				null,
				{"id":"b","name":"Morning Run","owner":{"id":"u2"},"tracks":{"total":30},"uri":"spotify:playlist:b"}
			],"total":2,"next":null}}`
			client, _ := newTestClient(t, http.StatusOK, body)

			playlists, err := client.SearchPlaylists(context.Background(), "morning", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(playlists) != 2 {
				t.Fatalf("expected 2 playlists (nulls skipped), got %d", len(playlists))
			}
			if playlists[0].Name != "Morning Mix" {
				t.Errorf("expected API order preserved, got %s first", playlists[0].Name)
			}
			if playlists[0].Owner != "Ana" {
				t.Errorf("expected owner display name, got %s", playlists[0].Owner)
			}
			if playlists[1].Owner != "u2" {
				t.Errorf("expected owner id fallback, got %s", playlists[1].Owner)
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		body := `{"items":[
			{"track":{"uri":"spotify:track:1"}},
			{"track":{"uri":""}},
			{"track":{"uri":"spotify:track:2"}}
		],"next":null}`
		client, _ := newTestClient(t, http.StatusOK, body)

		uris, err := client.PlaylistTracks(context.Background(), "abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(uris) != 2 {
			t.Errorf("expected 2 uris (empty skipped), got %d", len(uris))
		}
	})

	t.Run("Devices", func(t *testing.T) {
		body := `{"devices":[{"id":"d1","name":"SpotifyBot","type":"Computer","is_active":true,"volume_percent":40}]}`
		client, _ := newTestClient(t, http.StatusOK, body)

		devices, err := client.Devices(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(devices) != 1 || devices[0].Name != "SpotifyBot" {
			t.Fatalf("unexpected devices: %+v", devices)
		}
		if devices[0].VolumePercent != 40 {
			t.Errorf("expected volume 40, got %d", devices[0].VolumePercent)
		}
	})

	t.Run("Error Mapping", func(t *testing.T) {
		t.Run("401 Maps To ErrTokenExpired", func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusUnauthorized, "")

			_, err := client.Devices(context.Background())
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})

		t.Run("404 On Player Maps To ErrNoActiveSession", func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusNotFound, "")

			err := client.Pause(context.Background())
			if !errors.Is(err, shared.ErrNoActiveSession) {
				t.Errorf("expected ErrNoActiveSession, got %v", err)
			}
		})

		t.Run("204 On State Fetch Maps To ErrNoActiveSession", func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusNoContent, "")

			_, err := client.PlaybackState(context.Background())
			if !errors.Is(err, shared.ErrNoActiveSession) {
				t.Errorf("expected ErrNoActiveSession, got %v", err)
			}
		})

		t.Run("Unauthenticated Client", func(t *testing.T) {
			client, err := NewSpotifyClient(map[string]string{
				"client_id":     "x",
				"client_secret": "y",
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if err := client.Pause(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Play Sends Device And URIs", func(t *testing.T) {
		client, rt := newTestClient(t, http.StatusNoContent, "")

		err := client.Play(context.Background(), "d1", []string{"spotify:track:1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(rt.Requests) != 1 {
			t.Fatalf("expected 1 request, got %d", len(rt.Requests))
		}
		req := rt.Requests[0]
		if req.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", req.Method)
		}
		if !strings.Contains(req.URL.RawQuery, "device_id=d1") {
			t.Errorf("expected device_id in query, got %s", req.URL.RawQuery)
		}
	})

	t.Run("Client Interface", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, "{}")
		var _ Client = client
		var _ OAuthService = client
	})
}
