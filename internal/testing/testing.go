// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spotctl/internal/models"
)

// MockClient is a scriptable test double for [services.Client]. Unset function
// fields return zero values.
type MockClient struct {
	SearchFunc   func(ctx context.Context, query string, limit int) ([]models.Playlist, error)
	TracksFunc   func(ctx context.Context, playlistID string) ([]string, error)
	DevicesFunc  func(ctx context.Context) ([]models.Device, error)
	PlayFunc     func(ctx context.Context, deviceID string, uris []string) error
	PauseFunc    func(ctx context.Context) error
	NextFunc     func(ctx context.Context) error
	PreviousFunc func(ctx context.Context) error
	VolumeFunc   func(ctx context.Context, level int) error
	StateFunc    func(ctx context.Context) (*models.PlaybackState, error)

	// VolumeCalls records every level passed to SetVolume, in order.
	VolumeCalls []int
}

func (m *MockClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockClient) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return []models.Playlist{}, nil
}

func (m *MockClient) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	if m.TracksFunc != nil {
		return m.TracksFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockClient) Devices(ctx context.Context) ([]models.Device, error) {
	if m.DevicesFunc != nil {
		return m.DevicesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) Play(ctx context.Context, deviceID string, uris []string) error {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, deviceID, uris)
	}
	return nil
}

func (m *MockClient) Pause(ctx context.Context) error {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx)
	}
	return nil
}

func (m *MockClient) Next(ctx context.Context) error {
	if m.NextFunc != nil {
		return m.NextFunc(ctx)
	}
	return nil
}

func (m *MockClient) Previous(ctx context.Context) error {
	if m.PreviousFunc != nil {
		return m.PreviousFunc(ctx)
	}
	return nil
}

func (m *MockClient) SetVolume(ctx context.Context, level int) error {
	m.VolumeCalls = append(m.VolumeCalls, level)
	if m.VolumeFunc != nil {
		return m.VolumeFunc(ctx, level)
	}
	return nil
}

func (m *MockClient) PlaybackState(ctx context.Context) (*models.PlaybackState, error) {
	if m.StateFunc != nil {
		return m.StateFunc(ctx)
	}
	return &models.PlaybackState{}, nil
}

func (m *MockClient) Name() string { return "mock" }

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
