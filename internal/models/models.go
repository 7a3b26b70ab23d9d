// package models defines the data model for the spotifyd automation CLI
package models

// Playlist is a playlist reference resolved from a search query.
// Transient; resolved per query and not authoritative.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	Description string `json:"description"`
	URI         string `json:"uri"`
}

// Device is a playback device visible to the Spotify API.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// PlaybackState mirrors the remote player state. Not locally authoritative:
// it is re-fetched or optimistically updated then reconciled.
type PlaybackState struct {
	IsPlaying  bool   `json:"is_playing"`
	Volume     int    `json:"volume"`
	ProgressMS int    `json:"progress_ms"`
	Track      string `json:"track,omitempty"`
	Artist     string `json:"artist,omitempty"`
	DurationMS int    `json:"duration_ms"`
	DeviceName string `json:"device_name,omitempty"`
}
