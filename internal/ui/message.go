package ui

import (
	"github.com/desertthunder/spotctl/internal/models"
)

// searchDoneMsg delivers playlist search results to the prompt loop.
type searchDoneMsg struct {
	query     string
	playlists []models.Playlist
	err       error
}

// playStartedMsg reports the outcome of starting playlist playback.
type playStartedMsg struct {
	playlist models.Playlist
	err      error
}

// resultMsg carries the output lines of an executed playback command.
type resultMsg struct {
	lines []string
	err   error
}
