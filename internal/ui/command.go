package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotctl/internal/shared"
)

// Action enumerates everything the prompt accepts.
type Action int

const (
	ActionSearch Action = iota
	ActionSelect
	ActionPause
	ActionResume
	ActionStop
	ActionVolume
	ActionNext
	ActionBack
	ActionInfo
	ActionStatus
	ActionHelp
	ActionQuit
	ActionNone
)

// Input is a parsed prompt line.
type Input struct {
	Action Action
	Query  string // search text for ActionSearch
	Volume int    // level for ActionVolume
	Index  int    // 1-based result index for ActionSelect
}

// Parse classifies a prompt line. A bare integer is a result selection, known
// keywords are commands, and anything else is a playlist search query.
func Parse(line string) (Input, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Input{Action: ActionNone}, nil
	}

	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 {
			return Input{}, fmt.Errorf("%w: selection must be positive", shared.ErrInvalidInput)
		}
		return Input{Action: ActionSelect, Index: n}, nil
	}

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "pause":
		return Input{Action: ActionPause}, nil
	case "resume", "play":
		return Input{Action: ActionResume}, nil
	case "stop":
		return Input{Action: ActionStop}, nil
	case "next", "skip":
		return Input{Action: ActionNext}, nil
	case "back", "prev", "previous":
		return Input{Action: ActionBack}, nil
	case "info":
		return Input{Action: ActionInfo}, nil
	case "status":
		return Input{Action: ActionStatus}, nil
	case "help", "?":
		return Input{Action: ActionHelp}, nil
	case "quit", "exit", "q":
		return Input{Action: ActionQuit}, nil
	case "v", "vol", "volume":
		if len(fields) != 2 {
			return Input{}, fmt.Errorf("%w: usage: v <0-100>", shared.ErrInvalidInput)
		}
		level, err := strconv.Atoi(fields[1])
		if err != nil {
			return Input{}, fmt.Errorf("%w: volume must be a number", shared.ErrInvalidInput)
		}
		if level < 0 || level > 100 {
			return Input{}, fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidInput)
		}
		return Input{Action: ActionVolume, Volume: level}, nil
	}

	return Input{Action: ActionSearch, Query: line}, nil
}

const helpText = `Commands:
  <text>      search playlists by name
  <number>    play a search result
  pause       pause playback
  resume      resume playback
  stop        stop playback
  v <0-100>   set volume
  next        next track
  back        previous track
  info        current track
  status      daemon and playback status
  help        show this help
  quit        exit`
