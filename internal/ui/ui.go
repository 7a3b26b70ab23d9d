package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/device"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/playback"
	"github.com/desertthunder/spotctl/internal/playlists"
	"github.com/desertthunder/spotctl/internal/shared"
)

const historyLimit = 200

// Deps bundles everything the interactive session drives.
type Deps struct {
	Playback  *playback.Controller
	Playlists *playlists.Manager
	Device    *device.Manager
	Config    *shared.Config
	Logger    *log.Logger
}

// Model represents the interactive session state.
type Model struct {
	ctx     context.Context
	deps    Deps
	input   textinput.Model
	history []string
	results []models.Playlist
	busy    bool
}

// NewModel creates a session model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	input := textinput.New()
	input.Placeholder = "search playlists or type a command (help)"
	input.Focus()
	input.CharLimit = 200

	return &Model{
		ctx:   ctx,
		deps:  deps,
		input: input,
	}
}

// Init focuses the prompt.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the session state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.busy {
				return m, nil
			}
			line := m.input.Value()
			m.input.SetValue("")
			return m.dispatch(line)
		}

	case searchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.printErr(msg.err)
			return m, nil
		}
		m.results = msg.playlists
		if len(msg.playlists) == 0 {
			m.print(styles.warn.Render(fmt.Sprintf("No playlists found for %q", msg.query)))
			return m, nil
		}
		m.print(styles.title.Render(fmt.Sprintf("Results for %q:", msg.query)))
		for i, playlist := range msg.playlists {
			m.print(fmt.Sprintf("  %d. %s (%d tracks, by %s)", i+1, playlist.Name, playlist.TrackCount, playlist.Owner))
		}
		m.print(styles.help.Render("Enter a number to play."))
		return m, nil

	case playStartedMsg:
		m.busy = false
		if msg.err != nil {
			m.printErr(msg.err)
			return m, nil
		}
		m.print(styles.ok.Render(fmt.Sprintf("Playing %q on %s", msg.playlist.Name, m.deps.Config.DeviceName)))
		return m, nil

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.printErr(msg.err)
			return m, nil
		}
		for _, line := range msg.lines {
			m.print(line)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the history followed by the prompt.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("spotctl"))
	b.WriteString("\n")
	for _, line := range m.history {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(styles.help.Render("help for commands, quit to exit"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) dispatch(line string) (tea.Model, tea.Cmd) {
	parsed, err := Parse(line)
	if err != nil {
		m.printErr(err)
		return m, nil
	}

	switch parsed.Action {
	case ActionNone:
		return m, nil

	case ActionQuit:
		m.deps.Playback.CancelRamp()
		return m, tea.Quit

	case ActionHelp:
		for _, helpLine := range strings.Split(helpText, "\n") {
			m.print(styles.help.Render(helpLine))
		}
		return m, nil

	case ActionSearch:
		m.busy = true
		m.print(fmt.Sprintf("Searching for %q...", parsed.Query))
		return m, m.search(parsed.Query)

	case ActionSelect:
		if len(m.results) == 0 {
			m.printErr(fmt.Errorf("%w: search for playlists first", shared.ErrInvalidInput))
			return m, nil
		}
		if parsed.Index > len(m.results) {
			m.printErr(fmt.Errorf("%w: pick a number between 1 and %d", shared.ErrInvalidInput, len(m.results)))
			return m, nil
		}
		m.busy = true
		playlist := m.results[parsed.Index-1]
		m.print(fmt.Sprintf("Starting %q...", playlist.Name))
		return m, m.play(playlist)

	case ActionVolume:
		m.busy = true
		return m, m.setVolume(parsed.Volume)

	default:
		m.busy = true
		return m, m.control(parsed.Action)
	}
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.deps.Playlists.Search(m.ctx, query)
		return searchDoneMsg{query: query, playlists: playlists, err: err}
	}
}

func (m *Model) play(playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		uris, err := m.deps.Playlists.Tracks(m.ctx, playlist.ID)
		if err != nil {
			return playStartedMsg{playlist: playlist, err: err}
		}

		if err := m.deps.Playback.Play(m.ctx, uris); err != nil {
			return playStartedMsg{playlist: playlist, err: err}
		}

		automation := m.deps.Config.Automation
		if automation.VolumeRamp {
			m.deps.Playback.StartRamp(m.ctx, playback.RampConfig{
				StartVolume: automation.StartVolume,
				EndVolume:   automation.EndVolume,
				Duration:    time.Duration(automation.RampDuration) * time.Second,
			})
		} else if err := m.deps.Playback.SetVolume(m.ctx, automation.DefaultVolume); err != nil {
			m.deps.Logger.Warn("failed to set default volume", "error", err)
		}

		return playStartedMsg{playlist: playlist}
	}
}

func (m *Model) setVolume(level int) tea.Cmd {
	return func() tea.Msg {
		// manual volume wins over an in-flight ramp
		m.deps.Playback.CancelRamp()
		if err := m.deps.Playback.SetVolume(m.ctx, level); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{lines: []string{fmt.Sprintf("Volume set to %d", level)}}
	}
}

func (m *Model) control(action Action) tea.Cmd {
	return func() tea.Msg {
		var err error
		var lines []string

		switch action {
		case ActionPause:
			err = m.deps.Playback.Pause(m.ctx)
			lines = []string{"Paused"}
		case ActionResume:
			err = m.deps.Playback.Resume(m.ctx)
			lines = []string{"Resumed"}
		case ActionStop:
			err = m.deps.Playback.Stop(m.ctx)
			lines = []string{"Stopped"}
		case ActionNext:
			err = m.deps.Playback.Next(m.ctx)
			lines = []string{"Skipped to next track"}
		case ActionBack:
			err = m.deps.Playback.Previous(m.ctx)
			lines = []string{"Went back a track"}
		case ActionInfo:
			lines, err = m.trackInfo()
		case ActionStatus:
			lines, err = m.statusInfo()
		}

		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{lines: lines}
	}
}

func (m *Model) trackInfo() ([]string, error) {
	state, err := m.deps.Playback.State(m.ctx)
	if err != nil {
		return nil, err
	}

	verb := "Paused"
	if state.IsPlaying {
		verb = "Playing"
	}

	return []string{
		fmt.Sprintf("%s: %s - %s", verb, state.Artist, state.Track),
		fmt.Sprintf("  %s / %s on %s (volume %d)",
			formatDuration(state.ProgressMS), formatDuration(state.DurationMS), state.DeviceName, state.Volume),
	}, nil
}

func (m *Model) statusInfo() ([]string, error) {
	lines := []string{fmt.Sprintf("Daemon: %s", m.deps.Device.HealthCheck())}

	state, err := m.deps.Playback.State(m.ctx)
	if errors.Is(err, shared.ErrNoActiveSession) {
		return append(lines, "Playback: no active session"), nil
	}
	if err != nil {
		return nil, err
	}

	verb := "paused"
	if state.IsPlaying {
		verb = "playing"
	}
	lines = append(lines, fmt.Sprintf("Playback: %s on %s (volume %d)", verb, state.DeviceName, state.Volume))
	if m.deps.Playback.RampActive() {
		lines = append(lines, "Volume ramp: active")
	}
	return lines, nil
}

func (m *Model) print(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}

func (m *Model) printErr(err error) {
	m.print(styles.err.Render(fmt.Sprintf("Error: %v", err)))
}

func formatDuration(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
