package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/desertthunder/spotctl/internal/tasks"
	"github.com/desertthunder/spotctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Session starts the interactive playback prompt.
//
// The daemon is brought up first, then the bubbletea loop takes over the
// terminal. Logging is redirected to per-component files for the duration so
// log lines cannot corrupt the prompt.
func (r *Runner) Session(ctx context.Context, cmd *cli.Command) error {
	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	if err := r.ensureDaemonRunning(ctx); err != nil {
		return err
	}

	sessionLogger, err := shared.NewFileLogger(r.config.Logs.Dir, "session")
	if err != nil {
		sessionLogger = r.logger
	}

	playlistsManager, closeCache := r.newPlaylists(client)
	defer closeCache()

	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	controller := r.newPlayback(client)
	defer controller.CancelRamp()

	watchLogger, err := shared.NewFileLogger(r.config.Logs.Dir, "watchdog")
	if err != nil {
		watchLogger = sessionLogger
	}
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	watchdog := tasks.NewWatchdog(manager, 10*time.Second, watchLogger)
	go watchdog.Run(watchCtx, nil)

	model := ui.NewModel(ctx, ui.Deps{
		Playback:  controller,
		Playlists: playlistsManager,
		Device:    manager,
		Config:    r.config,
		Logger:    sessionLogger,
	})

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	if cmd.Bool("stop-daemon") {
		sessionLogger.Info("stopping daemon on exit")
		return manager.Stop()
	}

	return nil
}
