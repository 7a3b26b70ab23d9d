package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotctl/internal/device"
	"github.com/desertthunder/spotctl/internal/formatter"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/playback"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search looks up playlists matching the query and prints them.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	manager, closeCache := r.newPlaylists(client)
	defer closeCache()

	results, err := manager.Search(ctx, query)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			if authErr != nil {
				return authErr
			}
			if results, err = manager.Search(ctx, query); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	if len(results) == 0 {
		return r.writePlain("No playlists found for %q\n", query)
	}

	for i, playlist := range results {
		r.writePlain("%d. %s (%d tracks, by %s)\n", i+1, playlist.Name, playlist.TrackCount, playlist.Owner)
	}

	if exportFormat := cmd.String("export"); exportFormat != "" {
		format, err := formatter.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		path, err := formatter.WriteExport(format, query, results, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Results written to %s\n", path)
	}

	return nil
}

// Play resolves a playlist by name and starts playback on the managed device,
// launching the daemon first when it is not already running.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	if err := r.ensureDaemonRunning(ctx); err != nil {
		return err
	}

	manager, closeCache := r.newPlaylists(client)
	defer closeCache()

	var playlist *models.Playlist
	playlist, err = manager.ResolveFirst(ctx, query)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			if authErr != nil {
				return authErr
			}
			if playlist, err = manager.ResolveFirst(ctx, query); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	uris, err := manager.Tracks(ctx, playlist.ID)
	if err != nil {
		return err
	}

	controller := r.newPlayback(client)
	if err := controller.Play(ctx, uris); err != nil {
		return err
	}

	automation := r.config.Automation
	if automation.VolumeRamp {
		done := controller.StartRamp(ctx, playback.RampConfig{
			StartVolume: automation.StartVolume,
			EndVolume:   automation.EndVolume,
			Duration:    time.Duration(automation.RampDuration) * time.Second,
		})
		r.writePlain("✓ Playing %q, ramping volume %d to %d over %ds\n",
			playlist.Name, automation.StartVolume, automation.EndVolume, automation.RampDuration)

		// one-shot mode: hold the process open until the ramp lands
		select {
		case <-done:
		case <-ctx.Done():
			controller.CancelRamp()
		}
	} else {
		if err := controller.SetVolume(ctx, automation.DefaultVolume); err != nil {
			r.logger.Warn("failed to set default volume", "error", err)
		}
		r.writePlain("✓ Playing %q at volume %d\n", playlist.Name, automation.DefaultVolume)
	}

	return nil
}

// ensureDaemonRunning brings the daemon up if it is not already: an existing
// process is adopted, otherwise the binary is installed and started.
func (r *Runner) ensureDaemonRunning(ctx context.Context) error {
	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	if manager.HealthCheck() == device.StateRunning {
		return nil
	}

	if pid, found := manager.FindRunning(); found {
		r.logger.Info("adopting running daemon", "pid", pid)
		manager.Adopt(pid, r.config.DeviceName)
		return nil
	}

	if _, err := manager.EnsureInstalled(ctx); err != nil {
		return err
	}
	if _, err := manager.WriteDaemonConfig(r.config.DeviceName); err != nil {
		r.logger.Warn("daemon config not written", "error", err)
	}
	if _, err := manager.Start(ctx, r.config.DeviceName); err != nil {
		return err
	}

	return nil
}
