package main

import (
	"context"

	"github.com/desertthunder/spotctl/internal/device"
	"github.com/urfave/cli/v3"
)

// DeviceInstall downloads the daemon binary for the detected platform.
func (r *Runner) DeviceInstall(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	path, err := manager.EnsureInstalled(ctx)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Daemon installed at %s\n", path)
}

// DeviceStart installs the daemon if needed, writes its configuration, and
// launches it bound to the configured device name.
func (r *Runner) DeviceStart(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	if _, err := manager.EnsureInstalled(ctx); err != nil {
		return err
	}

	if path, err := manager.WriteDaemonConfig(r.config.DeviceName); err != nil {
		r.logger.Warn("daemon config not written", "error", err)
	} else {
		r.logger.Debug("daemon config written", "path", path)
	}

	handle, err := manager.Start(ctx, r.config.DeviceName)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Daemon running (pid %d) as %q\n", handle.PID, handle.DeviceName)
}

// DeviceStop terminates a running daemon.
func (r *Runner) DeviceStop(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	// adopt a leftover daemon from a previous session so stop works across runs
	if manager.Handle().State != device.StateRunning {
		if pid, found := manager.FindRunning(); found {
			manager.Adopt(pid, r.config.DeviceName)
		}
	}

	if err := manager.Stop(); err != nil {
		return err
	}

	return r.writePlain("✓ Daemon stopped\n")
}

// DeviceStatus reports platform detection and daemon state.
func (r *Runner) DeviceStatus(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.detector.Detect()
	if err != nil {
		return err
	}

	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	state := manager.HealthCheck()
	if state != device.StateRunning {
		if pid, found := manager.FindRunning(); found {
			manager.Adopt(pid, r.config.DeviceName)
			state = device.StateRunning
		}
	}

	r.writePlain("Platform: %s/%s (audio: %s)\n", profile.OS, profile.Arch, profile.AudioBackend)
	r.writePlain("Asset:    %s\n", profile.AssetName())
	r.writePlain("Daemon:   %s\n", state)
	if handle := manager.Handle(); handle.PID != 0 {
		r.writePlain("PID:      %d\n", handle.PID)
		r.writePlain("Device:   %s\n", handle.DeviceName)
	}

	return nil
}

// DeviceConfig writes the daemon configuration file tuned to the platform.
func (r *Runner) DeviceConfig(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.ensureManager()
	if err != nil {
		return err
	}

	path, err := manager.WriteDaemonConfig(r.config.DeviceName)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Daemon config written to %s\n", path)
}
