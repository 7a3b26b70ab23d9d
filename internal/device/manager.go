// package device owns the playback daemon's lifecycle: installation,
// supervision, and restart of the spotifyd process.
//
// The daemon is an external resource; all mutation of it flows through
// [Manager] and the [Handle] it maintains. At most one running handle exists
// per process: starting a new instance stops any running one first.
package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/platform"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/shirou/gopsutil/v3/process"
)

// State describes the daemon lifecycle state.
type State string

const (
	StateNotInstalled State = "not_installed"
	StateStopped      State = "stopped"
	StateStarting     State = "starting"
	StateRunning      State = "running"
	StateCrashed      State = "crashed"
)

// Handle is the managed reference to the daemon process. Owned exclusively by
// Manager and mutated only through its lifecycle operations.
type Handle struct {
	PID        int
	BinaryPath string
	DeviceName string
	State      State
}

// Options configures a Manager.
type Options struct {
	Profile         platform.Profile
	Logger          *log.Logger
	BinaryPath      string        // default: ~/.local/bin/spotifyd
	LogsDir         string        // daemon stdout/stderr capture
	GracePeriod     time.Duration // readiness window after launch
	StopTimeout     time.Duration // graceful termination window
	RestartAttempts int           // crash recovery budget
}

// Manager resolves, installs, starts, stops, and health-checks the daemon.
//
// Start/Stop are serialized with a mutex so concurrent call sites cannot race
// the lifecycle, though the interactive CLI dispatches single-threaded anyway.
type Manager struct {
	profile         platform.Profile
	logger          *log.Logger
	binaryPath      string
	logsDir         string
	gracePeriod     time.Duration
	stopTimeout     time.Duration
	restartAttempts int

	mu     sync.Mutex
	handle Handle

	// injectable process primitives, overridden in tests
	launch    func(binary, deviceName, configPath string) (int, error)
	alive     func(pid int) bool
	terminate func(pid int, force bool) error
	fetcher   *releaseFetcher
}

// NewManager creates a Manager for the given platform profile.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.BinaryPath == "" {
		home, _ := os.UserHomeDir()
		opts.BinaryPath = filepath.Join(home, ".local", "bin", "spotifyd")
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 5 * time.Second
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 2 * time.Second
	}
	if opts.RestartAttempts < 0 {
		opts.RestartAttempts = 1
	}

	m := &Manager{
		profile:         opts.Profile,
		logger:          opts.Logger,
		binaryPath:      opts.BinaryPath,
		logsDir:         opts.LogsDir,
		gracePeriod:     opts.GracePeriod,
		stopTimeout:     opts.StopTimeout,
		restartAttempts: opts.RestartAttempts,
		handle:          Handle{State: StateNotInstalled},
	}
	m.launch = m.launchDaemon
	m.alive = processAlive
	m.terminate = terminateProcess
	m.fetcher = newReleaseFetcher(opts.Logger)

	if m.isInstalled() {
		m.handle.State = StateStopped
		m.handle.BinaryPath = m.binaryPath
	}

	return m
}

func (m *Manager) isInstalled() bool {
	info, err := os.Stat(m.binaryPath)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
}

// EnsureInstalled checks for an existing daemon binary and downloads the
// platform-matching release asset when absent. Returns the binary path.
func (m *Manager) EnsureInstalled(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isInstalled() {
		m.logger.Debug("daemon binary present", "path", m.binaryPath)
		return m.binaryPath, nil
	}

	m.logger.Info("installing daemon", "asset", m.profile.AssetName(), "path", m.binaryPath)

	if err := os.MkdirAll(filepath.Dir(m.binaryPath), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	if err := m.fetcher.Install(ctx, m.profile, m.binaryPath); err != nil {
		return "", err
	}

	if err := os.Chmod(m.binaryPath, 0755); err != nil {
		return "", fmt.Errorf("%w: chmod: %v", shared.ErrDownloadFailed, err)
	}

	m.handle.State = StateStopped
	m.handle.BinaryPath = m.binaryPath
	m.logger.Info("daemon installed", "path", m.binaryPath)
	return m.binaryPath, nil
}

// Start launches the daemon as a detached background process bound to
// deviceName. A running daemon is stopped first so only one instance ever
// exists. The process must stay alive through the grace period or Start fails
// with ErrLaunchFailed.
func (m *Manager) Start(ctx context.Context, deviceName string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.startLocked(ctx, deviceName)
}

func (m *Manager) startLocked(ctx context.Context, deviceName string) (Handle, error) {
	if !m.isInstalled() {
		return m.handle, fmt.Errorf("%w: binary not installed at %s", shared.ErrLaunchFailed, m.binaryPath)
	}

	if m.handle.State == StateRunning {
		m.logger.Info("daemon already running, stopping first", "pid", m.handle.PID)
		m.stopLocked()
	}

	if deviceName == "" {
		deviceName = "SpotifyBot-" + m.profile.DeviceNameSuffix()
	}

	m.handle = Handle{
		BinaryPath: m.binaryPath,
		DeviceName: deviceName,
		State:      StateStarting,
	}

	configPath := ""
	if path, err := m.daemonConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			configPath = path
		}
	}

	m.logger.Info("starting daemon", "device", deviceName, "config", configPath)

	pid, err := m.launch(m.binaryPath, deviceName, configPath)
	if err != nil {
		m.handle.State = StateStopped
		return m.handle, fmt.Errorf("%w: %v", shared.ErrLaunchFailed, err)
	}
	m.handle.PID = pid

	// readiness: the process must survive the grace period
	deadline := time.Now().Add(m.gracePeriod)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			m.stopLocked()
			return m.handle, err
		}
		if !m.alive(pid) {
			m.handle.State = StateCrashed
			return m.handle, fmt.Errorf("%w: process exited during startup", shared.ErrLaunchFailed)
		}
		time.Sleep(250 * time.Millisecond)
	}

	m.handle.State = StateRunning
	m.logger.Info("daemon running", "pid", pid, "device", deviceName)
	return m.handle, nil
}

// Stop terminates the daemon. Idempotent: a no-op when nothing is running.
// Sends a graceful signal first, waits briefly, then forces termination.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	return nil
}

func (m *Manager) stopLocked() {
	if m.handle.PID == 0 || (m.handle.State != StateRunning && m.handle.State != StateStarting && m.handle.State != StateCrashed) {
		return
	}

	pid := m.handle.PID
	if m.alive(pid) {
		m.logger.Info("stopping daemon", "pid", pid)
		if err := m.terminate(pid, false); err != nil {
			m.logger.Warn("graceful termination failed", "pid", pid, "error", err)
		}

		deadline := time.Now().Add(m.stopTimeout)
		for m.alive(pid) && time.Now().Before(deadline) {
			time.Sleep(100 * time.Millisecond)
		}

		if m.alive(pid) {
			m.logger.Warn("daemon still alive, force killing", "pid", pid)
			if err := m.terminate(pid, true); err != nil {
				m.logger.Error("force kill failed", "pid", pid, "error", err)
			}
		}
	}

	m.handle.PID = 0
	m.handle.State = StateStopped
}

// Restart stops then starts the daemon; used for recovery after a crash.
func (m *Manager) Restart(ctx context.Context) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deviceName := m.handle.DeviceName
	m.stopLocked()
	return m.startLocked(ctx, deviceName)
}

// Recover attempts the configured number of restarts after a detected crash.
// When the budget is exhausted the failure surfaces as ErrDeviceUnavailable.
func (m *Manager) Recover(ctx context.Context) (Handle, error) {
	var lastErr error
	for attempt := 1; attempt <= m.restartAttempts; attempt++ {
		m.logger.Warn("attempting daemon restart", "attempt", attempt)
		handle, err := m.Restart(ctx)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	return m.Handle(), fmt.Errorf("%w: restart budget exhausted: %v", shared.ErrDeviceUnavailable, lastErr)
}

// HealthCheck polls process liveness and updates the handle state. It performs
// no network calls; device visibility to the remote API is the playback
// controller's concern.
func (m *Manager) HealthCheck() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle.State == StateRunning && !m.alive(m.handle.PID) {
		m.logger.Warn("daemon process gone", "pid", m.handle.PID)
		m.handle.State = StateCrashed
	}

	return m.handle.State
}

// Handle returns a copy of the current daemon handle.
func (m *Manager) Handle() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// FindRunning scans the process table for an already running daemon, e.g. one
// left over from a previous session.
func (m *Manager) FindRunning() (int, bool) {
	procs, err := process.Processes()
	if err != nil {
		m.logger.Warn("process scan failed", "error", err)
		return 0, false
	}

	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if name == "spotifyd" {
			return int(p.Pid), true
		}
	}

	return 0, false
}

// Adopt takes ownership of an externally started daemon process.
func (m *Manager) Adopt(pid int, deviceName string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handle = Handle{
		PID:        pid,
		BinaryPath: m.binaryPath,
		DeviceName: deviceName,
		State:      StateRunning,
	}
	return m.handle
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	alive, err := process.PidExists(int32(pid))
	return err == nil && alive
}
