//go:build unix

package device

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// launchDaemon starts the binary detached in its own session so it survives
// the CLI exiting. Stdout/stderr go to a capture file under the logs dir.
func (m *Manager) launchDaemon(binary, deviceName, configPath string) (int, error) {
	args := []string{"--no-daemon", "--device-name", deviceName}
	if configPath != "" {
		args = append(args, "--config-path", configPath)
	}

	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if m.logsDir != "" {
		if err := os.MkdirAll(m.logsDir, 0755); err == nil {
			out, err := os.OpenFile(
				filepath.Join(m.logsDir, "spotifyd.log"),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644,
			)
			if err == nil {
				cmd.Stdout = out
				cmd.Stderr = out
			}
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid

	// reap the child when it exits; the handle tracks it by pid
	go func() { _ = cmd.Wait() }()

	return pid, nil
}

// terminateProcess sends SIGTERM, or SIGKILL when force is set.
func terminateProcess(pid int, force bool) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}

	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	return proc.Signal(sig)
}
