package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// browserCommand maps an OS to the command that opens the default browser.
// A Raspberry Pi running headless has no browser; callers fall back to
// printing the URL when this errors.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return nil, fmt.Errorf("%w: no browser opener on this system", ErrUnsupportedPlatform)
		}
		return exec.Command("xdg-open", url), nil
	default:
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrUnsupportedPlatform, goos)
	}
}

// OpenBrowser opens the default system browser at the given URL.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(getRuntime(), url)
	if err != nil {
		return err
	}

	if err := startCmd(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
