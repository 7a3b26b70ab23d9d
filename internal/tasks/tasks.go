// Package tasks runs background supervision of the playback daemon with
// real-time status reporting.
//
// The [Watchdog] polls daemon liveness on an interval. When the process has
// died it attempts recovery through the device manager and reports each phase
// over a non-blocking updates channel, so a slow or absent consumer never
// stalls supervision.
package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/device"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Phase enumerates watchdog states reported over the updates channel.
type Phase int

const (
	Healthy Phase = iota
	CrashDetected
	Restarting
	Recovered
	GaveUp
)

func (p Phase) String() string {
	switch p {
	case Healthy:
		return "healthy"
	case CrashDetected:
		return "crash_detected"
	case Restarting:
		return "restarting"
	case Recovered:
		return "recovered"
	case GaveUp:
		return "gave_up"
	default:
		return ""
	}
}

// Update is one status event from the watchdog.
type Update struct {
	Phase   Phase
	State   device.State
	Message string
}

// Supervisor is the slice of the device manager the watchdog drives.
type Supervisor interface {
	HealthCheck() device.State
	Recover(ctx context.Context) (device.Handle, error)
}

// Watchdog supervises the daemon process.
type Watchdog struct {
	supervisor Supervisor
	interval   time.Duration
	logger     *log.Logger
}

// NewWatchdog creates a Watchdog polling at the given interval.
func NewWatchdog(supervisor Supervisor, interval time.Duration, logger *log.Logger) *Watchdog {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Watchdog{supervisor: supervisor, interval: interval, logger: logger}
}

// Run polls until the context is cancelled. Updates are sent non-blocking;
// a nil or full channel drops them rather than stalling the poll loop.
// After a failed recovery the watchdog stops so it cannot thrash a daemon
// that will not come back.
func (w *Watchdog) Run(ctx context.Context, updates chan<- Update) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state := w.supervisor.HealthCheck()
		if state != device.StateCrashed {
			w.send(updates, Update{Phase: Healthy, State: state})
			continue
		}

		w.logger.Warn("daemon crash detected")
		w.send(updates, Update{Phase: CrashDetected, State: state, Message: "daemon process died"})
		w.send(updates, Update{Phase: Restarting, State: state, Message: "attempting restart"})

		handle, err := w.supervisor.Recover(ctx)
		if err != nil {
			w.logger.Error("daemon recovery failed", "error", err)
			w.send(updates, Update{Phase: GaveUp, State: handle.State, Message: err.Error()})
			return
		}

		w.logger.Info("daemon recovered", "pid", handle.PID)
		w.send(updates, Update{Phase: Recovered, State: handle.State, Message: "daemon restarted"})
	}
}

func (w *Watchdog) send(updates chan<- Update, update Update) {
	if updates == nil {
		return
	}
	select {
	case updates <- update:
	default:
	}
}
