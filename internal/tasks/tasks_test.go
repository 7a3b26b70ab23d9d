package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/spotctl/internal/device"
	"github.com/desertthunder/spotctl/internal/shared"
)

// stubSupervisor scripts a sequence of health states and recovery outcomes.
type stubSupervisor struct {
	states     []device.State
	stateIdx   int
	recoverErr error
	recovered  int
}

func (s *stubSupervisor) HealthCheck() device.State {
	if s.stateIdx >= len(s.states) {
		return s.states[len(s.states)-1]
	}
	state := s.states[s.stateIdx]
	s.stateIdx++
	return state
}

func (s *stubSupervisor) Recover(ctx context.Context) (device.Handle, error) {
	s.recovered++
	if s.recoverErr != nil {
		return device.Handle{State: device.StateCrashed}, s.recoverErr
	}
	return device.Handle{PID: 4242, State: device.StateRunning}, nil
}

func collect(t *testing.T, updates <-chan Update, want Phase, timeout time.Duration) []Update {
	t.Helper()

	var got []Update
	deadline := time.After(timeout)
	for {
		select {
		case u := <-updates:
			got = append(got, u)
			if u.Phase == want {
				return got
			}
		case <-deadline:
			t.Fatalf("never saw phase %s, got %v", want, got)
		}
	}
}

func TestWatchdog(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("reports healthy while the daemon lives", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		supervisor := &stubSupervisor{states: []device.State{device.StateRunning}}
		w := NewWatchdog(supervisor, time.Millisecond, logger)

		updates := make(chan Update, 16)
		go w.Run(ctx, updates)

		got := collect(t, updates, Healthy, time.Second)
		if got[len(got)-1].State != device.StateRunning {
			t.Errorf("expected running state, got %+v", got)
		}
		if supervisor.recovered != 0 {
			t.Error("expected no recovery attempts")
		}
	})

	t.Run("recovers a crashed daemon", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		supervisor := &stubSupervisor{states: []device.State{device.StateCrashed, device.StateRunning}}
		w := NewWatchdog(supervisor, time.Millisecond, logger)

		updates := make(chan Update, 16)
		go w.Run(ctx, updates)

		got := collect(t, updates, Recovered, time.Second)

		var phases []Phase
		for _, u := range got {
			phases = append(phases, u.Phase)
		}
		wantOrder := []Phase{CrashDetected, Restarting, Recovered}
		idx := 0
		for _, p := range phases {
			if idx < len(wantOrder) && p == wantOrder[idx] {
				idx++
			}
		}
		if idx != len(wantOrder) {
			t.Errorf("expected phases %v in order, got %v", wantOrder, phases)
		}
		if supervisor.recovered != 1 {
			t.Errorf("expected one recovery attempt, got %d", supervisor.recovered)
		}
	})

	t.Run("stops after recovery fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		supervisor := &stubSupervisor{
			states:     []device.State{device.StateCrashed},
			recoverErr: errors.New("binary missing"),
		}
		w := NewWatchdog(supervisor, time.Millisecond, logger)

		updates := make(chan Update, 16)
		done := make(chan struct{})
		go func() {
			w.Run(ctx, updates)
			close(done)
		}()

		collect(t, updates, GaveUp, time.Second)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected the watchdog to stop after giving up")
		}
		if supervisor.recovered != 1 {
			t.Errorf("expected a single recovery attempt, got %d", supervisor.recovered)
		}
	})

	t.Run("a nil updates channel never blocks", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		supervisor := &stubSupervisor{states: []device.State{device.StateRunning}}
		w := NewWatchdog(supervisor, time.Millisecond, logger)

		w.Run(ctx, nil)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		supervisor := &stubSupervisor{states: []device.State{device.StateRunning}}
		w := NewWatchdog(supervisor, time.Millisecond, logger)

		done := make(chan struct{})
		go func() {
			w.Run(ctx, make(chan Update, 1))
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected the watchdog to stop")
		}
	})
}
