// package playback drives the remote playback session through the streaming
// service API: transport controls, volume, and the automated volume ramp.
package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
)

// RampConfig describes an automated volume ramp.
type RampConfig struct {
	StartVolume int
	EndVolume   int
	Duration    time.Duration
}

// Controller issues playback commands against the device registered by the
// daemon. Commands talk to the web API only; the daemon process itself is the
// device manager's concern.
type Controller struct {
	client     services.Client
	logger     *log.Logger
	deviceName string

	rampCancel   context.CancelFunc
	rampDone     chan struct{}
	retryWait    time.Duration
	stepInterval time.Duration
}

// NewController creates a Controller that targets the device named deviceName.
func NewController(client services.Client, deviceName string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		client:       client,
		logger:       logger,
		deviceName:   deviceName,
		retryWait:    2 * time.Second,
		stepInterval: time.Second,
	}
}

// findDevice looks the managed device up in the account's connected devices.
func (c *Controller) findDevice(ctx context.Context) (*models.Device, error) {
	devices, err := c.client.Devices(ctx)
	if err != nil {
		return nil, err
	}

	for i := range devices {
		if strings.EqualFold(devices[i].Name, c.deviceName) {
			return &devices[i], nil
		}
	}

	return nil, fmt.Errorf("%w: device %q not registered", shared.ErrDeviceUnavailable, c.deviceName)
}

// Play starts playback of the given track URIs on the managed device.
//
// The device must be visible to the API before the command is issued; newly
// launched daemons can take a moment to register, so a missing device gets one
// retry after a short wait before failing with ErrDeviceUnavailable.
func (c *Controller) Play(ctx context.Context, uris []string) error {
	device, err := c.findDevice(ctx)
	if errors.Is(err, shared.ErrDeviceUnavailable) {
		c.logger.Debug("device not visible yet, retrying", "device", c.deviceName)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryWait):
		}
		device, err = c.findDevice(ctx)
	}
	if err != nil {
		return err
	}

	c.logger.Info("starting playback", "device", device.Name, "tracks", len(uris))
	return c.client.Play(ctx, device.ID, uris)
}

// Pause pauses the current playback session.
func (c *Controller) Pause(ctx context.Context) error {
	return c.client.Pause(ctx)
}

// Resume resumes a paused session on whatever device holds it.
func (c *Controller) Resume(ctx context.Context) error {
	return c.client.Play(ctx, "", nil)
}

// Stop halts playback. The API has no stop primitive, so pause stands in; a
// session that is already gone is treated as stopped.
func (c *Controller) Stop(ctx context.Context) error {
	c.CancelRamp()

	err := c.client.Pause(ctx)
	if errors.Is(err, shared.ErrNoActiveSession) {
		return nil
	}
	return err
}

// Next skips to the next track.
func (c *Controller) Next(ctx context.Context) error {
	return c.client.Next(ctx)
}

// Previous moves back to the previous track.
func (c *Controller) Previous(ctx context.Context) error {
	return c.client.Previous(ctx)
}

// SetVolume sets the playback volume, clamping level into [0, 100].
func (c *Controller) SetVolume(ctx context.Context, level int) error {
	return c.client.SetVolume(ctx, Clamp(level))
}

// State returns the current playback state.
func (c *Controller) State(ctx context.Context) (*models.PlaybackState, error) {
	return c.client.PlaybackState(ctx)
}

// StartRamp gradually moves the volume from cfg.StartVolume to cfg.EndVolume
// over cfg.Duration, stepping at a fixed interval. Any ramp already in flight
// is cancelled first. The ramp runs in the background; manual volume changes
// and Stop cancel it. The returned channel closes when the ramp finishes or
// is cancelled.
func (c *Controller) StartRamp(ctx context.Context, cfg RampConfig) <-chan struct{} {
	c.CancelRamp()

	done := make(chan struct{})
	c.rampDone = done

	start := Clamp(cfg.StartVolume)
	end := Clamp(cfg.EndVolume)
	if cfg.Duration <= 0 || start == end {
		if err := c.client.SetVolume(ctx, end); err != nil {
			c.logger.Warn("volume set failed", "error", err)
		}
		close(done)
		return done
	}

	rampCtx, cancel := context.WithCancel(ctx)
	c.rampCancel = cancel

	steps := int(cfg.Duration / c.stepInterval)
	if steps < 1 {
		steps = 1
	}
	delta := float64(end-start) / float64(steps)

	c.logger.Info("starting volume ramp", "from", start, "to", end, "duration", cfg.Duration)

	go func() {
		defer close(done)
		c.ramp(rampCtx, start, end, delta, steps)
	}()

	return done
}

func (c *Controller) ramp(ctx context.Context, start, end int, delta float64, steps int) {
	if err := c.client.SetVolume(ctx, start); err != nil {
		c.logger.Warn("ramp volume set failed", "error", err)
	}

	ticker := time.NewTicker(c.stepInterval)
	defer ticker.Stop()

	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			c.logger.Debug("volume ramp cancelled", "step", step)
			return
		case <-ticker.C:
		}

		level := start + int(float64(step)*delta)
		if step == steps {
			level = end
		}
		if err := c.client.SetVolume(ctx, Clamp(level)); err != nil {
			c.logger.Warn("ramp volume set failed", "level", level, "error", err)
			return
		}
	}

	c.logger.Info("volume ramp complete", "level", end)
}

// RampActive reports whether a volume ramp is still running.
func (c *Controller) RampActive() bool {
	if c.rampDone == nil {
		return false
	}
	select {
	case <-c.rampDone:
		return false
	default:
		return true
	}
}

// CancelRamp stops an in-flight volume ramp. Safe to call when none is running.
func (c *Controller) CancelRamp() {
	if c.rampCancel != nil {
		c.rampCancel()
		c.rampCancel = nil
	}
}

// Clamp bounds a volume level into the valid [0, 100] range.
func Clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
