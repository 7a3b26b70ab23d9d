package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/device"
	"github.com/desertthunder/spotctl/internal/platform"
	"github.com/desertthunder/spotctl/internal/playback"
	"github.com/desertthunder/spotctl/internal/playlists"
	"github.com/desertthunder/spotctl/internal/repositories"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     services.Client
	manager    *device.Manager
	detector   *platform.Detector
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     services.Client
	Manager    *device.Manager
	Detector   *platform.Detector
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.yaml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Detector == nil {
		opts.Detector = platform.NewDetector()
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		manager:    opts.Manager,
		detector:   opts.Detector,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, deviceCommand, searchCommand, playCommand, runCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureClient lazily builds the streaming client from the configured
// credentials and authenticates it with any persisted token.
func (r *Runner) ensureClient() (services.Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	if r.config.Spotify.ClientID == "" || r.config.Spotify.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	client, err := services.NewSpotifyClient(r.config.Spotify.Map())
	if err != nil {
		return nil, err
	}

	client.SetTokenRefreshCallback(r.persistToken)

	if r.config.Spotify.AccessToken != "" {
		if err := client.OAuthenticate(context.Background(), r.config.Spotify.Token()); err != nil {
			r.logger.Warn("stored token rejected, run auth again", "error", err)
		}
	}

	r.client = client
	return client, nil
}

// ensureManager lazily builds the daemon manager after detecting the platform.
func (r *Runner) ensureManager() (*device.Manager, error) {
	if r.manager != nil {
		return r.manager, nil
	}

	profile, err := r.detector.Detect()
	if err != nil {
		return nil, err
	}

	logger, logErr := shared.NewFileLogger(r.config.Logs.Dir, "device_manager")
	if logErr != nil {
		logger = r.logger
	}

	r.manager = device.NewManager(device.Options{
		Profile:         profile,
		Logger:          logger,
		BinaryPath:      r.config.Daemon.BinaryPath,
		LogsDir:         r.config.Logs.Dir,
		GracePeriod:     time.Duration(r.config.Daemon.GracePeriod) * time.Second,
		RestartAttempts: r.config.Daemon.RestartAttempts,
	})
	return r.manager, nil
}

func (r *Runner) newPlayback(client services.Client) *playback.Controller {
	return playback.NewController(client, r.config.DeviceName, r.logger)
}

func (r *Runner) newPlaylists(client services.Client) (*playlists.Manager, func()) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("search cache unavailable", "error", err)
		return playlists.NewManager(client, nil, nil, r.logger), func() {}
	}

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("search cache migrations failed", "error", err)
		db.Close()
		return playlists.NewManager(client, nil, nil, r.logger), func() {}
	}

	manager := playlists.NewManager(
		client,
		repositories.NewPlaylistRepository(db),
		repositories.NewSearchRepository(db),
		r.logger,
	)
	return manager, func() { db.Close() }
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
