package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.yaml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if env := os.Getenv("SPOTCTL_CONFIG"); env != "" {
		configPath = env
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "spotctl",
		Usage:    "Install and drive a spotifyd playback device from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stop-daemon",
				Usage: "Stop the daemon when the session ends",
			},
		},
		// bare `spotctl` drops into the interactive session
		Action: runner.Session,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
