package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if missing and initializes the search cache.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Config created at %s\n", r.configPath)
		r.writePlain("  Fill in spotify.client_id and spotify.client_secret, then run: spotctl auth\n")
	} else {
		r.writePlain("✓ Config present at %s\n", r.configPath)
	}

	r.logger.Info("initializing search cache", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.writePlain("✓ Search cache ready at %s\n", r.config.Database.Path)

	if profile, err := r.detector.Detect(); err == nil {
		r.writePlain("✓ Platform: %s/%s (audio: %s)\n", profile.OS, profile.Arch, profile.AudioBackend)
	} else {
		r.writePlain("⚠ Platform detection failed: %v\n", err)
	}

	return nil
}
