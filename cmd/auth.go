package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotctl/internal/server"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authentication flow.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens which are persisted to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	client, err := r.ensureClient()
	if err != nil {
		return err
	}

	oauthClient, ok := client.(services.OAuthService)
	if !ok {
		return fmt.Errorf("%w: %s does not support browser authorization", shared.ErrAuthFailed, client.Name())
	}

	token, err := r.doOAuth(ctx, oauthClient, "authorization")
	if err != nil {
		return err
	}

	if err := oauthClient.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to authenticate with new tokens: %w", err)
	}

	r.persistToken(token)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n", r.configPath)
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, oauthClient services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	authURL := oauthClient.GetAuthURL(state)
	handler := server.NewOAuthHandler(oauthClient.GetOAuthConfig(), state)
	srv := server.NewCallbackServer(r.config.Server.Host, r.config.Server.Port, handler, r.logger)

	r.logger.Info("starting callback server", "host", r.config.Server.Host, "port", r.config.Server.Port)
	srv.Start()

	r.writePlain("→ Opening browser for %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	result, err := srv.Wait(waitCtx)
	if err != nil {
		return nil, err
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// persistToken writes a refreshed token back to the config file so the next
// invocation does not need a browser round trip.
func (r *Runner) persistToken(token *oauth2.Token) {
	if err := r.config.Spotify.Update(token); err != nil {
		r.logger.Warn("refusing to persist invalid token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("token persisted", "path", r.configPath)
}

// handleAuthError checks whether err is a token expiry and reauthorizes once.
// Returns true when the caller should retry the failed operation.
func (r *Runner) handleAuthError(ctx context.Context, err error) (bool, error) {
	if err == nil || !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")

	oauthClient, ok := r.client.(services.OAuthService)
	if !ok {
		return false, err
	}

	token, reauthErr := r.doOAuth(ctx, oauthClient, "reauthorization")
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}

	if authErr := oauthClient.OAuthenticate(ctx, token); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.persistToken(token)
	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")
	return true, nil
}
