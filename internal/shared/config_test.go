package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.DeviceName != "SpotifyBot" {
			t.Errorf("expected device name SpotifyBot, got %s", config.DeviceName)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if !config.Automation.VolumeRamp {
			t.Error("expected volume ramp enabled by default")
		}

		if config.Daemon.GracePeriod != 5 {
			t.Errorf("expected grace period 5, got %d", config.Daemon.GracePeriod)
		}

		if config.Daemon.RestartAttempts != 1 {
			t.Errorf("expected 1 restart attempt, got %d", config.Daemon.RestartAttempts)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.DeviceName != DefaultConfig().DeviceName {
			t.Errorf("created config device name doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		testConfig := `spotify:
  client_id: test_client_id
  client_secret: test_secret
  redirect_uri: http://localhost:3000/callback

device_name: LivingRoom

automation:
  volume_ramp: false
  start_volume: 20
  end_volume: 70
  ramp_duration: 120
  default_volume: 40

daemon:
  grace_period: 10
  restart_attempts: 2

server:
  host: 0.0.0.0
  port: 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.DeviceName != "LivingRoom" {
			t.Errorf("expected device name LivingRoom, got %s", config.DeviceName)
		}

		if config.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Spotify.ClientID)
		}

		if config.Automation.VolumeRamp {
			t.Error("expected volume ramp disabled")
		}

		if config.Daemon.GracePeriod != 10 {
			t.Errorf("expected grace period 10, got %d", config.Daemon.GracePeriod)
		}
	})

	t.Run("SaveConfig RoundTrip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		config := DefaultConfig()
		config.DeviceName = "Bot"
		config.Spotify.AccessToken = "token123"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.DeviceName != "Bot" {
			t.Errorf("expected device name Bot, got %s", loaded.DeviceName)
		}

		if loaded.Spotify.AccessToken != "token123" {
			t.Errorf("expected access token to round-trip, got %s", loaded.Spotify.AccessToken)
		}
	})

	t.Run("Token Update", func(t *testing.T) {
		config := DefaultConfig()

		expiry := time.Now().Add(time.Hour)
		token := &oauth2.Token{
			AccessToken:  "new_access",
			RefreshToken: "new_refresh",
			Expiry:       expiry,
		}

		if err := config.Spotify.Update(token); err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		if config.Spotify.AccessToken != "new_access" {
			t.Errorf("expected access token new_access, got %s", config.Spotify.AccessToken)
		}

		rebuilt := config.Spotify.Token()
		if rebuilt.RefreshToken != "new_refresh" {
			t.Errorf("expected refresh token new_refresh, got %s", rebuilt.RefreshToken)
		}

		t.Run("Rejects Empty Token", func(t *testing.T) {
			if err := config.Spotify.Update(&oauth2.Token{}); err == nil {
				t.Error("expected error for empty token")
			}
		})
	})
}
