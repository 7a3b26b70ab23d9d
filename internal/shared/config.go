package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/oauth2"
)

//go:embed config.example.yaml
var exampleConf []byte

// Config represents the application configuration loaded from a YAML file.
type Config struct {
	Spotify    SpotifyConfig    `yaml:"spotify"`
	DeviceName string           `yaml:"device_name"`
	Automation AutomationConfig `yaml:"automation"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Server     ServerConfig     `yaml:"server"`
	Logs       LogsConfig       `yaml:"logs"`
	Database   DatabaseConfig   `yaml:"database"`
}

// SpotifyConfig contains Spotify API credentials and persisted OAuth tokens.
type SpotifyConfig struct {
	ClientID     string    `yaml:"client_id"`
	ClientSecret string    `yaml:"client_secret"`
	RedirectURI  string    `yaml:"redirect_uri"`
	AccessToken  string    `yaml:"access_token,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	Expiry       time.Time `yaml:"expiry,omitempty"`
}

// Map returns the credentials as a string map for service constructors.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
	}
}

// Token builds an [oauth2.Token] from the persisted token fields.
func (s SpotifyConfig) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

// Update writes an [oauth2.Token] back into the config fields so it can be saved.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.Expiry = token.Expiry
	return nil
}

// AutomationConfig drives playback automation behavior.
type AutomationConfig struct {
	VolumeRamp    bool `yaml:"volume_ramp"`
	StartVolume   int  `yaml:"start_volume"`
	EndVolume     int  `yaml:"end_volume"`
	RampDuration  int  `yaml:"ramp_duration"` // seconds
	DefaultVolume int  `yaml:"default_volume"`
}

// DaemonConfig contains spotifyd lifecycle settings.
type DaemonConfig struct {
	BinaryPath      string `yaml:"binary_path,omitempty"` // default: ~/.local/bin/spotifyd
	GracePeriod     int    `yaml:"grace_period"`          // seconds to wait for readiness
	RestartAttempts int    `yaml:"restart_attempts"`      // restarts after a detected crash
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogsConfig contains logging settings.
type LogsConfig struct {
	Dir string `yaml:"dir"`
}

// DatabaseConfig contains search cache database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig reads and parses a YAML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig serializes the config back to YAML at the specified path.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := yaml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.yaml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
