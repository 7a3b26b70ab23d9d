package device

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// daemonConfig mirrors the daemon's native TOML configuration file. Only the
// keys the automation layer manages are represented; hand-added keys in an
// existing file are not preserved.
type daemonConfig struct {
	Global daemonGlobal `toml:"global"`
}

type daemonGlobal struct {
	Backend              string `toml:"backend"`
	DeviceName           string `toml:"device_name"`
	DeviceType           string `toml:"device_type"`
	Bitrate              int    `toml:"bitrate"`
	VolumeNormalisation  bool   `toml:"volume_normalisation"`
	NormalisationPregain int    `toml:"normalisation_pregain"`
	CachePath            string `toml:"cache_path"`
	NoAudioCache         bool   `toml:"no_audio_cache"`
}

func (m *Manager) daemonConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(m.profile.ConfigDir(home), "spotifyd.conf"), nil
}

// WriteDaemonConfig renders a spotifyd.conf tuned to the detected platform:
// audio backend, bitrate, and normalisation pregain all follow the profile's
// recommendations. Returns the path written.
func (m *Manager) WriteDaemonConfig(deviceName string) (string, error) {
	path, err := m.daemonConfigPath()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	cachePath := ""
	if home, err := os.UserHomeDir(); err == nil {
		cachePath = m.profile.CacheDir(home)
	}

	cfg := daemonConfig{
		Global: daemonGlobal{
			Backend:              string(m.profile.AudioBackend),
			DeviceName:           deviceName,
			DeviceType:           "speaker",
			Bitrate:              m.profile.Bitrate(),
			VolumeNormalisation:  true,
			NormalisationPregain: m.profile.NormalisationPregain(),
			CachePath:            cachePath,
		},
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	m.logger.Info("daemon config written", "path", path, "backend", cfg.Global.Backend)
	return path, nil
}
