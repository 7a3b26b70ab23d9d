// package platform classifies the host system for daemon installation and configuration.
//
// Detection is side-effect free: probes read files and PATH entries but never
// mutate anything, and the resulting [Profile] is immutable for the process lifetime.
package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/desertthunder/spotctl/internal/shared"
)

// OSKind identifies the operating system family.
type OSKind string

const (
	Linux       OSKind = "linux"
	MacOS       OSKind = "macos"
	RaspberryPi OSKind = "raspberry_pi"
)

// Arch identifies the CPU architecture.
type Arch string

const (
	X8664 Arch = "x86_64"
	ARM64 Arch = "arm64"
	ARMv7 Arch = "armv7"
)

// AudioBackend identifies the audio system the daemon should use.
type AudioBackend string

const (
	ALSA       AudioBackend = "alsa"
	PulseAudio AudioBackend = "pulseaudio"
	CoreAudio  AudioBackend = "coreaudio"
)

// Profile describes the host platform. Created once per process at startup.
type Profile struct {
	OS           OSKind
	Arch         Arch
	AudioBackend AudioBackend
}

// Pi-specific device tree markers, checked before the generic Linux path.
var piMarkerFiles = []string{
	"/proc/device-tree/model",
	"/sys/firmware/devicetree/base/model",
}

// Detector probes the host system. The probe functions are injectable so tests
// can simulate any supported platform.
type Detector struct {
	goos     func() string
	goarch   func() string
	readFile func(string) ([]byte, error)
	lookPath func(string) (string, error)
	exists   func(string) bool
}

// NewDetector creates a Detector backed by the real host system.
func NewDetector() *Detector {
	return &Detector{
		goos:     func() string { return runtime.GOOS },
		goarch:   func() string { return runtime.GOARCH },
		readFile: os.ReadFile,
		lookPath: exec.LookPath,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// Detect classifies the host and returns its Profile.
//
// Raspberry Pi markers take precedence over the generic Linux check. Fails only
// when the OS family is entirely unrecognized.
func (d *Detector) Detect() (Profile, error) {
	var profile Profile

	switch d.goos() {
	case "darwin":
		profile.OS = MacOS
	case "linux":
		if d.isRaspberryPi() {
			profile.OS = RaspberryPi
		} else {
			profile.OS = Linux
		}
	default:
		return Profile{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedPlatform, d.goos())
	}

	switch d.goarch() {
	case "amd64":
		profile.Arch = X8664
	case "arm64":
		profile.Arch = ARM64
	case "arm":
		profile.Arch = ARMv7
	default:
		return Profile{}, fmt.Errorf("%w: unknown architecture %s", shared.ErrUnsupportedPlatform, d.goarch())
	}

	profile.AudioBackend = d.detectAudioBackend(profile.OS)

	return profile, nil
}

func (d *Detector) isRaspberryPi() bool {
	for _, marker := range piMarkerFiles {
		if data, err := d.readFile(marker); err == nil {
			if strings.Contains(strings.ToLower(string(data)), "raspberry pi") {
				return true
			}
		}
	}

	// /proc/cpuinfo as fallback
	if data, err := d.readFile("/proc/cpuinfo"); err == nil {
		content := strings.ToLower(string(data))
		return strings.Contains(content, "raspberry pi") || strings.Contains(content, "bcm")
	}

	return false
}

// detectAudioBackend prefers PulseAudio over ALSA when both are present on Linux.
func (d *Detector) detectAudioBackend(os OSKind) AudioBackend {
	if os == MacOS {
		return CoreAudio
	}

	if _, err := d.lookPath("pulseaudio"); err == nil {
		return PulseAudio
	}
	if d.exists("/usr/bin/pulseaudio") {
		return PulseAudio
	}

	// ALSA is the Linux default even when no probe matches
	return ALSA
}

// IsRaspberryPi reports whether the profile is a Raspberry Pi host.
func (p Profile) IsRaspberryPi() bool {
	return p.OS == RaspberryPi
}

// AssetName returns the spotifyd release asset name matching this platform.
func (p Profile) AssetName() string {
	switch p.OS {
	case MacOS:
		if p.Arch == ARM64 {
			return "spotifyd-macos-arm64"
		}
		return "spotifyd-macos-x86_64"
	default:
		// 32-bit ARM builds are unreliable upstream, Pi hosts get aarch64
		if p.Arch == ARM64 || p.Arch == ARMv7 {
			return "spotifyd-linux-aarch64"
		}
		return "spotifyd-linux-x86_64"
	}
}

// DeviceNameSuffix returns the default device name suffix for this platform.
func (p Profile) DeviceNameSuffix() string {
	switch p.OS {
	case RaspberryPi:
		return "RaspberryPi"
	case MacOS:
		return "Mac"
	default:
		return "Linux"
	}
}

// Bitrate returns the recommended playback bitrate. Pi hosts get a lower rate.
func (p Profile) Bitrate() int {
	if p.IsRaspberryPi() {
		return 160
	}
	return 320
}

// NormalisationPregain returns the recommended volume normalisation pregain in dB.
func (p Profile) NormalisationPregain() int {
	if p.IsRaspberryPi() {
		return -10
	}
	return -6
}

// ConfigDir returns the spotifyd configuration directory for this platform.
func (p Profile) ConfigDir(home string) string {
	if p.OS == MacOS {
		return filepath.Join(home, "Library", "Application Support", "spotifyd")
	}
	return filepath.Join(home, ".config", "spotifyd")
}

// CacheDir returns the spotifyd cache directory for this platform.
func (p Profile) CacheDir(home string) string {
	if p.OS == MacOS {
		return filepath.Join(home, "Library", "Caches", "spotifyd")
	}
	return filepath.Join(home, ".cache", "spotifyd")
}
