package platform

import (
	"errors"
	"os"
	"testing"
)

// fakeDetector builds a Detector simulating the given host characteristics.
func fakeDetector(goos, goarch string, files map[string]string, binaries map[string]bool) *Detector {
	return &Detector{
		goos:   func() string { return goos },
		goarch: func() string { return goarch },
		readFile: func(path string) ([]byte, error) {
			if content, ok := files[path]; ok {
				return []byte(content), nil
			}
			return nil, os.ErrNotExist
		},
		lookPath: func(name string) (string, error) {
			if binaries[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		exists: func(path string) bool {
			_, ok := files[path]
			return ok
		},
	}
}

func TestDetect(t *testing.T) {
	t.Run("MacOS ARM", func(t *testing.T) {
		d := fakeDetector("darwin", "arm64", nil, nil)

		profile, err := d.Detect()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.OS != MacOS {
			t.Errorf("expected macos, got %s", profile.OS)
		}
		if profile.Arch != ARM64 {
			t.Errorf("expected arm64, got %s", profile.Arch)
		}
		if profile.AudioBackend != CoreAudio {
			t.Errorf("expected coreaudio, got %s", profile.AudioBackend)
		}
	})

	t.Run("Generic Linux", func(t *testing.T) {
		d := fakeDetector("linux", "amd64", nil, nil)

		profile, err := d.Detect()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.OS != Linux {
			t.Errorf("expected linux, got %s", profile.OS)
		}
		if profile.Arch != X8664 {
			t.Errorf("expected x86_64, got %s", profile.Arch)
		}
		if profile.AudioBackend != ALSA {
			t.Errorf("expected alsa default, got %s", profile.AudioBackend)
		}
	})

	t.Run("Raspberry Pi Takes Precedence", func(t *testing.T) {
		files := map[string]string{
			"/proc/device-tree/model": "Raspberry Pi 4 Model B Rev 1.4",
		}
		d := fakeDetector("linux", "arm64", files, nil)

		profile, err := d.Detect()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.OS != RaspberryPi {
			t.Errorf("expected raspberry_pi, got %s", profile.OS)
		}
		if !profile.IsRaspberryPi() {
			t.Error("expected IsRaspberryPi true")
		}
	})

	t.Run("Raspberry Pi Via Cpuinfo Fallback", func(t *testing.T) {
		files := map[string]string{
			"/proc/cpuinfo": "processor : 0\nmodel name : ARMv7\nHardware : BCM2835\n",
		}
		d := fakeDetector("linux", "arm", files, nil)

		profile, err := d.Detect()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.OS != RaspberryPi {
			t.Errorf("expected raspberry_pi, got %s", profile.OS)
		}
		if profile.Arch != ARMv7 {
			t.Errorf("expected armv7, got %s", profile.Arch)
		}
	})

	t.Run("PulseAudio Preferred Over ALSA", func(t *testing.T) {
		d := fakeDetector("linux", "amd64", nil, map[string]bool{"pulseaudio": true, "aplay": true})

		profile, err := d.Detect()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.AudioBackend != PulseAudio {
			t.Errorf("expected pulseaudio, got %s", profile.AudioBackend)
		}
	})

	t.Run("Unsupported OS", func(t *testing.T) {
		d := fakeDetector("plan9", "amd64", nil, nil)

		if _, err := d.Detect(); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("All Supported Pairs Have Audio Backend", func(t *testing.T) {
		pairs := []struct {
			goos, goarch string
		}{
			{"linux", "amd64"},
			{"linux", "arm64"},
			{"linux", "arm"},
			{"darwin", "amd64"},
			{"darwin", "arm64"},
		}

		for _, pair := range pairs {
			d := fakeDetector(pair.goos, pair.goarch, nil, nil)
			profile, err := d.Detect()
			if err != nil {
				t.Fatalf("detect failed for %s/%s: %v", pair.goos, pair.goarch, err)
			}
			if profile.AudioBackend == "" {
				t.Errorf("empty audio backend for %s/%s", pair.goos, pair.goarch)
			}
			if profile.AssetName() == "" {
				t.Errorf("empty asset name for %s/%s", pair.goos, pair.goarch)
			}
		}
	})
}

func TestProfile(t *testing.T) {
	t.Run("AssetName", func(t *testing.T) {
		cases := []struct {
			profile Profile
			want    string
		}{
			{Profile{OS: MacOS, Arch: ARM64}, "spotifyd-macos-arm64"},
			{Profile{OS: MacOS, Arch: X8664}, "spotifyd-macos-x86_64"},
			{Profile{OS: Linux, Arch: X8664}, "spotifyd-linux-x86_64"},
			{Profile{OS: Linux, Arch: ARM64}, "spotifyd-linux-aarch64"},
			{Profile{OS: RaspberryPi, Arch: ARMv7}, "spotifyd-linux-aarch64"},
		}

		for _, c := range cases {
			if got := c.profile.AssetName(); got != c.want {
				t.Errorf("AssetName(%s/%s) = %s, want %s", c.profile.OS, c.profile.Arch, got, c.want)
			}
		}
	})

	t.Run("Pi Recommendations", func(t *testing.T) {
		pi := Profile{OS: RaspberryPi, Arch: ARM64, AudioBackend: ALSA}
		desktop := Profile{OS: Linux, Arch: X8664, AudioBackend: PulseAudio}

		if pi.Bitrate() >= desktop.Bitrate() {
			t.Error("expected lower bitrate on raspberry pi")
		}
		if pi.DeviceNameSuffix() != "RaspberryPi" {
			t.Errorf("expected RaspberryPi suffix, got %s", pi.DeviceNameSuffix())
		}
	})

	t.Run("Directories", func(t *testing.T) {
		mac := Profile{OS: MacOS}
		linux := Profile{OS: Linux}

		if mac.ConfigDir("/Users/x") != "/Users/x/Library/Application Support/spotifyd" {
			t.Errorf("unexpected macos config dir: %s", mac.ConfigDir("/Users/x"))
		}
		if linux.ConfigDir("/home/x") != "/home/x/.config/spotifyd" {
			t.Errorf("unexpected linux config dir: %s", linux.ConfigDir("/home/x"))
		}
		if linux.CacheDir("/home/x") != "/home/x/.cache/spotifyd" {
			t.Errorf("unexpected linux cache dir: %s", linux.CacheDir("/home/x"))
		}
	})
}
