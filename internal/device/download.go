package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/platform"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/mholt/archives"
)

const latestReleaseURL = "https://api.github.com/repos/Spotifyd/spotifyd/releases/latest"

type releaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type release struct {
	TagName string         `json:"tag_name"`
	Assets  []releaseAsset `json:"assets"`
}

// releaseFetcher resolves and downloads the latest daemon release from GitHub.
type releaseFetcher struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

func newReleaseFetcher(logger *log.Logger) *releaseFetcher {
	return &releaseFetcher{
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: latestReleaseURL,
		logger:  logger,
	}
}

// Install downloads the release asset matching the platform profile and places
// the daemon binary at destPath. Archives are extracted; bare binaries are
// copied straight through.
func (f *releaseFetcher) Install(ctx context.Context, profile platform.Profile, destPath string) error {
	rel, err := f.latest(ctx)
	if err != nil {
		return err
	}

	asset, err := matchAsset(rel, profile.AssetName())
	if err != nil {
		return err
	}

	f.logger.Info("downloading release asset", "version", rel.TagName, "asset", asset.Name)

	tmp, err := os.CreateTemp("", "spotifyd-download-*")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := f.download(ctx, asset.DownloadURL, tmp); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	return placeBinary(ctx, asset.Name, tmp, destPath)
}

func (f *releaseFetcher) latest(ctx context.Context) (*release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: release lookup: %v", shared.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: release lookup returned %d", shared.ErrDownloadFailed, resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("%w: decode release: %v", shared.ErrDownloadFailed, err)
	}

	return &rel, nil
}

func (f *releaseFetcher) download(ctx context.Context, url string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download: %v", shared.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: download returned %d", shared.ErrDownloadFailed, resp.StatusCode)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	return nil
}

// matchAsset finds the release asset whose name contains the platform marker.
func matchAsset(rel *release, marker string) (releaseAsset, error) {
	for _, asset := range rel.Assets {
		if strings.Contains(asset.Name, marker) {
			return asset, nil
		}
	}
	return releaseAsset{}, fmt.Errorf("%w: no asset matching %q in release %s", shared.ErrDownloadFailed, marker, rel.TagName)
}

// placeBinary writes the downloaded asset to destPath, extracting it first
// when the asset is an archive containing the daemon binary.
func placeBinary(ctx context.Context, assetName string, src io.Reader, destPath string) error {
	format, reader, err := archives.Identify(ctx, assetName, src)
	if err != nil {
		if errors.Is(err, archives.NoMatch) {
			return copyBinary(reader, destPath)
		}
		return fmt.Errorf("%w: identify archive: %v", shared.ErrDownloadFailed, err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return copyBinary(reader, destPath)
	}

	found := false
	err = extractor.Extract(ctx, reader, func(ctx context.Context, file archives.FileInfo) error {
		if file.IsDir() || filepath.Base(file.NameInArchive) != "spotifyd" {
			return nil
		}
		entry, err := file.Open()
		if err != nil {
			return err
		}
		defer entry.Close()
		found = true
		return copyBinary(entry, destPath)
	})
	if err != nil {
		return fmt.Errorf("%w: extract: %v", shared.ErrDownloadFailed, err)
	}
	if !found {
		return fmt.Errorf("%w: archive %s contains no daemon binary", shared.ErrDownloadFailed, assetName)
	}

	return nil
}

func copyBinary(src io.Reader, destPath string) error {
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	return nil
}
