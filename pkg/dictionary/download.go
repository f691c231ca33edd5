package dictionary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultFileName is the file the common English JMdict is cached as.
	DefaultFileName = "jmdict-eng-common.json"
	defaultAPIBase  = "https://api.github.com"
	repoOwner       = "scriptin"
	repoName        = "jmdict-simplified"
)

// ErrNoAsset is returned when the latest release carries no usable archive.
var ErrNoAsset = errors.New("no suitable dictionary asset found in latest release")

// Downloader fetches the latest jmdict-simplified release.
type Downloader struct {
	Client  *http.Client
	APIBase string
	Logger  *slog.Logger
}

// NewDownloader returns a Downloader talking to the GitHub API.
func NewDownloader(logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{
		Client:  &http.Client{Timeout: 5 * time.Minute},
		APIBase: defaultAPIBase,
		Logger:  logger,
	}
}

// Ensure leaves an existing file at path untouched; otherwise it discovers
// the latest release, downloads it and unpacks the JSON to path.
func (d *Downloader) Ensure(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	d.Logger.Info("dictionary not found, downloading", "path", path)
	assetURL, err := d.latestAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("find latest dictionary release: %w", err)
	}
	d.Logger.Info("downloading dictionary", "url", assetURL)
	return d.downloadAndExtract(ctx, assetURL, path)
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// GitHub rejects API requests without a User-Agent.
	req.Header.Set("User-Agent", "medterm-cli")
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp, nil
}

func (d *Downloader) latestAssetURL(ctx context.Context) (string, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(d.APIBase, "/"), repoOwner, repoName)
	resp, err := d.get(ctx, apiURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, "jmdict-eng-common") &&
			(strings.HasSuffix(asset.Name, ".json.tgz") || strings.HasSuffix(asset.Name, ".json.gz")) {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", ErrNoAsset
}

// downloadAndExtract handles both .json.tgz and plain .json.gz assets. The
// JSON is written to a temporary file and renamed into place.
func (d *Downloader) downloadAndExtract(ctx context.Context, url, destPath string) error {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	var src io.Reader = gz
	if strings.HasSuffix(url, ".tgz") {
		tr := tar.NewReader(gz)
		src = nil
		for {
			header, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read tar archive: %w", err)
			}
			if header.Typeflag == tar.TypeReg && strings.HasSuffix(header.Name, ".json") {
				src = tr
				break
			}
		}
		if src == nil {
			return fmt.Errorf("no json file found in downloaded archive")
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".jmdict-*.json")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
