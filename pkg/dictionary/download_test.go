package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func tgz(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write([]byte(body)); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	tw.Close()
	gz.Close()
	return buf.Bytes()
}

func releaseServer(t *testing.T, assetName string, asset []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/repos/scriptin/jmdict-simplified/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "missing user agent", http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `{"assets":[{"name":"jmdict-eng-3.6.json.tgz","browser_download_url":"%s/wrong"},{"name":%q,"browser_download_url":"%s/asset/%s"}]}`,
			srv.URL, assetName, srv.URL, assetName)
	})
	mux.HandleFunc("/asset/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(asset)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEnsureLocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := NewDownloader(nil)
	d.APIBase = "http://127.0.0.1:0"
	if err := d.Ensure(context.Background(), path); err != nil {
		t.Fatalf("Ensure with local file: %v", err)
	}
}

func TestEnsureDownloadsTarball(t *testing.T) {
	srv := releaseServer(t, "jmdict-eng-common-3.6.json.tgz", tgz(t, "jmdict-eng-common-3.6.json", sampleDict))
	path := filepath.Join(t.TempDir(), DefaultFileName)

	d := NewDownloader(nil)
	d.APIBase = srv.URL
	if err := d.Ensure(context.Background(), path); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	ix, err := Open(path)
	if err != nil {
		t.Fatalf("Open downloaded file: %v", err)
	}
	if got, ok := ix.Reading("心電図"); !ok || got != "しんでんず" {
		t.Fatalf("Reading(心電図) = %q, %v", got, ok)
	}
}

func TestEnsureNoAsset(t *testing.T) {
	srv := releaseServer(t, "kanjidic2-en.json.tgz", nil)
	path := filepath.Join(t.TempDir(), DefaultFileName)

	d := NewDownloader(nil)
	d.APIBase = srv.URL
	err := d.Ensure(context.Background(), path)
	if !errors.Is(err, ErrNoAsset) {
		t.Fatalf("expected ErrNoAsset, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("no file should be written, stat err = %v", statErr)
	}
}
