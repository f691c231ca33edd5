package document

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-shiori/go-readability"
)

// HTMLExtractor extracts the main article text of an HTML page as a single
// page, with ruby readings removed first.
type HTMLExtractor struct {
	opts Options
}

// Extract implements Extractor.
func (e *HTMLExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	if err := checkSize(path, e.opts.MaxFileSize); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(content)), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	if e.opts.OnPage != nil {
		e.opts.OnPage(1, 1)
	}
	return []string{article.TextContent}, nil
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML. Readability keeps furigana as text, which would
// glue readings onto terms ("漢字かんじ") and break ideograph runs.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}
