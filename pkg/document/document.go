// Package document extracts plain text from source documents. Extraction
// yields one string per page (a single page for formats without pages).
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file extensions no extractor handles.
var ErrUnsupported = errors.New("unsupported document type")

// Extractor returns the text of each page of the document at path.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// Options tune extraction.
type Options struct {
	// OnPage, when set, is called after each page is read.
	OnPage func(page, total int)
	// MaxFileSize rejects larger inputs; zero uses DefaultMaxFileSize.
	MaxFileSize int64
}

// DefaultMaxFileSize bounds the bytes read from a single document.
const DefaultMaxFileSize = 200 * 1024 * 1024

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Detect returns the document format based on file extension.
func Detect(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt", ".text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Extensions lists the accepted file extensions.
func Extensions() []string {
	return []string{".pdf", ".html", ".htm", ".txt", ".text"}
}

// ForPath returns the extractor for path's format.
func ForPath(path string, opts Options) (Extractor, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return &PDFExtractor{opts: opts}, nil
	case FormatHTML:
		return &HTMLExtractor{opts: opts}, nil
	default:
		return &TextExtractor{opts: opts}, nil
	}
}

// checkSize stats path and enforces the size limit.
func checkSize(path string, limit int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), limit)
	}
	return nil
}

// TextExtractor reads UTF-8 plain text as a single page.
type TextExtractor struct {
	opts Options
}

// Extract implements Extractor.
func (e *TextExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	if err := checkSize(path, e.opts.MaxFileSize); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if e.opts.OnPage != nil {
		e.opts.OnPage(1, 1)
	}
	return []string{string(data)}, nil
}
