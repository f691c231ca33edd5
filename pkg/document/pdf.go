package document

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the plain text of every page of a PDF.
type PDFExtractor struct {
	opts Options
}

// Extract implements Extractor. Pages without content yield "".
func (e *PDFExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	if err := checkSize(path, e.opts.MaxFileSize); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(r.Page(i))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
		if e.opts.OnPage != nil {
			e.opts.OnPage(i, total)
		}
	}
	return pages, nil
}

// pageText converts a page, turning a panic inside the decoder (malformed
// content streams) into an error.
func pageText(p pdf.Page) (text string, err error) {
	if p.V.IsNull() {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}
