// Package table writes and reads the terminology table: a UTF-8 CSV file
// with the fixed header japanese,reading,romaji,meaning.
package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Header is the fixed column order.
var Header = []string{"japanese", "reading", "romaji", "meaning"}

// Record is one output row.
type Record struct {
	Term         string
	Reading      string
	Romanization string
	Gloss        string
}

func (r Record) fields() []string {
	return []string{lf(r.Term), lf(r.Reading), lf(r.Romanization), lf(r.Gloss)}
}

// lf folds CRLF to LF. encoding/csv drops the CR of a quoted CRLF on read,
// so a table only ever carries LF line breaks inside fields.
func lf(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// ErrHeader is returned by Read when the first row is not Header.
var ErrHeader = errors.New("unexpected table header")

// Write emits the header and one row per record. Fields holding a comma,
// quote or line break are quoted with internal quotes doubled; CRLF inside
// a field is written as LF.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path atomically: rows go to a temporary file
// in the same directory, which replaces path only after every row has been
// written and synced. On failure no partial table is left at path.
func WriteFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".medterm-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, records); err != nil {
		cleanup()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Read parses a table produced by Write.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("%w: %v", ErrHeader, head)
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Term: row[0], Reading: row[1], Romanization: row[2], Gloss: row[3]})
	}
	return out, nil
}

// ReadFile reads the table at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
