package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/medterm/pkg/table"
)

// DBExecutor is an interface that allows functions to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the term library.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite library at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)
	s, err := New(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection and runs migrations.
func New(ctx context.Context, conn *sql.DB) (*Store, error) {
	if err := InitDB(ctx, conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: conn, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

// SaveRun records one run over source in a single transaction: the source
// row, a run row and an upsert of every record. It returns the run id.
func (s *Store) SaveRun(ctx context.Context, source string, records []table.Record) (string, error) {
	path, err := sourceKey(source)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	sourceID, err := CreateOrGetSource(ctx, tx, path, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source_id, record_count, created_at) VALUES (?, ?, ?, ?)`,
		runID, sourceID, len(records), now); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for _, rec := range records {
		termID, err := CreateOrGetTerm(ctx, tx, rec, now)
		if err != nil {
			return "", fmt.Errorf("term %q: %w", rec.Term, err)
		}
		if err := LinkTermToSource(ctx, tx, termID, sourceID, runID, now); err != nil {
			return "", fmt.Errorf("link term %q: %w", rec.Term, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// TermsBySource returns the terms stored for source, in term order.
func (s *Store) TermsBySource(ctx context.Context, source string) ([]SourceTerm, error) {
	path, err := sourceKey(source)
	if err != nil {
		return nil, err
	}
	return GetTermsBySource(ctx, s.db, path)
}

// Sources lists every stored source, oldest first.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, IFNULL(format, ''), added_at FROM sources ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Path, &src.Format, &src.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func sourceKey(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("source must be non-empty")
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// CreateOrGetSource returns the id of the source at path, inserting it if new.
func CreateOrGetSource(ctx context.Context, db DBExecutor, path, format string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO sources (path, format) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  format = COALESCE(NULLIF(excluded.format, ''), sources.format)
		RETURNING id`, path, format).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert source: %w", err)
	}
	return id, nil
}

// CreateOrGetTerm upserts rec keyed by term and returns its id. Empty
// columns never overwrite stored values.
func CreateOrGetTerm(ctx context.Context, db DBExecutor, rec table.Record, now time.Time) (int64, error) {
	term := strings.TrimSpace(rec.Term)
	if term == "" {
		return 0, fmt.Errorf("term must be non-empty")
	}
	var id int64
	err := db.QueryRowContext(ctx, `INSERT INTO terms (term, reading, romaji, gloss, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET
		  reading = COALESCE(NULLIF(excluded.reading, ''), terms.reading),
		  romaji = COALESCE(NULLIF(excluded.romaji, ''), terms.romaji),
		  gloss = COALESCE(NULLIF(excluded.gloss, ''), terms.gloss),
		  updated_at = excluded.updated_at
		RETURNING id`, term, rec.Reading, rec.Romanization, rec.Gloss, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert term: %w", err)
	}
	return id, nil
}

// LinkTermToSource links the term and source, incrementing occurrence_count
// when the pair already exists.
func LinkTermToSource(ctx context.Context, db DBExecutor, termID, sourceID int64, runID string, now time.Time) error {
	if termID <= 0 {
		return fmt.Errorf("termID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	_, err := db.ExecContext(ctx, `INSERT INTO term_sources (term_id, source_id, last_run_id, occurrence_count, first_seen_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(term_id, source_id) DO UPDATE SET
		  occurrence_count = term_sources.occurrence_count + 1,
		  last_run_id = excluded.last_run_id`,
		termID, sourceID, runID, now)
	return err
}

// GetTermsBySource returns terms associated with the source at path.
func GetTermsBySource(ctx context.Context, db DBExecutor, path string) ([]SourceTerm, error) {
	rows, err := db.QueryContext(ctx, `SELECT t.id, t.term, t.reading, t.romaji, t.gloss, t.updated_at,
		       ts.occurrence_count, ts.first_seen_at, ts.last_run_id
		FROM terms t
		JOIN term_sources ts ON ts.term_id = t.id
		JOIN sources s ON s.id = ts.source_id
		WHERE s.path = ?
		ORDER BY t.term`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SourceTerm
	for rows.Next() {
		var st SourceTerm
		var reading, romaji, gloss, runID sql.NullString
		var updated sql.NullTime
		if err := rows.Scan(&st.ID, &st.Term.Term, &reading, &romaji, &gloss, &updated,
			&st.OccurrenceCount, &st.FirstSeenAt, &runID); err != nil {
			return nil, err
		}
		st.Reading = reading.String
		st.Romanization = romaji.String
		st.Gloss = gloss.String
		st.LastRunID = runID.String
		if updated.Valid {
			st.UpdatedAt = updated.Time
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Record converts a stored term back to a table row.
func (t Term) Record() table.Record {
	return table.Record{Term: t.Term, Reading: t.Reading, Romanization: t.Romanization, Gloss: t.Gloss}
}
