package store

import "time"

// Term is a stored terminology record.
type Term struct {
	ID           int64
	Term         string
	Reading      string
	Romanization string
	Gloss        string
	UpdatedAt    time.Time
}

// Source is a document terms were extracted from.
type Source struct {
	ID      int64
	Path    string
	Format  string
	AddedAt time.Time
}

// SourceTerm is a Term as seen in one Source.
type SourceTerm struct {
	Term
	OccurrenceCount int
	FirstSeenAt     time.Time
	LastRunID       string
}
