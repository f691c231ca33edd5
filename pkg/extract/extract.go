// Package extract finds domain-term candidates in document text.
package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/japaniel/medterm/pkg/knowledge"
	"github.com/japaniel/medterm/pkg/rules"
)

// MinCandidateRunes is the shortest candidate the scanner will ever emit,
// regardless of run configuration.
const MinCandidateRunes = 2

// Normalize folds compatibility forms (full-width latin, half-width kana)
// with NFKC, collapses every whitespace run to a single space and trims the
// result.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
}

// IsScriptRune reports whether r belongs to the ideograph block terms are
// built from (U+4E00 to U+9FAF).
func IsScriptRune(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FAF
}

// Runs returns every maximal run of ideographs in text, in order of
// appearance. Duplicates are kept.
func Runs(text string) [][]rune {
	var runs [][]rune
	var cur []rune
	for _, r := range text {
		if IsScriptRune(r) {
			cur = append(cur, r)
			continue
		}
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// CandidateSet is a set of candidate terms that remembers first-insertion
// order so downstream output is reproducible.
type CandidateSet struct {
	order []string
	seen  map[string]struct{}
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{seen: make(map[string]struct{})}
}

// Add inserts term. Terms shorter than MinCandidateRunes and terms already
// present are ignored; the return value reports whether term was added.
func (s *CandidateSet) Add(term string) bool {
	if utf8.RuneCountInString(term) < MinCandidateRunes {
		return false
	}
	if _, ok := s.seen[term]; ok {
		return false
	}
	s.seen[term] = struct{}{}
	s.order = append(s.order, term)
	return true
}

// Contains reports whether term is in the set.
func (s *CandidateSet) Contains(term string) bool {
	_, ok := s.seen[term]
	return ok
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int { return len(s.order) }

// Terms returns the candidates in first-insertion order.
func (s *CandidateSet) Terms() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Scanner applies the rule table and the knowledge base to normalized text.
// A Scanner holds only read-only state and is safe for concurrent use.
type Scanner struct {
	kb    *knowledge.Base
	rules *rules.Table
}

// NewScanner returns a scanner over kb and table.
func NewScanner(kb *knowledge.Base, table *rules.Table) *Scanner {
	return &Scanner{kb: kb, rules: table}
}

// Scan returns the candidate terms found in text. Overlapping hits from
// different rules are all kept as long as their strings differ. An empty
// text yields an empty set.
func (s *Scanner) Scan(text string) *CandidateSet {
	set := NewCandidateSet()
	if text == "" {
		return set
	}
	runs := Runs(text)

	for _, r := range s.rules.Suffixes() {
		for _, run := range runs {
			if r.Match(run) {
				set.Add(string(run))
			}
		}
	}

	for _, term := range s.kb.Terms() {
		if strings.Contains(text, term) {
			set.Add(term)
		}
	}

	for _, r := range s.rules.Seeds() {
		for _, run := range runs {
			if r.Match(run) {
				set.Add(string(run))
			}
		}
	}
	return set
}
