package pipeline

import (
	"slices"
	"unicode/utf8"

	"github.com/japaniel/medterm/pkg/gloss"
	"github.com/japaniel/medterm/pkg/table"
	"github.com/japaniel/medterm/pkg/translit"
)

// Glosser produces the meaning column for a term and reports which step
// produced it.
type Glosser interface {
	Resolve(term string) (string, gloss.Source)
}

// Transliterator produces the reading and romaji columns. Implementations
// must absorb engine failures and mark them with Result.Fallback.
type Transliterator interface {
	Transliterate(term string) translit.Result
}

// Stats counts what Assemble did with its candidates.
type Stats struct {
	Candidates int
	// Filtered is the number of records outside [MinLength, MaxLength].
	Filtered   int
	Duplicates int
	// Degraded is the number of candidates whose transliteration fell back.
	Degraded int
	// Kept records by gloss source.
	KnowledgeGlosses int
	RuleGlosses      int
	FallbackGlosses  int
}

func (s *Stats) countGloss(src gloss.Source) {
	switch src {
	case gloss.FromKnowledge:
		s.KnowledgeGlosses++
	case gloss.FromRule:
		s.RuleGlosses++
	case gloss.FromFallback:
		s.FallbackGlosses++
	}
}

// Assemble builds one record per candidate, then applies the length filter
// and, if cfg.Dedupe is set, keeps the first record per term. Records keep
// candidate order. An empty result is ErrNoQualifyingTerms.
func Assemble(candidates []string, cfg Config, g Glosser, tr Transliterator) ([]table.Record, Stats, error) {
	stats := Stats{Candidates: len(candidates)}

	built := make([]table.Record, 0, len(candidates))
	sources := make([]gloss.Source, 0, len(candidates))
	for _, term := range candidates {
		res := tr.Transliterate(term)
		if res.Fallback {
			stats.Degraded++
		}
		meaning, src := g.Resolve(term)
		built = append(built, table.Record{
			Term:         term,
			Reading:      res.Reading,
			Romanization: res.Romanization,
			Gloss:        meaning,
		})
		sources = append(sources, src)
	}

	out := built[:0]
	seen := make(map[string]struct{}, len(built))
	for i, rec := range built {
		n := utf8.RuneCountInString(rec.Term)
		if rec.Term == "" || n < cfg.MinLength || n > cfg.MaxLength {
			stats.Filtered++
			continue
		}
		if cfg.Dedupe {
			if _, dup := seen[rec.Term]; dup {
				stats.Duplicates++
				continue
			}
			seen[rec.Term] = struct{}{}
		}
		out = append(out, rec)
		stats.countGloss(sources[i])
	}

	if len(out) == 0 {
		return nil, stats, runErr(StageAssemble, ErrNoQualifyingTerms, nil)
	}
	return out, stats, nil
}

// Finalize returns records in output order. With SortByRomanization set the
// records are stably sorted by the rune length of their romaji, so ties keep
// assembly order. The input slice is not modified.
func Finalize(records []table.Record, cfg Config) []table.Record {
	out := slices.Clone(records)
	if cfg.SortByRomanization {
		slices.SortStableFunc(out, func(a, b table.Record) int {
			return utf8.RuneCountInString(a.Romanization) - utf8.RuneCountInString(b.Romanization)
		})
	}
	return out
}
