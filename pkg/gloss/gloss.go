// Package gloss resolves a short definition for a candidate term.
package gloss

import (
	"fmt"

	"github.com/japaniel/medterm/pkg/knowledge"
	"github.com/japaniel/medterm/pkg/rules"
)

const fallbackTemplate = "%sに関する医療用語"

// Synthesizer looks terms up in the knowledge base and falls back to suffix
// templates and then to a generic gloss. It is pure and safe for concurrent
// use.
type Synthesizer struct {
	kb    *knowledge.Base
	order []rules.Rule
}

// NewSynthesizer builds a synthesizer from kb and the gloss order of table.
func NewSynthesizer(kb *knowledge.Base, table *rules.Table) *Synthesizer {
	return &Synthesizer{kb: kb, order: table.GlossOrder()}
}

// Source tells which resolution step produced a gloss.
type Source uint8

const (
	FromKnowledge Source = iota + 1
	FromRule
	FromFallback
)

func (s Source) String() string {
	switch s {
	case FromKnowledge:
		return "knowledge"
	case FromRule:
		return "rule"
	case FromFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// GlossOf returns the gloss for term. It never returns an empty string for a
// non-empty term.
func (s *Synthesizer) GlossOf(term string) string {
	g, _ := s.Resolve(term)
	return g
}

// Resolve is GlossOf that also reports which step matched. The first suffix
// in priority order wins, even when it is the whole term: "検査" yields
// "を調べる検査".
func (s *Synthesizer) Resolve(term string) (string, Source) {
	if g, ok := s.kb.Lookup(term); ok {
		return g, FromKnowledge
	}
	for _, r := range s.order {
		stem, ok := r.Stem(term)
		if !ok {
			continue
		}
		return fmt.Sprintf(r.Strategy.Template(), stem), FromRule
	}
	return fmt.Sprintf(fallbackTemplate, term), FromFallback
}
