// Package translit turns candidate terms into a hiragana reading and a
// latin romanization.
package translit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/medterm/pkg/dictionary"
)

// Output is what an Engine produces for a term.
type Output struct {
	Reading   string // hiragana
	Romanized string // latin letters, possibly with separators
}

// Engine converts script text into a reading and a romanization. It may fail
// for input it cannot read.
type Engine interface {
	Transliterate(term string) (Output, error)
}

// ErrNoReading is returned when part of a term has no known reading.
var ErrNoReading = errors.New("no reading")

// KagomeEngine reads terms with the Kagome morphological analyzer. When a
// JMdict index is supplied, a headword's dictionary reading takes precedence
// over the analyzer's segmentation.
type KagomeEngine struct {
	analyzer *Analyzer
	dict     *dictionary.Index
}

// NewKagomeEngine creates an engine. dict may be nil.
func NewKagomeEngine(dict *dictionary.Index) (*KagomeEngine, error) {
	a, err := NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	return &KagomeEngine{analyzer: a, dict: dict}, nil
}

// Transliterate implements Engine.
func (e *KagomeEngine) Transliterate(term string) (Output, error) {
	reading, err := e.reading(term)
	if err != nil {
		return Output{}, err
	}
	romanized, err := Romanize(reading)
	if err != nil {
		return Output{}, fmt.Errorf("romanize %q: %w", reading, err)
	}
	return Output{Reading: reading, Romanized: romanized}, nil
}

func (e *KagomeEngine) reading(term string) (string, error) {
	if r, ok := e.dict.Reading(term); ok {
		return r, nil
	}

	var b strings.Builder
	for _, tok := range e.analyzer.Analyze(term) {
		switch {
		case tok.Reading != "":
			b.WriteString(dictionary.ToHiragana(tok.Reading))
		case isKana(tok.Surface):
			b.WriteString(dictionary.ToHiragana(tok.Surface))
		default:
			return "", fmt.Errorf("%w for %q", ErrNoReading, tok.Surface)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w for %q", ErrNoReading, term)
	}
	return b.String(), nil
}

// isKana returns true if every rune is hiragana, katakana or the prolonged
// sound mark.
func isKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 0x3040 && r <= 0x309F) && !(r >= 0x30A0 && r <= 0x30FF) {
			return false
		}
	}
	return true
}
