// Package dictionary loads JMdict-simplified data and answers reading
// lookups for headwords.
package dictionary

import (
	"sort"
)

// Index maps kanji and kana headwords to their entries. It is built once and
// never mutated, so lookups need no locking.
type Index struct {
	index map[string][]JMdictEntry
}

// NewIndex builds an in-memory index of entries.
func NewIndex(entries []JMdictEntry) *Index {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	// Sort each bucket by entry id so the first match is stable.
	for k := range idx {
		bucket := idx[k]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Id < bucket[j].Id })
	}
	return &Index{index: idx}
}

// Open loads path and indexes it.
func Open(path string) (*Index, error) {
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

// Len returns the number of indexed headwords.
func (ix *Index) Len() int { return len(ix.index) }

// Lookup returns the entries whose kanji or kana forms equal term.
func (ix *Index) Lookup(term string) []JMdictEntry {
	if ix == nil || term == "" {
		return nil
	}
	return ix.index[term]
}

// Reading returns the primary kana reading of term in hiragana: the first
// common kana of the first matching entry, else its first kana.
func (ix *Index) Reading(term string) (string, bool) {
	matches := ix.Lookup(term)
	if len(matches) == 0 || len(matches[0].Kana) == 0 {
		return "", false
	}
	found := ""
	for _, k := range matches[0].Kana {
		if k.Common {
			found = k.Text
			break
		}
	}
	if found == "" {
		found = matches[0].Kana[0].Text
	}
	return ToHiragana(found), true
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
