// Package knowledge holds the static term→gloss table shared by the scanner
// and the gloss synthesizer.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"
)

//go:embed medical.yaml
var builtinYAML []byte

// Entry is a single knowledge base row.
type Entry struct {
	Term  string
	Gloss string
}

// Base is an immutable term→gloss mapping. It is built once at process start
// and may be shared by concurrent pipeline runs without locking.
type Base struct {
	glosses map[string]string
	terms   []string // sorted, so substring scans are deterministic
}

var (
	defaultOnce sync.Once
	defaultBase *Base
)

// Default returns the built-in knowledge base.
func Default() *Base {
	defaultOnce.Do(func() {
		entries, err := parseYAML(builtinYAML)
		if err != nil {
			panic(fmt.Sprintf("knowledge: embedded table is invalid: %v", err))
		}
		defaultBase = New(entries)
	})
	return defaultBase
}

// New builds a Base from entries. Later entries override earlier ones with
// the same term; entries with an empty term or gloss are ignored. Terms are
// stored in NFKC form so they match normalized document text, and glosses
// carry LF line breaks only.
func New(entries []Entry) *Base {
	b := &Base{glosses: make(map[string]string, len(entries))}
	for _, e := range entries {
		term := normalizeTerm(e.Term)
		gloss := strings.TrimSpace(strings.ReplaceAll(e.Gloss, "\r\n", "\n"))
		if term == "" || gloss == "" {
			continue
		}
		b.glosses[term] = gloss
	}
	b.terms = make([]string, 0, len(b.glosses))
	for t := range b.glosses {
		b.terms = append(b.terms, t)
	}
	sort.Strings(b.terms)
	return b
}

// Load returns the built-in table merged with the entries of extraPath.
// An empty extraPath returns Default(). Files ending in .json are decoded as
// a JSON object, anything else as YAML.
func Load(extraPath string) (*Base, error) {
	if extraPath == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(extraPath)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}

	var extra []Entry
	if strings.EqualFold(filepath.Ext(extraPath), ".json") {
		extra, err = parseJSON(data)
	} else {
		extra, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", extraPath, err)
	}

	return New(append(Default().Entries(), extra...)), nil
}

func parseYAML(data []byte) ([]Entry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	doc := node.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of term to gloss, got %v", doc.Tag)
	}
	// Walk the mapping node directly so file order is kept for overrides.
	entries := make([]Entry, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		entries = append(entries, Entry{Term: doc.Content[i].Value, Gloss: doc.Content[i+1].Value})
	}
	return entries, nil
}

func parseJSON(data []byte) ([]Entry, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(m))
	for term, gloss := range m {
		entries = append(entries, Entry{Term: term, Gloss: gloss})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })
	return entries, nil
}

func normalizeTerm(term string) string {
	return strings.TrimSpace(norm.NFKC.String(term))
}

// Lookup returns the stored gloss for term. term is compared in NFKC form.
func (b *Base) Lookup(term string) (string, bool) {
	g, ok := b.glosses[term]
	if !ok {
		g, ok = b.glosses[normalizeTerm(term)]
	}
	return g, ok
}

// Terms returns every known term in lexicographic order. The returned slice
// is a copy.
func (b *Base) Terms() []string {
	out := make([]string, len(b.terms))
	copy(out, b.terms)
	return out
}

// Entries returns a copy of the table in term order.
func (b *Base) Entries() []Entry {
	out := make([]Entry, 0, len(b.terms))
	for _, t := range b.terms {
		out = append(out, Entry{Term: t, Gloss: b.glosses[t]})
	}
	return out
}

// Len reports the number of terms.
func (b *Base) Len() int { return len(b.terms) }
