// Package rules defines the data-driven rule table used to find term
// candidates and to pick a gloss template for terms the knowledge base
// does not know.
package rules

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Kind selects how a rule's pattern is matched against a script run.
type Kind uint8

const (
	// Suffix rules match runs that end with Pattern.
	Suffix Kind = iota + 1
	// Seed rules match runs that contain the single character Pattern.
	Seed
)

func (k Kind) String() string {
	switch k {
	case Suffix:
		return "suffix"
	case Seed:
		return "seed"
	default:
		return "unknown"
	}
}

// Strategy tags the gloss template applied when a suffix rule wins gloss
// synthesis. None means the rule only takes part in scanning.
type Strategy uint8

const (
	None Strategy = iota
	Symptom
	Disease
	Inflammation
	Examination
	Therapy
	Treatment
)

// templates render a gloss from the stem left after removing the suffix.
var templates = map[Strategy]string{
	Symptom:      "%sに関連する症状や病気",
	Disease:      "%sに関連する疾患",
	Inflammation: "%sの炎症",
	Examination:  "%sを調べる検査",
	Therapy:      "%sを用いた治療法",
	Treatment:    "%sによる治療",
}

// Template returns the format string for s, or "" for None.
func (s Strategy) Template() string { return templates[s] }

// Rule is one row of the table.
type Rule struct {
	Kind     Kind
	Pattern  string
	Strategy Strategy
	// Priority orders gloss synthesis; lower wins. Zero means the rule is
	// not used for glossing.
	Priority int
	// MinRunes and MaxRunes bound the accepted run length, inclusive.
	// MaxRunes of zero means unbounded.
	MinRunes int
	MaxRunes int
}

// Match reports whether run satisfies the rule, including its length bounds.
func (r Rule) Match(run []rune) bool {
	n := len(run)
	if n < r.MinRunes || (r.MaxRunes > 0 && n > r.MaxRunes) {
		return false
	}
	switch r.Kind {
	case Suffix:
		return strings.HasSuffix(string(run), r.Pattern)
	case Seed:
		seed, _ := utf8.DecodeRuneInString(r.Pattern)
		return slices.Contains(run, seed)
	default:
		return false
	}
}

// Stem removes the rule's pattern from the end of term. ok is false when the
// rule is not a suffix rule or term does not end with the pattern.
func (r Rule) Stem(term string) (stem string, ok bool) {
	if r.Kind != Suffix || !strings.HasSuffix(term, r.Pattern) {
		return "", false
	}
	return strings.TrimSuffix(term, r.Pattern), true
}

// Table is an immutable, ordered rule set.
type Table struct {
	suffixes []Rule
	seeds    []Rule
	glossing []Rule
}

// NewTable splits rules by kind, keeping their given order, and derives the
// gloss priority list from suffix rules that carry a strategy.
func NewTable(rs []Rule) *Table {
	t := &Table{}
	for _, r := range rs {
		switch r.Kind {
		case Suffix:
			t.suffixes = append(t.suffixes, r)
			if r.Strategy != None && r.Priority > 0 {
				t.glossing = append(t.glossing, r)
			}
		case Seed:
			t.seeds = append(t.seeds, r)
		}
	}
	slices.SortStableFunc(t.glossing, func(a, b Rule) int { return a.Priority - b.Priority })
	return t
}

// Suffixes returns the suffix rules in scan order.
func (t *Table) Suffixes() []Rule { return slices.Clone(t.suffixes) }

// Seeds returns the seed-character rules in scan order.
func (t *Table) Seeds() []Rule { return slices.Clone(t.seeds) }

// GlossOrder returns the suffix rules used for gloss synthesis, highest
// priority first.
func (t *Table) GlossOrder() []Rule { return slices.Clone(t.glossing) }

const (
	// ScanMinRunes is the shortest run any rule may accept.
	ScanMinRunes = 2
	// SeedMaxRunes is the longest run a seed rule may accept.
	SeedMaxRunes = 10
)

var scanSuffixes = []string{
	// diseases
	"症", "病", "炎", "癌", "腫", "梗塞", "不全", "障害",
	// examinations and treatments
	"検査", "療法", "治療", "手術", "診断",
	// anatomy
	"筋", "骨", "神経", "血管", "腺",
	// drugs and devices
	"薬", "剤", "器", "装置",
}

var glossStrategies = []struct {
	suffix   string
	strategy Strategy
}{
	{"症", Symptom},
	{"病", Disease},
	{"炎", Inflammation},
	{"検査", Examination},
	{"療法", Therapy},
	{"治療", Treatment},
}

var seedChars = []rune{'心', '肺', '肝', '腎', '脳', '血', '骨', '筋', '神', '医', '薬', '病', '症', '癌', '腫'}

// DefaultRules returns the built-in medical rule rows.
func DefaultRules() []Rule {
	rs := make([]Rule, 0, len(scanSuffixes)+len(seedChars))
	for _, s := range scanSuffixes {
		r := Rule{Kind: Suffix, Pattern: s, MinRunes: ScanMinRunes}
		for i, g := range glossStrategies {
			if g.suffix == s {
				r.Strategy = g.strategy
				r.Priority = i + 1
			}
		}
		rs = append(rs, r)
	}
	for _, c := range seedChars {
		rs = append(rs, Rule{Kind: Seed, Pattern: string(c), MinRunes: ScanMinRunes, MaxRunes: SeedMaxRunes})
	}
	return rs
}

var defaultTable = NewTable(DefaultRules())

// Default returns the shared built-in table.
func Default() *Table { return defaultTable }
