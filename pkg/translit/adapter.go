package translit

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnusable is recorded when the engine returned an empty reading or
// romanization.
var ErrUnusable = errors.New("unusable transliteration")

// Result is the adapter's answer for one term. Fallback is set when the
// engine failed and Reading/Romanization were derived from the term itself;
// Err then holds the absorbed cause.
type Result struct {
	Reading      string
	Romanization string
	Fallback     bool
	Err          error
}

// Adapter wraps an Engine so that no engine failure escapes: every term
// gets a usable result.
type Adapter struct {
	engine Engine
	logger *slog.Logger
}

// NewAdapter wraps engine. A nil logger discards debug output.
func NewAdapter(engine Engine, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{engine: engine, logger: logger}
}

// Transliterate returns the reading and romanization of term, or the
// fallback (term, lower-cased term) if the engine cannot handle it.
func (a *Adapter) Transliterate(term string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = a.fallback(term, fmt.Errorf("engine panic: %v", r))
		}
	}()

	out, err := a.engine.Transliterate(term)
	if err != nil {
		return a.fallback(term, err)
	}
	reading := strings.ReplaceAll(strings.TrimSpace(out.Reading), " ", "")
	romanization := CleanRomanization(out.Romanized)
	if reading == "" || romanization == "" {
		return a.fallback(term, ErrUnusable)
	}
	return Result{Reading: reading, Romanization: romanization}
}

func (a *Adapter) fallback(term string, cause error) Result {
	a.logger.Debug("transliteration fallback",
		slog.String("term", term),
		slog.String("error", cause.Error()))
	return Result{
		Reading:      term,
		Romanization: strings.ToLower(term),
		Fallback:     true,
		Err:          cause,
	}
}

// CleanRomanization drops word separators and hyphens and lower-cases s.
func CleanRomanization(s string) string {
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	return strings.ToLower(s)
}
