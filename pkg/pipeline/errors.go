package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. A failed run returns a *RunError whose Kind is one of these,
// so callers can branch with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrExtractionEmpty   = errors.New("no text extracted")
	ErrNoCandidates      = errors.New("no candidate terms found")
	ErrNoQualifyingTerms = errors.New("no qualifying terms")
	ErrSink              = errors.New("output table not written")
)

// Stage names the pipeline step a RunError came from.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageSource    Stage = "source"
	StageExtract   Stage = "extract"
	StageScan      Stage = "scan"
	StageAssemble  Stage = "assemble"
	StageSerialize Stage = "serialize"
)

// RunError is a terminal pipeline failure.
type RunError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *RunError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func runErr(stage Stage, kind, err error) *RunError {
	return &RunError{Stage: stage, Kind: kind, Err: err}
}

// IsNoTerms reports whether err is a terminal "nothing to write" outcome
// rather than a failure.
func IsNoTerms(err error) bool {
	return errors.Is(err, ErrNoCandidates) || errors.Is(err, ErrNoQualifyingTerms)
}

// ConfigError lists every invalid configuration field.
type ConfigError struct {
	Fields []FieldError
}

// FieldError is one rejected configuration value.
type FieldError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrConfiguration) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// Message renders err for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "設定エラー: " + configDetail(err)
	case errors.Is(err, ErrSourceUnavailable):
		return "入力ファイルを開けませんでした: " + cause(err)
	case errors.Is(err, ErrExtractionEmpty):
		return "ファイルからテキストを抽出できませんでした"
	case errors.Is(err, ErrNoCandidates), errors.Is(err, ErrNoQualifyingTerms):
		return "医療用語が見つかりませんでした"
	case errors.Is(err, ErrSink):
		return "CSVファイルを保存できませんでした: " + cause(err)
	default:
		return "変換エラー: " + err.Error()
	}
}

func configDetail(err error) string {
	var ce *ConfigError
	if errors.As(err, &ce) {
		parts := make([]string, 0, len(ce.Fields))
		for _, f := range ce.Fields {
			parts = append(parts, f.Field+" "+f.Message)
		}
		return strings.Join(parts, ", ")
	}
	return err.Error()
}

func cause(err error) string {
	var re *RunError
	if errors.As(err, &re) && re.Err != nil {
		return re.Err.Error()
	}
	return err.Error()
}
