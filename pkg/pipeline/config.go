package pipeline

import "errors"

// Default ExtractionConfig values.
const (
	DefaultMinLength = 2
	DefaultMaxLength = 10
)

// Config is the per-run extraction configuration.
type Config struct {
	MinLength          int
	MaxLength          int
	Dedupe             bool
	SortByRomanization bool
}

// DefaultConfig returns the defaults: [2, 10], dedupe on, sort on.
func DefaultConfig() Config {
	return Config{
		MinLength:          DefaultMinLength,
		MaxLength:          DefaultMaxLength,
		Dedupe:             true,
		SortByRomanization: true,
	}
}

// Validate rejects minLength < 1 and maxLength < minLength.
func (c Config) Validate() error {
	var fields []FieldError
	if c.MinLength < 1 {
		fields = append(fields, FieldError{Field: "min_length", Message: "must be at least 1"})
	}
	if c.MaxLength < c.MinLength {
		fields = append(fields, FieldError{Field: "max_length", Message: "must not be less than min_length"})
	}
	if len(fields) > 0 {
		return &ConfigError{Fields: fields}
	}
	return nil
}

// Request is one run's input.
type Request struct {
	InputPath  string
	OutputPath string
	Config     Config
	// Observer receives progress and log lines; nil drops them.
	Observer Observer
}

func (r Request) validate() error {
	var fields []FieldError
	if r.InputPath == "" {
		fields = append(fields, FieldError{Field: "input", Message: "path is required"})
	}
	if r.OutputPath == "" {
		fields = append(fields, FieldError{Field: "output", Message: "path is required"})
	}
	if err := r.Config.Validate(); err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			fields = append(fields, ce.Fields...)
		}
	}
	if len(fields) > 0 {
		return &ConfigError{Fields: fields}
	}
	return nil
}
