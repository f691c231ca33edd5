// Package config loads medterm settings from flags, an optional YAML config
// file and MEDTERM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/japaniel/medterm/pkg/pipeline"
)

// Config keys.
const (
	KeyMinLength     = "min_length"
	KeyMaxLength     = "max_length"
	KeyDedupe        = "dedupe"
	KeySortByRomaji  = "sort_by_romaji"
	KeyKnowledgeFile = "knowledge_file"
	KeyJMdictPath    = "jmdict_path"
	KeyDBPath        = "db_path"
	KeyLogLevel      = "log_level"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEDTERM"

// Config is the resolved configuration.
type Config struct {
	MinLength     int    `mapstructure:"min_length"`
	MaxLength     int    `mapstructure:"max_length"`
	Dedupe        bool   `mapstructure:"dedupe"`
	SortByRomaji  bool   `mapstructure:"sort_by_romaji"`
	KnowledgeFile string `mapstructure:"knowledge_file"`
	JMdictPath    string `mapstructure:"jmdict_path"`
	DBPath        string `mapstructure:"db_path"`
	LogLevel      string `mapstructure:"log_level"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	d := pipeline.DefaultConfig()
	v.SetDefault(KeyMinLength, d.MinLength)
	v.SetDefault(KeyMaxLength, d.MaxLength)
	v.SetDefault(KeyDedupe, d.Dedupe)
	v.SetDefault(KeySortByRomaji, d.SortByRomanization)
	v.SetDefault(KeyKnowledgeFile, "")
	v.SetDefault(KeyJMdictPath, "")
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyLogLevel, "info")
}

// Setup points v at cfgFile, or at ./medterm.yaml and
// ~/.config/medterm/config.yaml when cfgFile is empty, enables environment
// overrides and reads the file. It returns the file used, if any. A missing
// default file is not an error; a missing explicit file is.
func Setup(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("medterm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "medterm"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return Config{}, err
	}
	if err := c.Pipeline().Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Pipeline returns the extraction settings.
func (c Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		MinLength:          c.MinLength,
		MaxLength:          c.MaxLength,
		Dedupe:             c.Dedupe,
		SortByRomanization: c.SortByRomaji,
	}
}

// Level parses LogLevel (debug, info, warn or error).
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", pipeline.ErrConfiguration, c.LogLevel)
	}
	return l, nil
}

// NewLogger returns a text logger on w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
