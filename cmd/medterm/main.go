// Package main is the entry point for the medterm CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/japaniel/medterm/pkg/config"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultOutput is the table written when no output path is given.
const defaultOutput = "extracted_medical_terms.csv"

// app carries the state shared by the root command and its subcommands.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
		stdout: stdout,
		stderr: stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "medterm <input> [output]",
		Short: "Extract Japanese medical terminology from documents into a CSV table",
		Long: `medterm reads a PDF, HTML or text document, finds Japanese medical terms,
and writes a table with each term's reading, romaji and meaning.

The output defaults to ` + defaultOutput + ` in the current directory.
Settings come from flags, MEDTERM_* environment variables and an optional
config file (./medterm.yaml or ~/.config/medterm/config.yaml).`,
		Version:       version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		RunE: a.runConvert,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./medterm.yaml or ~/.config/medterm/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("db", "", "SQLite term library to record runs in")
	pf.String("jmdict", "", "jmdict-simplified JSON file used for readings")

	f := rootCmd.Flags()
	f.Int("min-length", 2, "shortest term kept, in characters")
	f.Int("max-length", 10, "longest term kept, in characters")
	f.Bool("dedupe", true, "keep one row per term")
	f.Bool("sort", true, "sort rows by romaji length")
	f.String("knowledge", "", "extra YAML or JSON term→meaning file merged over the built-in table")

	bind := map[string]string{
		config.KeyLogLevel:      "log-level",
		config.KeyDBPath:        "db",
		config.KeyJMdictPath:    "jmdict",
		config.KeyMinLength:     "min-length",
		config.KeyMaxLength:     "max-length",
		config.KeyDedupe:        "dedupe",
		config.KeySortByRomaji:  "sort",
		config.KeyKnowledgeFile: "knowledge",
	}
	for key, flag := range bind {
		fl := pf.Lookup(flag)
		if fl == nil {
			fl = f.Lookup(flag)
		}
		_ = a.v.BindPFlag(key, fl)
	}

	rootCmd.AddCommand(a.versionCmd(), a.termsCmd(), a.fetchDictCmd())
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	used, err := config.Setup(a.v, cfgFile)
	if err != nil {
		return err
	}
	a.cfg, err = config.Load(a.v)
	if err != nil {
		return err
	}
	level, _ := a.cfg.Level()
	a.logger = config.NewLogger(a.stderr, level)
	if used != "" {
		a.logger.Debug("using config file", "path", used)
	}
	return nil
}

// execute runs the CLI and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
