package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/medterm/pkg/dictionary"
	"github.com/japaniel/medterm/pkg/knowledge"
	"github.com/japaniel/medterm/pkg/pipeline"
	"github.com/japaniel/medterm/pkg/session"
	"github.com/japaniel/medterm/pkg/store"
	"github.com/japaniel/medterm/pkg/translit"
)

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, output := args[0], defaultOutput
	if len(args) > 1 {
		output = args[1]
	}

	kb, err := knowledge.Load(a.cfg.KnowledgeFile)
	if err != nil {
		return fmt.Errorf("%w: knowledge file: %v", pipeline.ErrConfiguration, err)
	}

	var dict *dictionary.Index
	if a.cfg.JMdictPath != "" {
		dict, err = dictionary.Open(a.cfg.JMdictPath)
		if err != nil {
			return fmt.Errorf("%w: jmdict: %v", pipeline.ErrConfiguration, err)
		}
		a.logger.Debug("dictionary loaded", "path", a.cfg.JMdictPath, "headwords", dict.Len())
	}
	engine, err := translit.NewKagomeEngine(dict)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Knowledge:      kb,
		Transliterator: translit.NewAdapter(engine, a.logger),
		Logger:         a.logger,
	}
	if a.cfg.DBPath != "" {
		st, err := store.Open(ctx, a.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open term library: %w", err)
		}
		defer st.Close()
		deps.Archive = st
	}

	runner, err := pipeline.NewRunner(deps)
	if err != nil {
		return err
	}

	sess := session.New(runner, session.WithLogger(a.logger))
	events, err := sess.Start(ctx, pipeline.Request{
		InputPath:  input,
		OutputPath: output,
		Config:     a.cfg.Pipeline(),
	})
	if err != nil {
		return err
	}

	var runErr error
	for ev := range events {
		switch ev.Kind {
		case session.Progress:
			a.logger.Debug("progress", "percent", ev.Percent)
		case session.Log, session.Success:
			fmt.Fprintln(a.stderr, ev.Text)
		case session.Result:
			fmt.Fprint(a.stdout, ev.Text)
		case session.Error:
			runErr = ev.Err
			fmt.Fprintln(a.stderr, ev.Text)
		}
	}

	switch {
	case runErr == nil:
		return nil
	case pipeline.IsNoTerms(runErr):
		// Reported above; an empty result is not a failure.
		return nil
	default:
		return &reportedError{runErr}
	}
}
