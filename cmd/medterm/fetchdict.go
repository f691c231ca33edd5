package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/medterm/pkg/dictionary"
)

func (a *app) fetchDictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-dict [path]",
		Short: "Download the common English jmdict-simplified dictionary",
		Long: `fetch-dict downloads the latest jmdict-simplified common dictionary to
[path] (default: jmdict_path, else ` + dictionary.DefaultFileName + `). An
existing file is left untouched. Pass the file with --jmdict to use its
readings during conversion.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.JMdictPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = dictionary.DefaultFileName
			}
			if err := dictionary.NewDownloader(a.logger).Ensure(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "dictionary ready at %s\n", path)
			return nil
		},
	}
}
