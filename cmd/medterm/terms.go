package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/medterm/pkg/store"
	"github.com/japaniel/medterm/pkg/table"
)

func (a *app) termsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terms <source>",
		Short: "Print the terms recorded for a source document as CSV",
		Long: `terms reads the term library given by --db (or db_path) and prints every
term previously extracted from <source> as a table on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DBPath == "" {
				return fmt.Errorf("no term library: set --db or db_path")
			}
			st, err := store.Open(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open term library: %w", err)
			}
			defer st.Close()

			terms, err := st.TermsBySource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			records := make([]table.Record, 0, len(terms))
			for _, t := range terms {
				records = append(records, t.Record())
			}
			return table.Write(a.stdout, records)
		},
	}
}
