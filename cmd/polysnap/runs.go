package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/polylake-labs/polysnap/internal/agent"
	"github.com/polylake-labs/polysnap/internal/catalog"
)

func newRunsCmd(cfg *agent.Config, cfgPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent capture and refine runs from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}

			store, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "KIND", "STATUS", "STARTED", "DURATION", "TOKENS", "BOOKS", "ERROR"})
			for _, r := range runs {
				dur := ""
				if r.CompletedAt != nil {
					dur = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
				}
				t.AppendRow(table.Row{
					shortID(r.ID), r.Kind, r.Status,
					r.StartedAt.Format(time.RFC3339), dur,
					r.TokenCount, r.BookCount, r.Error,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
