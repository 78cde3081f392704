package main

import (
	"github.com/spf13/cobra"

	"github.com/polylake-labs/polysnap/internal/agent"
	"github.com/polylake-labs/polysnap/internal/catalog"
	"github.com/polylake-labs/polysnap/internal/refine"
)

func newRefineCmd(cfg *agent.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refine",
		Short: "Refine the newest bronze snapshot into silver and gold CSVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}

			log := agent.Logger()

			store, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				log.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("run catalog unavailable")
				store = nil
			}
			defer store.Close()
			run, _ := store.Begin(catalog.KindRefine)

			res, err := refine.Run(refine.DefaultOptions(cfg.DataDir), log)
			if err != nil {
				store.Fail(run, err)
				return err
			}
			store.Complete(run, 0, res.Books)
			return nil
		},
	}
}
