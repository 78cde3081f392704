package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polylake-labs/polysnap/internal/agent"
)

func newSnapshotCmd(cfg *agent.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a full bronze snapshot tree (markets, books, price history)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}

			closer, err := agent.AttachLogFile(cfg.LogDir)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			ctx, stop := signalContext()
			defer stop()

			return agent.RunSnapshot(ctx, *cfg)
		},
	}
}
