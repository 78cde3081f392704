package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/polylake-labs/polysnap/internal/agent"
	"github.com/polylake-labs/polysnap/internal/cliconfig"
)

const longHelp = `
Capture point-in-time snapshots of Polymarket order books into a local
bronze/silver/gold lakehouse.

The root command performs one stream capture: it refreshes the cached
token universe when stale, bulk-fetches order books from the CLOB API,
and appends a snapshot line to the daily bronze stream file. Progress
is appended to <log-dir>/snapshot.log so scheduled runs leave a trail.

Every command runs once and exits; drive repetition from cron or a
task scheduler.
`

var exampleUsage = strings.TrimSpace(`
  polysnap
  polysnap --data-dir /srv/polymarket/data --top-markets 50
  polysnap snapshot
  polysnap refine
  polysnap runs
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// setupConfig layers file and env configuration under already-parsed
// flags and validates the result.
func setupConfig(cmd *cobra.Command, cfg *agent.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	cfg := agent.DefaultConfig()
	var cfgPath string

	log := agent.Logger()

	root := &cobra.Command{
		Use:     "polysnap",
		Short:   "Snapshot Polymarket order books into a local lakehouse",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}

			closer, err := agent.AttachLogFile(cfg.LogDir)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			log := agent.Logger()
			log.Info().Interface("config", cfg).Msg("configuration")

			ctx, stop := signalContext()
			defer stop()

			return agent.RunStream(ctx, cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.polysnap/config.toml)")
	root.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "lakehouse root directory")
	root.PersistentFlags().StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for snapshot.log")

	root.PersistentFlags().StringVar(&cfg.GammaURL, "gamma-url", cfg.GammaURL, "Gamma Markets API base URL")
	root.PersistentFlags().StringVar(&cfg.ClobURL, "clob-url", cfg.ClobURL, "CLOB API base URL")

	root.PersistentFlags().IntVar(&cfg.TopMarkets, "top-markets", cfg.TopMarkets, "number of top-volume markets to track")
	root.PersistentFlags().IntVar(&cfg.MarketsLimit, "markets-limit", cfg.MarketsLimit, "markets fetched from Gamma per refresh")
	root.PersistentFlags().IntVar(&cfg.BooksBatch, "books-batch", cfg.BooksBatch, "tokens per order book request")
	root.PersistentFlags().DurationVar(&cfg.BooksDelay, "books-delay", cfg.BooksDelay, "pause between order book requests")
	root.PersistentFlags().DurationVar(&cfg.TokensMaxAge, "tokens-max-age", cfg.TokensMaxAge, "token cache lifetime before refresh")

	root.PersistentFlags().IntVar(&cfg.HistoryMarkets, "history-markets", cfg.HistoryMarkets, "markets whose tokens get price history (snapshot)")
	root.PersistentFlags().StringVar(&cfg.HistoryInterval, "history-interval", cfg.HistoryInterval, "price history interval (snapshot)")
	root.PersistentFlags().IntVar(&cfg.HistoryFidelity, "history-fidelity", cfg.HistoryFidelity, "price history fidelity in minutes (snapshot)")

	root.PersistentFlags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	root.PersistentFlags().StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "run catalog database path (default: <data-dir>/catalog.db)")

	root.AddCommand(newSnapshotCmd(&cfg, &cfgPath))
	root.AddCommand(newRefineCmd(&cfg, &cfgPath))
	root.AddCommand(newRunsCmd(&cfg, &cfgPath))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("polysnap")
		os.Exit(1)
	}
}
