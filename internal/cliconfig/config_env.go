package cliconfig

import (
	"os"

	"github.com/polylake-labs/polysnap/internal/agent"
)

// ApplyEnvConfig applies configuration from environment variables (POLYSNAP_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *agent.Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", os.Getenv("POLYSNAP_DATA_DIR"), &cfg.DataDir)
	s.setString("log-dir", os.Getenv("POLYSNAP_LOG_DIR"), &cfg.LogDir)
	s.setString("gamma-url", os.Getenv("POLYSNAP_GAMMA_URL"), &cfg.GammaURL)
	s.setString("clob-url", os.Getenv("POLYSNAP_CLOB_URL"), &cfg.ClobURL)
	s.setString("history-interval", os.Getenv("POLYSNAP_HISTORY_INTERVAL"), &cfg.HistoryInterval)
	s.setString("catalog", os.Getenv("POLYSNAP_CATALOG_PATH"), &cfg.CatalogPath)

	if err := s.setIntFromString("top-markets", os.Getenv("POLYSNAP_TOP_MARKETS"), &cfg.TopMarkets); err != nil {
		return err
	}
	if err := s.setIntFromString("markets-limit", os.Getenv("POLYSNAP_MARKETS_LIMIT"), &cfg.MarketsLimit); err != nil {
		return err
	}
	if err := s.setIntFromString("books-batch", os.Getenv("POLYSNAP_BOOKS_BATCH"), &cfg.BooksBatch); err != nil {
		return err
	}
	if err := s.setIntFromString("history-markets", os.Getenv("POLYSNAP_HISTORY_MARKETS"), &cfg.HistoryMarkets); err != nil {
		return err
	}
	if err := s.setIntFromString("history-fidelity", os.Getenv("POLYSNAP_HISTORY_FIDELITY"), &cfg.HistoryFidelity); err != nil {
		return err
	}

	if err := s.setDuration("books-delay", os.Getenv("POLYSNAP_BOOKS_DELAY"), &cfg.BooksDelay); err != nil {
		return err
	}
	if err := s.setDuration("tokens-max-age", os.Getenv("POLYSNAP_TOKENS_MAX_AGE"), &cfg.TokensMaxAge); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("POLYSNAP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	return nil
}
