package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/polylake-labs/polysnap/internal/agent"
)

// FileConfig mirrors agent.Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	DataDir         string `toml:"data_dir"`
	LogDir          string `toml:"log_dir"`
	GammaURL        string `toml:"gamma_url"`
	ClobURL         string `toml:"clob_url"`
	TopMarkets      int    `toml:"top_markets"`
	MarketsLimit    int    `toml:"markets_limit"`
	BooksBatch      int    `toml:"books_batch"`
	BooksDelay      string `toml:"books_delay"`
	TokensMaxAge    string `toml:"tokens_max_age"`
	HistoryMarkets  int    `toml:"history_markets"`
	HistoryInterval string `toml:"history_interval"`
	HistoryFidelity int    `toml:"history_fidelity"`
	HTTPTimeout     string `toml:"http_timeout"`
	CatalogPath     string `toml:"catalog_path"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.polysnap/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".polysnap", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *agent.Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("log-dir", fc.LogDir, &cfg.LogDir)
	s.setString("gamma-url", fc.GammaURL, &cfg.GammaURL)
	s.setString("clob-url", fc.ClobURL, &cfg.ClobURL)
	s.setString("history-interval", fc.HistoryInterval, &cfg.HistoryInterval)
	s.setString("catalog", fc.CatalogPath, &cfg.CatalogPath)

	s.setInt("top-markets", fc.TopMarkets, &cfg.TopMarkets)
	s.setInt("markets-limit", fc.MarketsLimit, &cfg.MarketsLimit)
	s.setInt("books-batch", fc.BooksBatch, &cfg.BooksBatch)
	s.setInt("history-markets", fc.HistoryMarkets, &cfg.HistoryMarkets)
	s.setInt("history-fidelity", fc.HistoryFidelity, &cfg.HistoryFidelity)

	if err := s.setDuration("books-delay", fc.BooksDelay, &cfg.BooksDelay); err != nil {
		return err
	}
	if err := s.setDuration("tokens-max-age", fc.TokensMaxAge, &cfg.TokensMaxAge); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
