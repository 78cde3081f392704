package agent

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultGammaURL is the Gamma Markets API endpoint.
const DefaultGammaURL = "https://gamma-api.polymarket.com"

// DefaultClobURL is the Polymarket CLOB API endpoint.
const DefaultClobURL = "https://clob.polymarket.com"

// Config holds the configuration for snapshot captures.
type Config struct {
	DataDir string
	LogDir  string

	GammaURL string
	ClobURL  string

	TopMarkets   int
	MarketsLimit int

	BooksBatch int
	BooksDelay time.Duration

	TokensMaxAge time.Duration

	HistoryMarkets  int
	HistoryInterval string
	HistoryFidelity int

	HTTPTimeout time.Duration

	CatalogPath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DataDir:         "data",
		LogDir:          "logs",
		GammaURL:        DefaultGammaURL,
		ClobURL:         DefaultClobURL,
		TopMarkets:      100,
		MarketsLimit:    300,
		BooksBatch:      50,
		BooksDelay:      250 * time.Millisecond,
		TokensMaxAge:    24 * time.Hour,
		HistoryMarkets:  20,
		HistoryInterval: "1w",
		HistoryFidelity: 15,
		HTTPTimeout:     30 * time.Second,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log-dir is required")
	}

	if c.GammaURL == "" {
		c.GammaURL = DefaultGammaURL
	}
	if c.ClobURL == "" {
		c.ClobURL = DefaultClobURL
	}
	c.GammaURL = stripTrailingSlash(c.GammaURL)
	c.ClobURL = stripTrailingSlash(c.ClobURL)

	if c.TopMarkets <= 0 {
		return fmt.Errorf("top-markets must be positive")
	}
	if c.MarketsLimit <= 0 {
		return fmt.Errorf("markets-limit must be positive")
	}
	if c.BooksBatch <= 0 {
		return fmt.Errorf("books-batch must be positive")
	}
	if c.BooksDelay < 0 {
		return fmt.Errorf("books-delay must not be negative")
	}
	if c.TokensMaxAge <= 0 {
		return fmt.Errorf("tokens-max-age must be positive")
	}
	if c.HistoryMarkets < 0 {
		return fmt.Errorf("history-markets must not be negative")
	}
	if c.HistoryFidelity <= 0 {
		return fmt.Errorf("history-fidelity must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.CatalogPath == "" {
		c.CatalogPath = filepath.Join(c.DataDir, "catalog.db")
	}

	return nil
}

func stripTrailingSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}

// StreamDir is the bronze directory holding the rolling snapshot
// stream and the token cache.
func (c Config) StreamDir() string {
	return filepath.Join(c.DataDir, "bronze", "polymarket_stream")
}

// TokensFile is the cached token universe.
func (c Config) TokensFile() string {
	return filepath.Join(c.StreamDir(), "tokens_top.json")
}

// MarketsFile is the normalized top-market list backing the token cache.
func (c Config) MarketsFile() string {
	return filepath.Join(c.StreamDir(), "markets_top.json")
}

// SnapshotBase is the bronze directory holding full snapshot trees,
// laid out as <date>/<time>/.
func (c Config) SnapshotBase() string {
	return filepath.Join(c.DataDir, "bronze", "polymarket")
}
