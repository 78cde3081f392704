// Package polysnap captures point-in-time snapshots of Polymarket
// order books and refines them into tabular datasets.
//
// Example usage:
//
//	cfg := polysnap.DefaultConfig()
//	cfg.DataDir = "/srv/polymarket/data"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := polysnap.Capture(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package polysnap

import (
	"context"

	"github.com/polylake-labs/polysnap/internal/agent"
	"github.com/rs/zerolog"
)

// Config holds the configuration for snapshot captures.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = agent.Config

// Capture performs a single stream capture: it refreshes the cached
// token universe when stale, fetches order books for every tracked
// token, and appends one snapshot line to the daily bronze stream file.
func Capture(ctx context.Context, cfg Config) error {
	return agent.RunStream(ctx, cfg)
}

// Snapshot performs a full capture into a timestamped bronze tree with
// top markets, order books, and price history.
func Snapshot(ctx context.Context, cfg Config) error {
	return agent.RunSnapshot(ctx, cfg)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return agent.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the captures.
func Logger() zerolog.Logger {
	return agent.Logger()
}

// DefaultGammaURL is the default Gamma Markets API endpoint.
const DefaultGammaURL = agent.DefaultGammaURL

// DefaultClobURL is the default Polymarket CLOB API endpoint.
const DefaultClobURL = agent.DefaultClobURL
