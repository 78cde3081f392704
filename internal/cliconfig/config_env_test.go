package cliconfig

import (
	"testing"
	"time"

	"github.com/polylake-labs/polysnap/internal/agent"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("POLYSNAP_DATA_DIR", "/env/data")
	t.Setenv("POLYSNAP_TOP_MARKETS", "75")
	t.Setenv("POLYSNAP_BOOKS_DELAY", "100ms")
	t.Setenv("POLYSNAP_TOKENS_MAX_AGE", "6h")

	cfg := agent.Config{}
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.DataDir != "/env/data" {
		t.Errorf("DataDir = %s, want /env/data", cfg.DataDir)
	}
	if cfg.TopMarkets != 75 {
		t.Errorf("TopMarkets = %d, want 75", cfg.TopMarkets)
	}
	if cfg.BooksDelay != 100*time.Millisecond {
		t.Errorf("BooksDelay = %v, want 100ms", cfg.BooksDelay)
	}
	if cfg.TokensMaxAge != 6*time.Hour {
		t.Errorf("TokensMaxAge = %v, want 6h", cfg.TokensMaxAge)
	}
}

func TestApplyEnvConfigRespectsFlags(t *testing.T) {
	t.Setenv("POLYSNAP_DATA_DIR", "/env/data")

	cfg := agent.Config{DataDir: "/flag/data"}
	if err := ApplyEnvConfig(&cfg, map[string]bool{"data-dir": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.DataDir != "/flag/data" {
		t.Errorf("DataDir = %s, want /flag/data (flag wins)", cfg.DataDir)
	}
}

func TestApplyEnvConfigInvalidValues(t *testing.T) {
	t.Setenv("POLYSNAP_TOP_MARKETS", "many")
	cfg := agent.Config{}
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("expected error for non-numeric POLYSNAP_TOP_MARKETS")
	}

	t.Setenv("POLYSNAP_TOP_MARKETS", "")
	t.Setenv("POLYSNAP_HTTP_TIMEOUT", "whenever")
	cfg = agent.Config{}
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("expected error for invalid POLYSNAP_HTTP_TIMEOUT")
	}
}
