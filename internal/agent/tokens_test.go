package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/polylake-labs/polysnap/internal/gamma"
)

const marketsResponse = `[
	{"id":"m1","slug":"a","active":true,"enableOrderBook":true,"volumeNum":500,"clobTokenIds":"[\"t2\",\"t1\"]"},
	{"id":"m2","slug":"b","active":true,"enableOrderBook":true,"volumeNum":100,"clobTokenIds":["t3"]}
]`

func testConfig(t *testing.T, gammaURL string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.LogDir = cfg.DataDir
	cfg.GammaURL = gammaURL
	cfg.BooksDelay = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestRefreshTokensFetchesWhenMissing(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(marketsResponse))
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	gc := gamma.NewClient(cfg.GammaURL, nil)

	tokens, refreshed, err := refreshTokens(context.Background(), cfg, gc)
	if err != nil {
		t.Fatalf("refreshTokens: %v", err)
	}
	if !refreshed {
		t.Error("expected a refresh on cold cache")
	}
	if calls != 1 {
		t.Errorf("gamma calls = %d, want 1", calls)
	}
	want := []string{"t1", "t2", "t3"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}

	// Both cache files land on disk.
	for _, p := range []string{cfg.TokensFile(), cfg.MarketsFile()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing cache file %s: %v", p, err)
		}
	}
}

func TestRefreshTokensReusesFreshCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected gamma call with fresh cache")
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	if err := os.MkdirAll(cfg.StreamDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	cached := []string{"t9"}
	b, _ := json.Marshal(cached)
	if err := os.WriteFile(cfg.TokensFile(), b, 0o644); err != nil {
		t.Fatal(err)
	}

	gc := gamma.NewClient(cfg.GammaURL, nil)
	tokens, refreshed, err := refreshTokens(context.Background(), cfg, gc)
	if err != nil {
		t.Fatalf("refreshTokens: %v", err)
	}
	if refreshed {
		t.Error("fresh cache should not refresh")
	}
	if !reflect.DeepEqual(tokens, cached) {
		t.Errorf("tokens = %v, want %v", tokens, cached)
	}
}

func TestRefreshTokensRefreshesStaleCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketsResponse))
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	if err := os.MkdirAll(cfg.StreamDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.TokensFile(), []byte(`["old"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(cfg.TokensFile(), stale, stale); err != nil {
		t.Fatal(err)
	}

	gc := gamma.NewClient(cfg.GammaURL, nil)
	tokens, refreshed, err := refreshTokens(context.Background(), cfg, gc)
	if err != nil {
		t.Fatalf("refreshTokens: %v", err)
	}
	if !refreshed {
		t.Error("stale cache should refresh")
	}
	want := []string{"t1", "t2", "t3"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}
}
