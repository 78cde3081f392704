// Package agent implements the one-shot snapshot captures: the
// rolling stream capture appended to bronze JSONL, and the full
// snapshot tree with markets, books and price histories.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/polylake-labs/polysnap/internal/catalog"
	"github.com/polylake-labs/polysnap/internal/clob"
	"github.com/polylake-labs/polysnap/internal/gamma"
)

const historyConcurrency = 4

// streamSnapshot is one line of the bronze snapshot stream.
type streamSnapshot struct {
	SnapshotTS string            `json:"snapshot_ts_utc"`
	TokenCount int               `json:"token_count"`
	BooksCount int               `json:"books_count"`
	Books      []json.RawMessage `json:"books"`
}

// RunStream performs a single stream capture: refresh the token cache
// if stale, fetch order books for the whole universe, and append one
// snapshot line to the daily bronze stream file.
func RunStream(ctx context.Context, cfg Config) error {
	store := openCatalog(cfg)
	defer store.Close()
	run, _ := store.Begin(catalog.KindStream)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gc := gamma.NewClient(cfg.GammaURL, httpClient)
	cc := clob.NewClient(cfg.ClobURL, httpClient)

	tokens, refreshed, err := refreshTokens(ctx, cfg, gc)
	if err != nil {
		store.Fail(run, err)
		return err
	}
	if refreshed {
		logger.Info().Int("tokens", len(tokens)).Msg("token universe refreshed")
	} else {
		logger.Debug().Int("tokens", len(tokens)).Msg("token universe cached")
	}

	books, err := cc.Books(ctx, tokens, cfg.BooksBatch, cfg.BooksDelay)
	if err != nil {
		store.Fail(run, err)
		return err
	}

	now := time.Now().UTC()
	snap := streamSnapshot{
		SnapshotTS: now.Format(time.RFC3339Nano),
		TokenCount: len(tokens),
		BooksCount: len(books),
		Books:      books,
	}
	outFile := filepath.Join(cfg.StreamDir(), fmt.Sprintf("books_snapshots_%s.jsonl", now.Format("2006-01-02")))
	if err := appendJSONL(outFile, snap); err != nil {
		store.Fail(run, err)
		return fmt.Errorf("append snapshot: %w", err)
	}

	if err := saveState(cfg.StreamDir(), state{
		LastCaptureAt: now,
		TokenCount:    len(tokens),
		BookCount:     len(books),
	}); err != nil {
		logger.Warn().Err(err).Msg("save state")
	}
	store.Complete(run, len(tokens), len(books))

	logger.Info().
		Str("file", outFile).
		Int("tokens", len(tokens)).
		Int("books", len(books)).
		Msg("snapshot appended")
	return nil
}

// RunSnapshot performs a full capture into a timestamped bronze tree:
// top markets, their order books, and price history for the tokens of
// the highest-volume markets.
func RunSnapshot(ctx context.Context, cfg Config) error {
	store := openCatalog(cfg)
	defer store.Close()
	run, _ := store.Begin(catalog.KindSnapshot)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gc := gamma.NewClient(cfg.GammaURL, httpClient)
	cc := clob.NewClient(cfg.ClobURL, httpClient)

	now := time.Now().UTC()
	base := filepath.Join(cfg.SnapshotBase(), now.Format("2006-01-02"), now.Format("150405"))
	for _, sub := range []string{"markets", "books", "prices_history"} {
		if err := os.MkdirAll(filepath.Join(base, sub), 0o755); err != nil {
			store.Fail(run, err)
			return fmt.Errorf("snapshot dir: %w", err)
		}
	}

	raw, err := gc.Markets(ctx, cfg.MarketsLimit, 0)
	if err != nil {
		store.Fail(run, err)
		return err
	}
	markets := gamma.PickTop(raw, cfg.TopMarkets)
	marketsFile := filepath.Join(base, "markets", "markets_top.json")
	if err := writeJSONIndent(marketsFile, markets); err != nil {
		store.Fail(run, err)
		return fmt.Errorf("write markets: %w", err)
	}
	logger.Info().Str("file", marketsFile).Int("markets", len(markets)).Msg("markets saved")

	tokens := gamma.TokenUniverse(markets)
	logger.Info().Int("tokens", len(tokens)).Msg("token universe")

	books, err := cc.Books(ctx, tokens, cfg.BooksBatch, cfg.BooksDelay)
	if err != nil {
		store.Fail(run, err)
		return err
	}
	booksFile := filepath.Join(base, "books", "orderbooks.json")
	if err := writeJSON(booksFile, books); err != nil {
		store.Fail(run, err)
		return fmt.Errorf("write orderbooks: %w", err)
	}
	logger.Info().Str("file", booksFile).Int("books", len(books)).Msg("orderbooks saved")

	histTokens := historyTokens(markets, cfg.HistoryMarkets)
	if err := fetchHistories(ctx, cfg, cc, base, histTokens); err != nil {
		store.Fail(run, err)
		return err
	}
	logger.Info().
		Str("dir", filepath.Join(base, "prices_history")).
		Int("tokens", len(histTokens)).
		Msg("price history saved")

	if err := saveState(cfg.StreamDir(), state{
		LastCaptureAt:   now,
		TokenCount:      len(tokens),
		BookCount:       len(books),
		LastSnapshotDir: base,
	}); err != nil {
		logger.Warn().Err(err).Msg("save state")
	}
	store.Complete(run, len(tokens), len(books))

	logger.Info().Str("dir", base).Msg("snapshot completed")
	return nil
}

// historyTokens returns the distinct tokens of the first n markets,
// which arrive pre-sorted by volume.
func historyTokens(markets []gamma.TopMarket, n int) []string {
	if n < len(markets) {
		markets = markets[:n]
	}
	return gamma.TokenUniverse(markets)
}

// fetchHistories downloads price history for each token with bounded
// concurrency. Individual failures are logged and skipped; only a
// cancelled context aborts the capture.
func fetchHistories(ctx context.Context, cfg Config, cc *clob.Client, base string, tokens []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for _, tid := range tokens {
		tid := tid
		g.Go(func() error {
			h, err := cc.PriceHistory(ctx, tid, cfg.HistoryInterval, cfg.HistoryFidelity)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn().Err(err).Str("token", tid).Msg("price history failed")
				return nil
			}
			path := filepath.Join(base, "prices_history", tid+".json")
			if err := os.WriteFile(path, h, 0o644); err != nil {
				return fmt.Errorf("write price history: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func appendJSONL(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

func writeJSON(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// openCatalog opens the run catalog. Catalog trouble never blocks a
// capture; a nil store degrades every recording call to a no-op.
func openCatalog(cfg Config) *catalog.Store {
	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("run catalog unavailable")
		return nil
	}
	return store
}
