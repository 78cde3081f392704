package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/polylake-labs/polysnap/internal/gamma"
)

// refreshTokens returns the token universe for stream captures. The
// cached universe in tokens_top.json is reused while younger than
// cfg.TokensMaxAge; otherwise the top markets are re-fetched from
// Gamma and both cache files are rewritten. The bool reports whether
// the cache was refreshed.
func refreshTokens(ctx context.Context, cfg Config, gc *gamma.Client) ([]string, bool, error) {
	if err := os.MkdirAll(cfg.StreamDir(), 0o755); err != nil {
		return nil, false, fmt.Errorf("stream dir: %w", err)
	}

	if fi, err := os.Stat(cfg.TokensFile()); err == nil {
		if time.Since(fi.ModTime()) < cfg.TokensMaxAge {
			b, err := os.ReadFile(cfg.TokensFile())
			if err != nil {
				return nil, false, fmt.Errorf("read token cache: %w", err)
			}
			var tokens []string
			if err := json.Unmarshal(b, &tokens); err != nil {
				return nil, false, fmt.Errorf("decode token cache: %w", err)
			}
			return tokens, false, nil
		}
	}

	raw, err := gc.Markets(ctx, cfg.MarketsLimit, 0)
	if err != nil {
		return nil, false, err
	}
	markets := gamma.PickTop(raw, cfg.TopMarkets)
	tokens := gamma.TokenUniverse(markets)

	if err := writeJSONIndent(cfg.MarketsFile(), markets); err != nil {
		return nil, false, fmt.Errorf("write market cache: %w", err)
	}
	if err := writeJSONIndent(cfg.TokensFile(), tokens); err != nil {
		return nil, false, fmt.Errorf("write token cache: %w", err)
	}

	return tokens, true, nil
}

func writeJSONIndent(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
