// Package clob talks to the Polymarket CLOB API: bulk order book
// fetches and per-token price history.
package clob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client queries the Polymarket CLOB API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a CLOB API client. The base URL must not carry a
// trailing slash.
func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: client}
}

type bookRequest struct {
	TokenID string `json:"token_id"`
}

// Books fetches order books for the given tokens via POST /books,
// batching batchSize tokens per request and pausing delay between
// batches to stay polite. Books are returned as raw JSON so bronze
// storage preserves whatever the API served.
func (c *Client) Books(ctx context.Context, tokenIDs []string, batchSize int, delay time.Duration) ([]json.RawMessage, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	out := make([]json.RawMessage, 0, len(tokenIDs))
	for start := 0; start < len(tokenIDs); start += batchSize {
		end := start + batchSize
		if end > len(tokenIDs) {
			end = len(tokenIDs)
		}
		books, err := c.booksBatch(ctx, tokenIDs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, books...)

		if end < len(tokenIDs) && delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return out, nil
}

func (c *Client) booksBatch(ctx context.Context, tokenIDs []string) ([]json.RawMessage, error) {
	payload := make([]bookRequest, len(tokenIDs))
	for i, id := range tokenIDs {
		payload[i] = bookRequest{TokenID: id}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal books request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/books", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read books response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("clob returned %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var books []json.RawMessage
		if err := json.Unmarshal(trimmed, &books); err != nil {
			return nil, fmt.Errorf("decode books: %w", err)
		}
		return books, nil
	}
	// A lone object counts as a single-element response.
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("decode books: invalid JSON")
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}

// PriceHistory fetches the price series for one token via
// GET /prices-history. The response is returned verbatim.
func (c *Client) PriceHistory(ctx context.Context, tokenID, interval string, fidelity int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("market", tokenID)
	params.Set("interval", interval)
	params.Set("fidelity", strconv.Itoa(fidelity))

	u := c.baseURL + "/prices-history?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price history response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("clob returned %d: %s", resp.StatusCode, truncate(body, 256))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode price history: invalid JSON")
	}
	return json.RawMessage(body), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
