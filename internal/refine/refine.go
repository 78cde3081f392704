// Package refine turns bronze order book snapshots into silver
// (per-level) and gold (per-token metrics) CSV datasets.
package refine

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrNoSnapshots is returned when the bronze tree holds no snapshot
// directories to refine.
var ErrNoSnapshots = errors.New("refine: no bronze snapshots found")

// Options configures a refine pass.
type Options struct {
	// BronzeDir holds snapshot trees laid out as <date>/<time>/.
	BronzeDir string
	SilverDir string
	GoldDir   string

	// TopLevels is how many levels per side reach the silver dataset.
	TopLevels int
	// DepthBand is the price distance around the midpoint counted as depth.
	DepthBand float64
	// Budgets are the dollar amounts simulated for buy slippage. The
	// middle budget feeds the composite score.
	Budgets []float64
}

// DefaultOptions returns refine options rooted at dataDir.
func DefaultOptions(dataDir string) Options {
	return Options{
		BronzeDir: filepath.Join(dataDir, "bronze", "polymarket"),
		SilverDir: filepath.Join(dataDir, "silver"),
		GoldDir:   filepath.Join(dataDir, "gold"),
		TopLevels: 20,
		DepthBand: 0.01,
		Budgets:   []float64{10, 50, 200},
	}
}

// Result reports what a refine pass produced.
type Result struct {
	SnapshotDir string
	SilverPath  string
	GoldPath    string
	Books       int
}

// LatestSnapshotDir finds the newest snapshot under bronzeDir. The
// two-level date/time layout sorts lexicographically in time order.
func LatestSnapshotDir(bronzeDir string) (string, error) {
	dateDirs, err := os.ReadDir(bronzeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNoSnapshots, bronzeDir)
		}
		return "", fmt.Errorf("read bronze dir: %w", err)
	}

	var candidates []string
	for _, d := range dateDirs {
		if !d.IsDir() {
			continue
		}
		timeDirs, err := os.ReadDir(filepath.Join(bronzeDir, d.Name()))
		if err != nil {
			continue
		}
		for _, t := range timeDirs {
			if t.IsDir() {
				candidates = append(candidates, filepath.Join(bronzeDir, d.Name(), t.Name()))
			}
		}
	}
	if len(candidates) == 0 {
		return "", ErrNoSnapshots
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

// Run refines the newest bronze snapshot into silver and gold CSVs.
func Run(opts Options, log zerolog.Logger) (Result, error) {
	snapshotDir, err := LatestSnapshotDir(opts.BronzeDir)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("dir", snapshotDir).Msg("refining snapshot")

	books, err := loadOrderbooks(snapshotDir)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(opts.SilverDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("silver dir: %w", err)
	}
	if err := os.MkdirAll(opts.GoldDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("gold dir: %w", err)
	}

	// Tag outputs with the snapshot's date and time dir names.
	tag := filepath.Base(filepath.Dir(snapshotDir)) + "_" + filepath.Base(snapshotDir)
	silverPath := filepath.Join(opts.SilverDir, fmt.Sprintf("orderbook_levels_%s.csv", tag))
	goldPath := filepath.Join(opts.GoldDir, fmt.Sprintf("metrics_%s.csv", tag))

	if err := writeSilver(silverPath, books, opts.TopLevels); err != nil {
		return Result{}, err
	}
	if err := writeGold(goldPath, books, opts); err != nil {
		return Result{}, err
	}

	log.Info().Str("silver", silverPath).Str("gold", goldPath).Int("books", len(books)).Msg("refine completed")
	return Result{
		SnapshotDir: snapshotDir,
		SilverPath:  silverPath,
		GoldPath:    goldPath,
		Books:       len(books),
	}, nil
}

func loadOrderbooks(snapshotDir string) ([]Book, error) {
	path := filepath.Join(snapshotDir, "books", "orderbooks.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read orderbooks: %w", err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode orderbooks: %w", err)
	}
	books := make([]Book, 0, len(raw))
	for _, r := range raw {
		book, err := ParseBook(r)
		if err != nil {
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

func writeSilver(path string, books []Book, topLevels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create silver csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"snapshot_ts", "token_id", "side", "level", "price", "size"}); err != nil {
		return err
	}
	for _, book := range books {
		for i, lvl := range SortedBids(book.Bids, topLevels) {
			if err := w.Write(levelRow(book, "bid", i+1, lvl)); err != nil {
				return err
			}
		}
		for i, lvl := range SortedAsks(book.Asks, topLevels) {
			if err := w.Write(levelRow(book, "ask", i+1, lvl)); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func levelRow(book Book, side string, level int, lvl Level) []string {
	return []string{
		book.SnapshotTS,
		book.TokenID,
		side,
		strconv.Itoa(level),
		formatFloat(lvl.Price),
		formatFloat(lvl.Size),
	}
}

func writeGold(path string, books []Book, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gold csv: %w", err)
	}
	defer f.Close()

	header := []string{"snapshot_ts", "token_id", "best_bid", "best_ask", "mid", "spread", "depth_1pt"}
	for _, b := range opts.Budgets {
		header = append(header, fmt.Sprintf("slippage_buy_%s", formatFloat(b)))
	}
	header = append(header, "score")

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, book := range books {
		if err := w.Write(goldRow(book, opts)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func goldRow(book Book, opts Options) []string {
	bid, hasBid := BestBid(book.Bids)
	ask, hasAsk := BestAsk(book.Asks)
	mid, hasMid := Midpoint(bid, hasBid, ask, hasAsk)

	var spread *float64
	if hasBid && hasAsk {
		s := ask - bid
		spread = &s
	}
	var depth *float64
	if hasMid {
		d := DepthWithin(book.Bids, book.Asks, mid, opts.DepthBand)
		depth = &d
	}

	// Slippage baseline: midpoint when available, else best ask.
	var baseline *float64
	if hasMid {
		baseline = &mid
	} else if hasAsk {
		baseline = &ask
	}

	slippages := make([]*float64, len(opts.Budgets))
	for i, budget := range opts.Budgets {
		avg, ok := BuyAvgFillPrice(book.Asks, budget)
		if ok && baseline != nil {
			s := avg - *baseline
			slippages[i] = &s
		}
	}

	// Simple liquidity ranking; higher is better.
	var score *float64
	scoreSlip := slippages[len(slippages)/2]
	if depth != nil && spread != nil && scoreSlip != nil {
		v := *depth/1000.0 - *spread*3.0 - *scoreSlip*4.0
		score = &v
	}

	row := []string{
		book.SnapshotTS,
		book.TokenID,
		formatOptional(optional(bid, hasBid)),
		formatOptional(optional(ask, hasAsk)),
		formatOptional(optional(mid, hasMid)),
		formatOptional(spread),
		formatOptional(depth),
	}
	for _, s := range slippages {
		row = append(row, formatOptional(s))
	}
	return append(row, formatOptional(score))
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatOptional renders missing metrics as empty cells.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
