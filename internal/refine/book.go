package refine

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Level is one price level of an order book side.
type Level struct {
	Price float64
	Size  float64
}

// Book is a parsed CLOB order book.
type Book struct {
	TokenID    string
	SnapshotTS string
	Bids       []Level
	Asks       []Level
}

// looseString decodes a JSON string or number into a string.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(b)
	return nil
}

type rawLevel struct {
	Price looseString `json:"price"`
	Size  looseString `json:"size"`
}

type rawBook struct {
	AssetID   looseString `json:"asset_id"`
	TokenID   looseString `json:"token_id"`
	Timestamp looseString `json:"timestamp"`
	Bids      []rawLevel  `json:"bids"`
	Asks      []rawLevel  `json:"asks"`
}

// ParseBook decodes a raw bronze order book. CLOB encodes prices and
// sizes as strings; levels that fail to parse are dropped.
func ParseBook(raw json.RawMessage) (Book, error) {
	var rb rawBook
	if err := json.Unmarshal(raw, &rb); err != nil {
		return Book{}, err
	}
	tokenID := string(rb.AssetID)
	if tokenID == "" {
		tokenID = string(rb.TokenID)
	}
	return Book{
		TokenID:    tokenID,
		SnapshotTS: string(rb.Timestamp),
		Bids:       parseLevels(rb.Bids),
		Asks:       parseLevels(rb.Asks),
	}, nil
}

func parseLevels(raw []rawLevel) []Level {
	out := make([]Level, 0, len(raw))
	for _, r := range raw {
		price, perr := strconv.ParseFloat(string(r.Price), 64)
		size, serr := strconv.ParseFloat(string(r.Size), 64)
		if perr != nil || serr != nil {
			continue
		}
		out = append(out, Level{Price: price, Size: size})
	}
	return out
}

// BestBid returns the highest bid price.
func BestBid(bids []Level) (float64, bool) {
	if len(bids) == 0 {
		return 0, false
	}
	best := bids[0].Price
	for _, l := range bids[1:] {
		if l.Price > best {
			best = l.Price
		}
	}
	return best, true
}

// BestAsk returns the lowest ask price.
func BestAsk(asks []Level) (float64, bool) {
	if len(asks) == 0 {
		return 0, false
	}
	best := asks[0].Price
	for _, l := range asks[1:] {
		if l.Price < best {
			best = l.Price
		}
	}
	return best, true
}

// Midpoint averages best bid and ask. With only one side present the
// surviving price stands in for the mid.
func Midpoint(bid float64, hasBid bool, ask float64, hasAsk bool) (float64, bool) {
	switch {
	case hasBid && hasAsk:
		return (bid + ask) / 2, true
	case hasBid:
		return bid, true
	case hasAsk:
		return ask, true
	default:
		return 0, false
	}
}

// DepthWithin sums bid size at prices >= mid-band and ask size at
// prices <= mid+band.
func DepthWithin(bids, asks []Level, mid, band float64) float64 {
	lo, hi := mid-band, mid+band
	var depth float64
	for _, l := range bids {
		if l.Price >= lo {
			depth += l.Size
		}
	}
	for _, l := range asks {
		if l.Price <= hi {
			depth += l.Size
		}
	}
	return depth
}

// BuyAvgFillPrice walks the ask ladder, best price first, spending the
// given dollar budget. It returns the average price paid per share, or
// false when nothing can fill.
func BuyAvgFillPrice(asks []Level, budget float64) (float64, bool) {
	if budget <= 0 || len(asks) == 0 {
		return 0, false
	}

	sorted := make([]Level, len(asks))
	copy(sorted, asks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	remaining := budget
	var totalCost, totalShares float64
	for _, lvl := range sorted {
		if lvl.Price <= 0 {
			continue
		}
		levelCost := lvl.Price * lvl.Size
		if remaining >= levelCost {
			totalCost += levelCost
			totalShares += lvl.Size
			remaining -= levelCost
		} else {
			totalCost += remaining
			totalShares += remaining / lvl.Price
			remaining = 0
			break
		}
		if remaining <= 1e-9 {
			break
		}
	}

	if totalShares <= 1e-12 {
		return 0, false
	}
	return totalCost / totalShares, true
}

// SortedBids returns bids by price descending, truncated to n levels.
func SortedBids(bids []Level, n int) []Level {
	out := make([]Level, len(bids))
	copy(out, bids)
	sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SortedAsks returns asks by price ascending, truncated to n levels.
func SortedAsks(asks []Level, n int) []Level {
	out := make([]Level, len(asks))
	copy(out, asks)
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
