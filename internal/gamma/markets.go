package gamma

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Market is a raw market record as returned by the Gamma /markets
// endpoint. Only the fields polysnap consumes are decoded; numeric
// fields arrive either as numbers or strings depending on the market.
type Market struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Question        string          `json:"question"`
	Category        string          `json:"category"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	Active          bool            `json:"active"`
	Closed          bool            `json:"closed"`
	EnableOrderBook bool            `json:"enableOrderBook"`
	VolumeNum       LooseFloat      `json:"volumeNum"`
	LiquidityNum    LooseFloat      `json:"liquidityNum"`
	ClobTokenIDs    json.RawMessage `json:"clobTokenIds"`
}

// TopMarket is the normalized market record persisted to bronze
// storage. Field names match the bronze file schema.
type TopMarket struct {
	MarketID        string   `json:"market_id"`
	Slug            string   `json:"slug"`
	Question        string   `json:"question"`
	Category        string   `json:"category"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	Active          bool     `json:"active"`
	Closed          bool     `json:"closed"`
	EnableOrderBook bool     `json:"enableOrderBook"`
	VolumeNum       float64  `json:"volumeNum"`
	LiquidityNum    float64  `json:"liquidityNum"`
	ClobTokenIDs    []string `json:"clobTokenIds"`
}

// LooseFloat decodes a JSON number, a numeric string, or null.
// Unparsable values decode as zero rather than failing the record.
type LooseFloat float64

func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = LooseFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	*f = LooseFloat(v)
	return nil
}

// DecodeTokenIDs extracts CLOB token ids from a clobTokenIds value.
// Gamma serves the field either as a JSON array of strings or as a
// string containing a JSON array. Unusable values yield nil.
func DecodeTokenIDs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil
	}
	return ids
}

// PickTop filters raw markets down to CLOB-tradeable ones and returns
// the top n by volume. A market qualifies when its order book is
// enabled, it is active and not closed, and it carries at least one
// token id.
func PickTop(raw []Market, n int) []TopMarket {
	cleaned := make([]TopMarket, 0, len(raw))
	for _, m := range raw {
		if !m.EnableOrderBook || m.Closed || !m.Active {
			continue
		}
		ids := DecodeTokenIDs(m.ClobTokenIDs)
		if len(ids) == 0 {
			continue
		}
		cleaned = append(cleaned, TopMarket{
			MarketID:        m.ID,
			Slug:            m.Slug,
			Question:        m.Question,
			Category:        m.Category,
			StartDate:       m.StartDate,
			EndDate:         m.EndDate,
			Active:          m.Active,
			Closed:          m.Closed,
			EnableOrderBook: m.EnableOrderBook,
			VolumeNum:       float64(m.VolumeNum),
			LiquidityNum:    float64(m.LiquidityNum),
			ClobTokenIDs:    ids,
		})
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].VolumeNum > cleaned[j].VolumeNum
	})

	if n > 0 && len(cleaned) > n {
		cleaned = cleaned[:n]
	}
	return cleaned
}

// TokenUniverse returns the sorted set of distinct token ids across
// the given markets.
func TokenUniverse(markets []TopMarket) []string {
	seen := map[string]struct{}{}
	for _, m := range markets {
		for _, id := range m.ClobTokenIDs {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
