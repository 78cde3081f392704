package gamma

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDecodeTokenIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "json array",
			raw:  `["111", "222"]`,
			want: []string{"111", "222"},
		},
		{
			name: "array encoded as string",
			raw:  `"[\"111\", \"222\"]"`,
			want: []string{"111", "222"},
		},
		{
			name: "unparseable string",
			raw:  `"not json"`,
			want: nil,
		},
		{
			name: "null",
			raw:  `null`,
			want: nil,
		},
		{
			name: "empty",
			raw:  ``,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTokenIDs(json.RawMessage(tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeTokenIDs(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLooseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`null`, 0},
		{`"garbage"`, 0},
	}

	for _, tt := range tests {
		var f LooseFloat
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if float64(f) != tt.want {
			t.Errorf("LooseFloat(%s) = %v, want %v", tt.raw, float64(f), tt.want)
		}
	}
}

func TestPickTop(t *testing.T) {
	tokens := json.RawMessage(`["1", "2"]`)
	raw := []Market{
		{ID: "no-book", Active: true, EnableOrderBook: false, ClobTokenIDs: tokens},
		{ID: "closed", Active: true, Closed: true, EnableOrderBook: true, ClobTokenIDs: tokens},
		{ID: "inactive", EnableOrderBook: true, ClobTokenIDs: tokens},
		{ID: "no-tokens", Active: true, EnableOrderBook: true},
		{ID: "small", Active: true, EnableOrderBook: true, VolumeNum: 10, ClobTokenIDs: tokens},
		{ID: "big", Active: true, EnableOrderBook: true, VolumeNum: 1000, ClobTokenIDs: tokens},
		{ID: "mid", Active: true, EnableOrderBook: true, VolumeNum: 100, ClobTokenIDs: tokens},
	}

	got := PickTop(raw, 2)
	if len(got) != 2 {
		t.Fatalf("PickTop returned %d markets, want 2", len(got))
	}
	if got[0].MarketID != "big" || got[1].MarketID != "mid" {
		t.Errorf("PickTop order = %s, %s; want big, mid", got[0].MarketID, got[1].MarketID)
	}
	if !reflect.DeepEqual(got[0].ClobTokenIDs, []string{"1", "2"}) {
		t.Errorf("ClobTokenIDs = %v, want [1 2]", got[0].ClobTokenIDs)
	}
}

func TestTokenUniverse(t *testing.T) {
	markets := []TopMarket{
		{ClobTokenIDs: []string{"3", "1"}},
		{ClobTokenIDs: []string{"2", "1"}},
	}
	got := TokenUniverse(markets)
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenUniverse = %v, want %v", got, want)
	}
}
