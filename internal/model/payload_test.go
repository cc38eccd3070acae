package model

import (
	"testing"
	"time"
)

func TestDecodeAttributes(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus DecodeStatus
		wantKey    string
	}{
		{name: "valid object", raw: `{"symbol":"NVDA","transaction_id":7}`, wantStatus: DecodeOK, wantKey: "symbol"},
		{name: "empty input", raw: "", wantStatus: DecodeEmpty},
		{name: "json null", raw: "null", wantStatus: DecodeEmpty},
		{name: "malformed json", raw: `{"symbol":`, wantStatus: DecodeCorrupt},
		{name: "non object", raw: `[1,2,3]`, wantStatus: DecodeCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAttributes([]byte(tt.raw))
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Attrs == nil {
				t.Fatal("Attrs is nil, want non-nil map")
			}
			if tt.wantKey != "" {
				if _, ok := got.Attrs[tt.wantKey]; !ok {
					t.Errorf("Attrs missing key %q", tt.wantKey)
				}
			}
			if tt.wantStatus != DecodeOK && len(got.Attrs) != 0 {
				t.Errorf("Attrs = %v, want empty on %v", got.Attrs, tt.wantStatus)
			}
		})
	}
}

func TestEventSortTS(t *testing.T) {
	capture := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	traded := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	ev := Event{CaptureTS: capture}
	if got := ev.SortTS(); !got.Equal(capture) {
		t.Errorf("SortTS without event_date = %v, want capture %v", got, capture)
	}

	ev.EventDate = &traded
	if got := ev.SortTS(); !got.Equal(traded) {
		t.Errorf("SortTS with event_date = %v, want %v", got, traded)
	}
}

func TestEventMarketTradeType(t *testing.T) {
	mk := func(v string) *string { return &v }

	tests := []struct {
		name string
		tt   *string
		want bool
	}{
		{"purchase", mk("purchase"), true},
		{"sale", mk("sale"), true},
		{"award", mk("award"), false},
		{"verbatim sec code", mk("A"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{TradeType: tt.tt}
			if got := ev.MarketTradeType(); got != tt.want {
				t.Errorf("MarketTradeType() = %v, want %v", got, tt.want)
			}
		})
	}
}
