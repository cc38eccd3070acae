package price

import (
	"context"
	"testing"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

type fakeQuoter struct {
	enabled bool
	prices  map[string]float64
	closes  map[string]float64 // keyed symbol@date
}

func (q *fakeQuoter) Enabled() bool { return q.enabled }

func (q *fakeQuoter) CurrentPrices(ctx context.Context, symbols []string) map[string]float64 {
	return q.prices
}

func (q *fakeQuoter) EODClose(ctx context.Context, symbol, date string) (float64, bool) {
	close, ok := q.closes[symbol+"@"+date]
	return close, ok
}

func strp(s string) *string   { return &s }
func f64p(v float64) *float64 { return &v }

func TestAnnotate(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: 1, Symbol: strp("NVDA"), EventDate: &day, AmountMin: f64p(10_000), AmountMax: f64p(30_000)},
		{ID: 2, Symbol: strp("AAPL"), EventDate: &day, AmountMax: f64p(50_000)},
		{ID: 3, Symbol: strp("MSFT")}, // no quote available
		{ID: 4},                       // no symbol
	}
	q := &fakeQuoter{
		enabled: true,
		prices:  map[string]float64{"NVDA": 150, "AAPL": 200},
		closes:  map[string]float64{"NVDA@2026-03-14": 100},
	}

	anns := Annotate(context.Background(), q, events)

	nvda, ok := anns[1]
	if !ok || nvda.CurrentPrice == nil || *nvda.CurrentPrice != 150 {
		t.Fatalf("nvda annotation = %+v", nvda)
	}
	// Midpoint 20000 marked from close 100 to quote 150.
	if nvda.EstimatedPnL == nil || *nvda.EstimatedPnL != 10_000 {
		t.Errorf("nvda pnl = %v, want 10000", nvda.EstimatedPnL)
	}
	if nvda.EntryClose == nil || *nvda.EntryClose != 100 {
		t.Errorf("nvda entry close = %v", nvda.EntryClose)
	}

	// Quote without an entry close still annotates the price alone.
	aapl := anns[2]
	if aapl.CurrentPrice == nil || *aapl.CurrentPrice != 200 {
		t.Errorf("aapl annotation = %+v", aapl)
	}
	if aapl.EstimatedPnL != nil {
		t.Errorf("aapl pnl = %v, want omitted", *aapl.EstimatedPnL)
	}

	if _, ok := anns[3]; ok {
		t.Error("unquoted symbol should carry no annotation")
	}
	if _, ok := anns[4]; ok {
		t.Error("symbolless event should carry no annotation")
	}
}

func TestAnnotateDisabled(t *testing.T) {
	events := []model.Event{{ID: 1, Symbol: strp("NVDA")}}
	if anns := Annotate(context.Background(), &fakeQuoter{}, events); len(anns) != 0 {
		t.Fatalf("annotations = %v, want none", anns)
	}
	if anns := Annotate(context.Background(), nil, events); len(anns) != 0 {
		t.Fatalf("annotations = %v, want none", anns)
	}
}
