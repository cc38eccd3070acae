package price

import (
	"context"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// Annotation is the pricing context attached to one listed event.
// Every field is optional; a lookup failure simply leaves it unset.
type Annotation struct {
	CurrentPrice *float64
	EntryClose   *float64
	EstimatedPnL *float64
}

// Quoter is the provider surface the annotator consumes.
type Quoter interface {
	Enabled() bool
	CurrentPrices(ctx context.Context, symbols []string) map[string]float64
	EODClose(ctx context.Context, symbol, date string) (float64, bool)
}

// Annotate prices one page of events, keyed by event id. The P&L
// estimate assumes a position worth the disclosed range midpoint at
// the event-date close and marks it to the current quote.
func Annotate(ctx context.Context, q Quoter, events []model.Event) map[int64]Annotation {
	out := make(map[int64]Annotation)
	if q == nil || !q.Enabled() {
		return out
	}

	symbols := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.Symbol != nil {
			symbols = append(symbols, *ev.Symbol)
		}
	}
	prices := q.CurrentPrices(ctx, symbols)

	for _, ev := range events {
		if ev.Symbol == nil {
			continue
		}
		current, ok := prices[*ev.Symbol]
		if !ok {
			continue
		}

		ann := Annotation{CurrentPrice: &current}

		if mid, ok := rangeMidpoint(ev); ok && ev.EventDate != nil {
			date := ev.EventDate.Format("2006-01-02")
			if close, ok := q.EODClose(ctx, *ev.Symbol, date); ok && close > 0 {
				pnl := mid * (current/close - 1)
				ann.EntryClose = &close
				ann.EstimatedPnL = &pnl
			}
		}

		out[ev.ID] = ann
	}
	return out
}

// rangeMidpoint estimates the position size from the disclosed amount
// range, falling back to whichever bound exists.
func rangeMidpoint(ev model.Event) (float64, bool) {
	switch {
	case ev.AmountMin != nil && ev.AmountMax != nil:
		return (*ev.AmountMin + *ev.AmountMax) / 2, true
	case ev.AmountMax != nil:
		return *ev.AmountMax, true
	case ev.AmountMin != nil:
		return *ev.AmountMin, true
	}
	return 0, false
}
