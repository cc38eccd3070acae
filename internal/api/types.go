package api

import (
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
	"github.com/tapelabs/disclosure-tape/internal/price"
	"github.com/tapelabs/disclosure-tape/internal/signal"
)

// EventOut is one listed event.
type EventOut struct {
	ID              int64      `json:"id"`
	EventType       string     `json:"event_type"`
	CaptureTS       time.Time  `json:"ts"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	Symbol          *string    `json:"symbol,omitempty"`
	Source          string     `json:"source"`
	MemberName      *string    `json:"member_name,omitempty"`
	MemberID        *string    `json:"member_id,omitempty"`
	Chamber         *string    `json:"chamber,omitempty"`
	Party           *string    `json:"party,omitempty"`
	TransactionType *string    `json:"transaction_type,omitempty"`
	TradeType       *string    `json:"trade_type,omitempty"`
	AmountMin       *float64   `json:"amount_min,omitempty"`
	AmountMax       *float64   `json:"amount_max,omitempty"`

	CurrentPrice *float64 `json:"current_price,omitempty"`
	EntryClose   *float64 `json:"entry_close,omitempty"`
	EstimatedPnL *float64 `json:"estimated_pnl,omitempty"`
}

// EventPageOut is one page of events under either pagination
// discipline.
type EventPageOut struct {
	Items      []EventOut `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
	Total      *int64     `json:"total,omitempty"`
}

// SignalOut is one ranked unusual-trade hit with its baseline context.
type SignalOut struct {
	EventID        int64      `json:"event_id"`
	TS             time.Time  `json:"ts"`
	EventDate      *time.Time `json:"event_date,omitempty"`
	Symbol         *string    `json:"symbol,omitempty"`
	MemberName     *string    `json:"member_name,omitempty"`
	MemberID       *string    `json:"member_id,omitempty"`
	Party          *string    `json:"party,omitempty"`
	Chamber        *string    `json:"chamber,omitempty"`
	TradeType      *string    `json:"trade_type,omitempty"`
	AmountMin      *float64   `json:"amount_min,omitempty"`
	AmountMax      *float64   `json:"amount_max,omitempty"`
	Source         string     `json:"source"`
	BaselineMedian float64    `json:"baseline_median"`
	BaselineCount  int        `json:"baseline_count"`
	Multiple       float64    `json:"multiple"`
}

// SignalDebugOut explains how the detector parameters were resolved.
type SignalDebugOut struct {
	Mode             string  `json:"mode"`
	AppliedPreset    string  `json:"applied_preset"`
	PresetInput      string  `json:"preset_input,omitempty"`
	RecentDays       int     `json:"recent_days"`
	BaselineDays     int     `json:"baseline_days"`
	MinBaselineCount int     `json:"min_baseline_count"`
	Multiple         float64 `json:"multiple"`
	MinAmount        float64 `json:"min_amount"`
	Clamped          bool    `json:"baseline_days_clamped"`
	Relaxed          bool    `json:"min_baseline_count_relaxed"`
	SymbolCount      int     `json:"baseline_symbols"`
	TotalHits        int     `json:"total_hits"`
}

// SignalPageOut is the unusual-signals response envelope.
type SignalPageOut struct {
	Signals []SignalOut     `json:"signals"`
	Debug   *SignalDebugOut `json:"debug,omitempty"`
}

// SuggestOut carries prefix suggestions.
type SuggestOut struct {
	Suggestions []string `json:"suggestions"`
}

// ErrorOut is the uniform rejection body.
type ErrorOut struct {
	Error string `json:"error"`
}

func eventOut(ev model.Event, ann *price.Annotation) EventOut {
	out := EventOut{
		ID:              ev.ID,
		EventType:       ev.EventType,
		CaptureTS:       ev.CaptureTS,
		EventDate:       ev.EventDate,
		Symbol:          ev.Symbol,
		Source:          ev.Source,
		MemberName:      ev.MemberName,
		MemberID:        ev.MemberID,
		Chamber:         ev.Chamber,
		Party:           ev.Party,
		TransactionType: ev.TransactionType,
		TradeType:       ev.TradeType,
		AmountMin:       ev.AmountMin,
		AmountMax:       ev.AmountMax,
	}
	if ann != nil {
		out.CurrentPrice = ann.CurrentPrice
		out.EntryClose = ann.EntryClose
		out.EstimatedPnL = ann.EstimatedPnL
	}
	return out
}

func signalOut(hit signal.Hit) SignalOut {
	ev := hit.Event
	return SignalOut{
		EventID:        ev.ID,
		TS:             ev.CaptureTS,
		EventDate:      ev.EventDate,
		Symbol:         ev.Symbol,
		MemberName:     ev.MemberName,
		MemberID:       ev.MemberID,
		Party:          ev.Party,
		Chamber:        ev.Chamber,
		TradeType:      ev.TradeType,
		AmountMin:      ev.AmountMin,
		AmountMax:      ev.AmountMax,
		Source:         ev.Source,
		BaselineMedian: hit.BaselineMedian,
		BaselineCount:  hit.BaselineCount,
		Multiple:       hit.Multiple,
	}
}

func signalDebugOut(res *signal.Result) *SignalDebugOut {
	r := res.Resolution
	return &SignalDebugOut{
		Mode:             r.Mode,
		AppliedPreset:    r.AppliedPreset,
		PresetInput:      r.PresetInput,
		RecentDays:       r.Params.RecentDays,
		BaselineDays:     r.Params.BaselineDays,
		MinBaselineCount: r.Params.MinBaselineCount,
		Multiple:         r.Params.Multiple,
		MinAmount:        r.Params.MinAmount,
		Clamped:          r.Clamped,
		Relaxed:          r.Relaxed,
		SymbolCount:      res.SymbolCount,
		TotalHits:        res.TotalHits,
	}
}
