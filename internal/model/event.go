package model

import "time"

// Event types carried on the tape.
const (
	EventTypeCongressTrade = "congress_trade"
	EventTypeInsiderTrade  = "insider_trade"
)

// Tape scopes for queries.
const (
	TapeCongress = "congress"
	TapeInsider  = "insider"
	TapeAll      = "all"
)

// Chamber values. Anything else normalizes to null.
const (
	ChamberHouse  = "house"
	ChamberSenate = "senate"
)

// Party values after normalization.
const (
	PartyDemocrat    = "democrat"
	PartyRepublican  = "republican"
	PartyIndependent = "independent"
	PartyOther       = "other"
	PartyUnknown     = "unknown"
)

// Canonical congress trade types.
const (
	TradePurchase = "purchase"
	TradeSale     = "sale"
	TradeExchange = "exchange"
	TradeReceived = "received"
	TradeOther    = "other"
)

// Event is the canonical unit of the tape. Typed columns are a
// denormalized index over RawAttributes, which stays authoritative for
// anything not promoted to a column. Events are immutable from the
// read path's point of view; repair only ever fills nil fields.
type Event struct {
	ID        int64      // Store-assigned, monotonically increasing
	EventType string     // congress_trade | insider_trade
	CaptureTS time.Time  // When the event was observed; always set
	EventDate *time.Time // Trade date, else filing date; nil only before repair

	Symbol *string // Canonical ticker; nil when no resolvable security
	Source string  // Provenance tag (chamber or vendor)

	// Filer identity. Populated for congress_trade, nil for insider_trade.
	MemberName *string
	MemberID   *string // Bioguide-style stable member key
	Chamber    *string
	Party      *string

	TransactionType *string // Verbatim source classification
	TradeType       *string // Tape-specific normalized classification

	AmountMin *float64
	AmountMax *float64

	RawAttributes map[string]any // Full-fidelity source record
	Fingerprint   string         // Unique per (EventType, Fingerprint)
}

// SortTS is the ordering key timestamp: event_date when present,
// capture time otherwise. Matches coalesce(event_date, capture_ts).
func (e *Event) SortTS() time.Time {
	if e.EventDate != nil {
		return *e.EventDate
	}
	return e.CaptureTS
}

// MarketTradeType reports whether the event's normalized trade type is
// in the canonical purchase/sale vocabulary. Insider rows outside it
// (gifts, awards, option exercises) stay stored but are hidden from
// default listings.
func (e *Event) MarketTradeType() bool {
	if e.TradeType == nil {
		return false
	}
	return *e.TradeType == TradePurchase || *e.TradeType == TradeSale
}

// BaselineStat is a derived per-symbol statistic over a trailing
// window. Never persisted.
type BaselineStat struct {
	Symbol string
	Median float64 // Median of amount_max over the window
	Count  int     // Sample count behind the median
}
