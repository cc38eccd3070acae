package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/model"
)

// Outcome classifies what happened to one raw record. Every record is
// accounted for as inserted, already-present, or skipped; dedup skips
// are an expected branch, not an error.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeAlreadyPresent
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadyPresent:
		return "already_present"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// EventSink accepts canonical events. InsertEvent reports false when
// an event with the same (event_type, fingerprint) already exists.
type EventSink interface {
	InsertEvent(ctx context.Context, ev *model.Event) (bool, error)
}

// Transformer converts raw disclosure records into canonical events.
type Transformer struct {
	sink   EventSink
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Transformer writing to sink.
func New(sink EventSink, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{sink: sink, logger: logger, now: time.Now}
}

// CongressEvent builds the canonical event for one congress record.
// Returns nil when the record fails required-field resolution entirely
// (no filer key and no transaction type).
func (t *Transformer) CongressEvent(rec *model.CongressRecord) *model.Event {
	if rec.MemberKey == "" && rec.TransactionType == "" {
		return nil
	}

	capture := t.now().UTC()
	eventDate := EventDate(rec.TradeDate, rec.ReportDate, capture)

	var symbol *string
	if rec.Symbol != nil {
		if s := CanonicalSymbol(*rec.Symbol); s != "" {
			symbol = &s
		}
	}

	source := rec.Source
	if source == "" && rec.Chamber != nil {
		source = *rec.Chamber
	}
	if source == "" {
		source = "unknown"
	}

	party := NormalizeParty(deref(rec.Party))
	chamber := NormalizeChamber(deref(rec.Chamber))
	tradeType := NormalizeCongressTradeType(rec.TransactionType)

	// Content-derived tuple only: internal row ids change across
	// re-ingestion, the disclosed fields do not.
	attrs := congressAttributes(rec, symbol, source)
	fp := Fingerprint(map[string]any{
		"source":           source,
		"member_id":        rec.MemberKey,
		"symbol":           ptrOrNil(symbol),
		"trade_date":       dateOrNil(rec.TradeDate),
		"transaction_type": rec.TransactionType,
		"amount_min":       floatOrNil(rec.AmountMin),
		"amount_max":       floatOrNil(rec.AmountMax),
	})

	ev := &model.Event{
		EventType:       model.EventTypeCongressTrade,
		CaptureTS:       capture,
		EventDate:       &eventDate,
		Symbol:          symbol,
		Source:          source,
		MemberName:      rec.MemberName,
		MemberID:        strPtrIfSet(rec.MemberKey),
		TransactionType: strPtrIfSet(rec.TransactionType),
		TradeType:       strPtrIfSet(tradeType),
		AmountMin:       rec.AmountMin,
		AmountMax:       rec.AmountMax,
		RawAttributes:   attrs,
		Fingerprint:     fp,
	}
	if chamber != "" {
		ev.Chamber = &chamber
	}
	ev.Party = &party
	return ev
}

// InsiderEvent builds the canonical event for one insider record.
// Returns nil when the record carries no vendor-stable identifier.
func (t *Transformer) InsiderEvent(rec *model.InsiderRecord) *model.Event {
	if rec.ExternalID == "" {
		return nil
	}

	capture := t.now().UTC()
	eventDate := EventDate(rec.TransactionDate, rec.FilingDate, capture)

	var symbol *string
	if rec.Symbol != nil {
		if s := CanonicalSymbol(*rec.Symbol); s != "" {
			symbol = &s
		}
	}

	source := rec.Source
	if source == "" {
		source = "unknown"
	}

	// Non-market types keep their verbatim (lowercased) value so they
	// stay retrievable; only purchase/sale enter the canonical vocab.
	rawType := deref(rec.TransactionType)
	tradeType := NormalizeInsiderTradeType(rawType)
	if tradeType == "" {
		tradeType = strings.ToLower(strings.TrimSpace(rawType))
	}

	fp := Fingerprint(map[string]any{
		"source":           source,
		"external_id":      rec.ExternalID,
		"symbol":           ptrOrNil(symbol),
		"trade_date":       dateOrNil(rec.TransactionDate),
		"filing_date":      dateOrNil(rec.FilingDate),
		"transaction_type": rawType,
		"amount_min":       nil,
		"amount_max":       nil,
	})

	ev := &model.Event{
		EventType:       model.EventTypeInsiderTrade,
		CaptureTS:       capture,
		EventDate:       &eventDate,
		Symbol:          symbol,
		Source:          source,
		TransactionType: rec.TransactionType,
		TradeType:       strPtrIfSet(tradeType),
		RawAttributes:   insiderAttributes(rec, symbol, source),
		Fingerprint:     fp,
	}
	return ev
}

// TransformCongress converts and stores one congress record.
func (t *Transformer) TransformCongress(ctx context.Context, rec *model.CongressRecord) (Outcome, error) {
	ev := t.CongressEvent(rec)
	return t.write(ctx, ev, rec.ID)
}

// TransformInsider converts and stores one insider record.
func (t *Transformer) TransformInsider(ctx context.Context, rec *model.InsiderRecord) (Outcome, error) {
	ev := t.InsiderEvent(rec)
	return t.write(ctx, ev, rec.ID)
}

func (t *Transformer) write(ctx context.Context, ev *model.Event, rawID int64) (Outcome, error) {
	if ev == nil {
		metrics.RecordsSkipped.Inc()
		t.logger.Warn("raw record unresolvable, skipping", "raw_id", rawID)
		return OutcomeSkipped, nil
	}
	if ev.Symbol == nil {
		// Coverage gap, not a drop: the event still lands with a nil
		// ticker so ingestion remains auditable.
		metrics.CoverageWarnings.Inc()
	}

	inserted, err := t.sink.InsertEvent(ctx, ev)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("insert event (raw %d): %w", rawID, err)
	}
	if !inserted {
		metrics.DedupSkips.Inc()
		return OutcomeAlreadyPresent, nil
	}
	metrics.EventsInserted.WithLabelValues(ev.EventType).Inc()
	return OutcomeInserted, nil
}

func congressAttributes(rec *model.CongressRecord, symbol *string, source string) map[string]any {
	return map[string]any{
		"transaction_id":   rec.ID,
		"filing_id":        rec.FilingID,
		"security_id":      int64OrNil(rec.SecurityID),
		"owner_type":       rec.OwnerType,
		"transaction_type": rec.TransactionType,
		"trade_date":       dateOrNil(rec.TradeDate),
		"report_date":      dateOrNil(rec.ReportDate),
		"amount_range_min": floatOrNil(rec.AmountMin),
		"amount_range_max": floatOrNil(rec.AmountMax),
		"description":      ptrOrNil(rec.Description),
		"symbol":           ptrOrNil(symbol),
		"security_name":    ptrOrNil(rec.SecurityName),
		"asset_class":      ptrOrNil(rec.AssetClass),
		"sector":           ptrOrNil(rec.Sector),
		"member": map[string]any{
			"bioguide_id": rec.MemberKey,
			"name":        deref(rec.MemberName),
			"chamber":     ptrOrNil(rec.Chamber),
			"party":       ptrOrNil(rec.Party),
			"state":       ptrOrNil(rec.State),
		},
		"source": source,
	}
}

func insiderAttributes(rec *model.InsiderRecord, symbol *string, source string) map[string]any {
	return map[string]any{
		"external_id":      rec.ExternalID,
		"symbol":           ptrOrNil(symbol),
		"insider_name":     ptrOrNil(rec.InsiderName),
		"reporting_cik":    ptrOrNil(rec.ReportingCIK),
		"transaction_type": ptrOrNil(rec.TransactionType),
		"transaction_date": dateOrNil(rec.TransactionDate),
		"filing_date":      dateOrNil(rec.FilingDate),
		"role":             ptrOrNil(rec.Role),
		"ownership":        ptrOrNil(rec.Ownership),
		"shares":           floatOrNil(rec.Shares),
		"price":            floatOrNil(rec.Price),
		"source":           source,
		"raw":              rec.Payload,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtrIfSet(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func int64OrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}
