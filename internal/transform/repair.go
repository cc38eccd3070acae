package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/model"
)

// RawLookup resolves originating raw records referenced from an
// event's stored attributes.
type RawLookup interface {
	CongressRecordByID(ctx context.Context, id int64) (*model.CongressRecord, error)
}

// RepairStore is the event-store surface the repair job needs.
type RepairStore interface {
	// IncompleteEvents returns events of the type with any nil
	// filter-relevant column, ascending by id, starting after afterID.
	IncompleteEvents(ctx context.Context, eventType string, afterID int64, limit int) ([]model.Event, error)
	// FillNullFields sets the given columns only where they are
	// currently NULL. Reports whether any column changed.
	FillNullFields(ctx context.Context, id int64, fields map[string]any) (bool, error)
}

// RepairResult carries the counters a repair run reports.
type RepairResult struct {
	RunID          uuid.UUID `json:"run_id"`
	Scanned        int       `json:"scanned"`
	Updated        int       `json:"updated"`
	Skipped        int       `json:"skipped"`
	MissingSource  int       `json:"missing_source"`
	DecodeFailures int       `json:"decode_failures"`
	DryRun         bool      `json:"dry_run"`
}

// RepairJob fills nil columns on existing events by re-resolving from
// the originating raw record or re-deriving from stored attributes.
// Monotonic: a non-nil column is never overwritten, so the job is safe
// to re-run and to race against reads.
type RepairJob struct {
	store  RepairStore
	raw    RawLookup
	logger *slog.Logger

	EventType string
	Limit     int // Max events to scan; 0 = unbounded
	BatchSize int
	DryRun    bool
}

// NewRepairJob creates a repair job for one event type.
func NewRepairJob(store RepairStore, raw RawLookup, eventType string, logger *slog.Logger) *RepairJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepairJob{
		store:     store,
		raw:       raw,
		logger:    logger,
		EventType: eventType,
		BatchSize: 500,
	}
}

// Run scans incomplete events in bounded batches. A store failure
// aborts the in-flight batch; previously applied fills remain.
func (j *RepairJob) Run(ctx context.Context) (RepairResult, error) {
	res := RepairResult{RunID: uuid.New(), DryRun: j.DryRun}
	afterID := int64(0)

	for {
		batch := j.BatchSize
		if j.Limit > 0 && j.Limit-res.Scanned < batch {
			batch = j.Limit - res.Scanned
		}
		if batch <= 0 {
			break
		}

		events, err := j.store.IncompleteEvents(ctx, j.EventType, afterID, batch)
		if err != nil {
			return res, fmt.Errorf("scan incomplete events: %w", err)
		}
		if len(events) == 0 {
			break
		}

		for i := range events {
			ev := &events[i]
			afterID = ev.ID
			res.Scanned++
			metrics.RepairScanned.Inc()

			fields, decodeOK := j.candidateFields(ctx, ev)
			if !decodeOK {
				res.DecodeFailures++
				metrics.DecodeFailures.Inc()
			}
			if len(fields) == 0 {
				if noSourceData(ev) {
					res.MissingSource++
				}
				res.Skipped++
				continue
			}
			if j.DryRun {
				res.Updated++
				continue
			}

			changed, err := j.store.FillNullFields(ctx, ev.ID, fields)
			if err != nil {
				return res, fmt.Errorf("fill event %d: %w", ev.ID, err)
			}
			if changed {
				res.Updated++
				metrics.RepairUpdated.Inc()
			} else {
				res.Skipped++
			}
		}
	}

	j.logger.Info("repair complete",
		"run_id", res.RunID,
		"event_type", j.EventType,
		"scanned", res.Scanned,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"missing_source", res.MissingSource,
		"decode_failures", res.DecodeFailures,
		"dry_run", res.DryRun,
	)
	return res, nil
}

// candidateFields computes the column values this event could be
// healed with, preferring the originating raw record over re-derived
// attribute values. Only columns currently nil on the event appear in
// the result. The bool reports whether attributes decoded cleanly.
func (j *RepairJob) candidateFields(ctx context.Context, ev *model.Event) (map[string]any, bool) {
	attrs := ev.RawAttributes
	decodeOK := true
	if attrs == nil {
		attrs = map[string]any{}
		decodeOK = false
	}

	var resolved *model.CongressRecord
	if j.raw != nil && ev.EventType == model.EventTypeCongressTrade {
		if txID, ok := attributeTransactionID(attrs); ok {
			rec, err := j.raw.CongressRecordByID(ctx, txID)
			if err != nil {
				j.logger.Warn("raw lookup failed", "event_id", ev.ID, "transaction_id", txID, "error", err)
			} else {
				resolved = rec
			}
		}
	}

	return repairCandidates(ev, resolved, attrs), decodeOK
}

// repairCandidates merges raw-record values over attribute-derived
// values and keeps only what would fill a currently-nil column. Pure;
// exercised directly by tests.
func repairCandidates(ev *model.Event, rec *model.CongressRecord, attrs map[string]any) map[string]any {
	pf := payloadFields(attrs)

	var (
		symbol, memberName, memberID, chamber, party, txType string
		amountMin, amountMax                                 *float64
		tradeDate, reportDate                                *time.Time
	)

	if rec != nil {
		if rec.Symbol != nil {
			symbol = *rec.Symbol
		}
		memberName = deref(rec.MemberName)
		memberID = rec.MemberKey
		chamber = deref(rec.Chamber)
		party = deref(rec.Party)
		txType = rec.TransactionType
		amountMin = rec.AmountMin
		amountMax = rec.AmountMax
		tradeDate = rec.TradeDate
		reportDate = rec.ReportDate
	}

	symbol = mergeValue(symbol, pf.symbol)
	memberName = mergeValue(memberName, pf.memberName)
	memberID = mergeValue(memberID, pf.memberID)
	chamber = mergeValue(chamber, pf.chamber)
	party = mergeValue(party, pf.party)
	txType = mergeValue(txType, pf.transactionType)
	if amountMin == nil {
		amountMin = pf.amountMin
	}
	if amountMax == nil {
		amountMax = pf.amountMax
	}
	if tradeDate == nil {
		tradeDate = pf.tradeDate
	}
	if reportDate == nil {
		reportDate = pf.reportDate
	}

	fields := map[string]any{}
	if ev.Symbol == nil && symbol != "" {
		if s := CanonicalSymbol(symbol); s != "" {
			fields["symbol"] = s
		}
	}
	if ev.MemberName == nil && memberName != "" {
		fields["member_name"] = memberName
	}
	if ev.MemberID == nil && memberID != "" {
		fields["member_id"] = memberID
	}
	if ev.Chamber == nil {
		if c := NormalizeChamber(chamber); c != "" {
			fields["chamber"] = c
		}
	}
	if ev.Party == nil && party != "" {
		fields["party"] = NormalizeParty(party)
	}
	if ev.TransactionType == nil && txType != "" {
		fields["transaction_type"] = txType
	}
	if ev.TradeType == nil {
		src := txType
		if src == "" {
			src = pf.tradeType
		}
		if t := normalizeTradeType(ev.EventType, src); t != "" {
			fields["trade_type"] = t
		}
	}
	if ev.AmountMin == nil && amountMin != nil {
		fields["amount_min"] = *amountMin
	}
	if ev.AmountMax == nil && amountMax != nil {
		fields["amount_max"] = *amountMax
	}
	if ev.EventDate == nil {
		if d := firstDate(tradeDate, reportDate); d != nil {
			fields["event_date"] = d.UTC()
		}
	}
	return fields
}

type extractedFields struct {
	symbol          string
	memberName      string
	memberID        string
	chamber         string
	party           string
	transactionType string
	tradeType       string
	amountMin       *float64
	amountMax       *float64
	tradeDate       *time.Time
	reportDate      *time.Time
}

// normalizeTradeType applies the tape's own trade vocabulary. Insider
// non-market types keep their verbatim lowercased value, the same as
// the transformer writes them.
func normalizeTradeType(eventType, raw string) string {
	if eventType == model.EventTypeInsiderTrade {
		if t := NormalizeInsiderTradeType(raw); t != "" {
			return t
		}
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return NormalizeCongressTradeType(raw)
}

// payloadFields re-derives filter columns from stored attributes using
// the same shape the transformer writes. Congress payloads date a
// trade with trade_date/report_date, insider payloads with
// transaction_date/filing_date; both spellings are read so one
// extractor serves either tape.
func payloadFields(attrs map[string]any) extractedFields {
	pf := extractedFields{
		symbol:          attrString(attrs, "symbol"),
		transactionType: attrString(attrs, "transaction_type"),
		tradeType:       attrString(attrs, "trade_type"),
		amountMin:       attrFloat(attrs, "amount_range_min"),
		amountMax:       attrFloat(attrs, "amount_range_max"),
		tradeDate:       firstDate(attrDate(attrs, "trade_date"), attrDate(attrs, "transaction_date")),
		reportDate:      firstDate(attrDate(attrs, "report_date"), attrDate(attrs, "filing_date")),
	}
	if member, ok := attrs["member"].(map[string]any); ok {
		pf.memberName = attrString(member, "name")
		pf.memberID = attrString(member, "bioguide_id")
		pf.chamber = attrString(member, "chamber")
		pf.party = attrString(member, "party")
	}
	return pf
}

func attributeTransactionID(attrs map[string]any) (int64, bool) {
	for _, key := range []string{"transaction_id", "transactionId"} {
		if id, ok := attrInt(attrs, key); ok {
			return id, true
		}
	}
	if tx, ok := attrs["transaction"].(map[string]any); ok {
		return attrInt(tx, "id")
	}
	return 0, false
}

func noSourceData(ev *model.Event) bool {
	return len(ev.RawAttributes) == 0
}

func mergeValue(current, incoming string) string {
	if strings.TrimSpace(current) == "" {
		return incoming
	}
	return current
}

func firstDate(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func attrFloat(attrs map[string]any, key string) *float64 {
	switch v := attrs[key].(type) {
	case float64:
		return &v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

func attrInt(attrs map[string]any, key string) (int64, bool) {
	switch v := attrs[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	case string:
		var i int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &i); err == nil {
			return i, true
		}
	}
	return 0, false
}

func attrDate(attrs map[string]any, key string) *time.Time {
	if v, ok := attrs[key].(string); ok {
		return ParseDate(v)
	}
	return nil
}
