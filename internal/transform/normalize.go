package transform

import (
	"strings"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// CanonicalSymbol uppercases a raw ticker and strips leading '$'
// artifacts. Returns "" when nothing resolvable remains.
func CanonicalSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	for strings.HasPrefix(symbol, "$") {
		symbol = strings.TrimSpace(symbol[1:])
	}
	return symbol
}

var knownParties = map[string]bool{
	model.PartyDemocrat:    true,
	model.PartyRepublican:  true,
	model.PartyIndependent: true,
	model.PartyOther:       true,
	model.PartyUnknown:     true,
}

// NormalizeParty maps free-form party strings onto the fixed party
// vocabulary. Substring matches win over literals; empty input is
// "unknown"; anything unrecognized is "other".
func NormalizeParty(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return model.PartyUnknown
	}
	switch {
	case strings.Contains(value, "demo"):
		return model.PartyDemocrat
	case strings.Contains(value, "repu"), strings.Contains(value, "gop"):
		return model.PartyRepublican
	case strings.Contains(value, "indep"):
		return model.PartyIndependent
	}
	if knownParties[value] {
		return value
	}
	return model.PartyOther
}

// NormalizeChamber keeps only exact house/senate values. Everything
// else is unresolvable and returns "".
func NormalizeChamber(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == model.ChamberHouse || value == model.ChamberSenate {
		return value
	}
	return ""
}

var congressTradeTypes = map[string]bool{
	model.TradePurchase: true,
	model.TradeSale:     true,
	model.TradeExchange: true,
	model.TradeReceived: true,
	model.TradeOther:    true,
}

// NormalizeCongressTradeType maps a congress transaction type onto the
// canonical vocabulary, collapsing common synonyms. Returns "" only
// for empty input.
func NormalizeCongressTradeType(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	if congressTradeTypes[value] {
		return value
	}
	switch {
	case strings.Contains(value, "purchase"), strings.Contains(value, "buy"), strings.Contains(value, "acquisition"):
		return model.TradePurchase
	case strings.Contains(value, "sale"), strings.Contains(value, "sell"), strings.Contains(value, "dispose"):
		return model.TradeSale
	case strings.Contains(value, "exchange"):
		return model.TradeExchange
	case strings.Contains(value, "receive"), strings.Contains(value, "gift"), strings.Contains(value, "award"):
		return model.TradeReceived
	}
	return model.TradeOther
}

// NormalizeInsiderTradeType derives a canonical purchase/sale from an
// insider transaction code or string. Returns "" for non-market types
// (gifts, awards, option exercises); those keep their verbatim value
// in trade_type but sit outside the purchase/sale vocabulary.
func NormalizeInsiderTradeType(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "s-") || strings.HasPrefix(value, "sale") || strings.Contains(value, "sale") {
		return model.TradeSale
	}
	if strings.HasPrefix(value, "p-") || strings.HasPrefix(value, "purchase") || strings.Contains(value, "purchase") {
		return model.TradePurchase
	}
	// Single-letter SEC form 4 codes.
	switch value {
	case "s":
		return model.TradeSale
	case "p":
		return model.TradePurchase
	}
	return ""
}

// EventDate picks the semantically significant date: trade date, else
// report/filing date, else the capture time. Date inputs are already
// UTC midnight by the time they reach here.
func EventDate(tradeDate, reportDate *time.Time, capture time.Time) time.Time {
	if tradeDate != nil {
		return tradeDate.UTC()
	}
	if reportDate != nil {
		return reportDate.UTC()
	}
	return capture.UTC()
}

// ParseDate accepts YYYY-MM-DD or an ISO datetime (with or without a
// trailing Z) and normalizes to UTC midnight of that date. Returns nil
// for anything unparseable.
func ParseDate(raw string) *time.Time {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	cleaned = strings.TrimSuffix(cleaned, "Z")

	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	if len(cleaned) >= 10 {
		if parsed, err := time.Parse("2006-01-02", cleaned[:10]); err == nil {
			day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}
