package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// WhaleFloor is the minimum amount the whale shortcut forces.
const WhaleFloor = 250_000

// Listing limits.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ValidationError rejects structurally invalid filter input with a
// caller-facing reason. The API layer maps it to a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Filter is the raw, independently combinable predicate set of a
// listing request. Zero values mean "not filtered".
type Filter struct {
	Symbols []string // matched case-insensitively against canonical symbol
	Types   []string // explicit event-type set; overrides tape and inference
	Tape    string   // congress | insider | all

	Since      *time.Time
	RecentDays int

	// Congress-only predicates.
	Member   string // free-text name substring
	MemberID string // exact, case-insensitive
	Chamber  string
	Party    string

	TradeType string // canonical or alias (p-purchase, s-sale)

	// Insider-only predicates.
	TransactionType string // verbatim source classification, exact
	Role            string // substring against raw attributes
	Ownership       string // substring against raw attributes

	// Asymmetric range: MinAmount against each row's upper bound,
	// MaxAmount against its lower bound, so a "$10k+" query matches
	// any row whose disclosed range could include $10k.
	MinAmount *float64
	MaxAmount *float64
	Whale     bool
}

// Scope is the tape scope a filter resolves to.
type Scope string

const (
	ScopeAll      Scope = model.TapeAll
	ScopeCongress Scope = model.TapeCongress
	ScopeInsider  Scope = model.TapeInsider
)

// Resolved is a validated, normalized filter ready for SQL building.
type Resolved struct {
	Filter
	Scope       Scope
	RecentSince *time.Time

	// hideNonMarketInsider applies the default visibility rule: hide
	// insider rows whose trade_type is outside {purchase, sale}. Off
	// only when the caller filters on raw transaction_type, which
	// explicitly widens the view to stored values.
	HideNonMarketInsider bool
}

var validTapes = map[string]bool{model.TapeCongress: true, model.TapeInsider: true, model.TapeAll: true}

var validEventTypes = map[string]bool{
	model.EventTypeCongressTrade: true,
	model.EventTypeInsiderTrade:  true,
}

var tradeTypeAliases = map[string][]string{
	"purchase":   {"purchase", "p-purchase"},
	"sale":       {"sale", "s-sale"},
	"p-purchase": {"p-purchase"},
	"s-sale":     {"s-sale"},
}

// Resolve validates the filter, normalizes enum values, applies the
// whale floor, and infers the tape scope. now supplies the reference
// time for RecentDays.
func (f Filter) Resolve(now time.Time) (*Resolved, error) {
	r := &Resolved{Filter: f}

	for i, s := range r.Symbols {
		r.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	for i, t := range r.Types {
		v := strings.ToLower(strings.TrimSpace(t))
		if !validEventTypes[v] {
			return nil, &ValidationError{Field: "types", Reason: fmt.Sprintf("unknown event type %q", t)}
		}
		r.Types[i] = v
	}

	if r.Tape != "" {
		v := strings.ToLower(strings.TrimSpace(r.Tape))
		if !validTapes[v] {
			return nil, &ValidationError{Field: "tape", Reason: "allowed values: congress, insider, all"}
		}
		r.Tape = v
	}

	if r.Chamber != "" {
		v := strings.ToLower(strings.TrimSpace(r.Chamber))
		if v != model.ChamberHouse && v != model.ChamberSenate {
			return nil, &ValidationError{Field: "chamber", Reason: "allowed values: house, senate"}
		}
		r.Chamber = v
	}

	if r.Party != "" {
		v := strings.ToLower(strings.TrimSpace(r.Party))
		switch v {
		case model.PartyDemocrat, model.PartyRepublican, model.PartyIndependent, model.PartyOther:
			r.Party = v
		default:
			return nil, &ValidationError{Field: "party", Reason: "allowed values: democrat, republican, independent, other"}
		}
	}

	if r.TradeType != "" {
		v := strings.ToLower(strings.TrimSpace(r.TradeType))
		if _, ok := tradeTypeAliases[v]; !ok {
			return nil, &ValidationError{Field: "trade_type", Reason: "allowed values: purchase, sale, p-purchase, s-sale"}
		}
		r.TradeType = v
	}

	if r.MinAmount != nil && *r.MinAmount < 0 {
		return nil, &ValidationError{Field: "min_amount", Reason: "must be non-negative"}
	}
	if r.MaxAmount != nil && *r.MaxAmount < 0 {
		return nil, &ValidationError{Field: "max_amount", Reason: "must be non-negative"}
	}
	if r.RecentDays < 0 {
		return nil, &ValidationError{Field: "recent_days", Reason: "must be positive"}
	}

	if r.Whale {
		floor := float64(WhaleFloor)
		if r.MinAmount == nil || *r.MinAmount < floor {
			r.MinAmount = &floor
		}
	}

	if r.RecentDays > 0 {
		since := now.UTC().AddDate(0, 0, -r.RecentDays)
		r.RecentSince = &since
	}

	r.Scope = r.inferScope()
	r.HideNonMarketInsider = r.TransactionType == ""
	return r, nil
}

// inferScope narrows the tape when only one side's filters are in
// play. An explicit event-type set or tape parameter always wins.
func (f Filter) inferScope() Scope {
	congressOnly := f.Member != "" || f.MemberID != "" || f.Chamber != "" || f.Party != ""
	insiderOnly := f.TransactionType != "" || f.Role != "" || f.Ownership != ""

	if len(f.Types) == 1 {
		switch f.Types[0] {
		case model.EventTypeCongressTrade:
			return ScopeCongress
		case model.EventTypeInsiderTrade:
			return ScopeInsider
		}
	}
	if len(f.Types) > 1 {
		return ScopeAll
	}

	switch f.Tape {
	case model.TapeCongress:
		return ScopeCongress
	case model.TapeInsider:
		return ScopeInsider
	case model.TapeAll:
		return ScopeAll
	}

	if congressOnly && !insiderOnly {
		return ScopeCongress
	}
	if insiderOnly && !congressOnly {
		return ScopeInsider
	}
	return ScopeAll
}

// CanonicalTradeTypes returns the congress-side canonical value and
// the insider-side stored values a trade_type filter matches.
func CanonicalTradeTypes(tradeType string) (congress string, insider []string) {
	insider = tradeTypeAliases[tradeType]
	if tradeType == "sale" || tradeType == "s-sale" {
		return "sale", insider
	}
	return "purchase", insider
}
