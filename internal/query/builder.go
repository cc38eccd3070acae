package query

import (
	"fmt"
	"strings"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// sortExpr is the shared ordering key for every read path.
const sortExpr = "coalesce(event_date, capture_ts)"

// EventColumns is the canonical select list; scan code depends on this
// exact order.
const EventColumns = "id, event_type, capture_ts, event_date, symbol, source, " +
	"member_name, member_id, chamber, party, transaction_type, trade_type, " +
	"amount_min, amount_max, raw_attributes, dedupe_fingerprint"

// Page addresses one chunk of results under either discipline. Cursor
// and Offset are mutually exclusive; Cursor wins when both are set.
type Page struct {
	Limit  int
	Cursor *Cursor
	Offset int
}

// BuildList renders the listing SELECT for a resolved filter. The
// caller asks for limit+1 rows to detect whether a next page exists.
func BuildList(r *Resolved, p Page) (string, []any) {
	where, args := whereClauses(r)

	if p.Cursor != nil {
		args = append(args, p.Cursor.TS, p.Cursor.ID)
		where = append(where, fmt.Sprintf(
			"(%s < $%d OR (%s = $%d AND id < $%d))",
			sortExpr, len(args)-1, sortExpr, len(args)-1, len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + EventColumns + " FROM events")
	writeWhere(&b, where)
	b.WriteString(fmt.Sprintf(" ORDER BY %s DESC, id DESC", sortExpr))

	args = append(args, p.Limit+1)
	b.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	if p.Cursor == nil && p.Offset > 0 {
		args = append(args, p.Offset)
		b.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	return b.String(), args
}

// BuildCount renders the exact total-count query over the fully
// filtered, pre-limit set. Shares whereClauses with BuildList so the
// two can never drift.
func BuildCount(r *Resolved) (string, []any) {
	where, args := whereClauses(r)
	var b strings.Builder
	b.WriteString("SELECT count(*) FROM events")
	writeWhere(&b, where)
	return b.String(), args
}

func writeWhere(b *strings.Builder, where []string) {
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
}

// whereClauses renders every active predicate of a resolved filter as
// positional-parameter SQL.
func whereClauses(r *Resolved) ([]string, []any) {
	var where []string
	var args []any

	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if len(r.Symbols) > 0 {
		where = append(where, fmt.Sprintf("upper(symbol) = ANY($%d)", arg(r.Symbols)))
	}

	if len(r.Types) > 0 {
		where = append(where, fmt.Sprintf("event_type = ANY($%d)", arg(r.Types)))
	} else {
		switch r.Scope {
		case ScopeCongress:
			where = append(where, fmt.Sprintf("event_type = $%d", arg(model.EventTypeCongressTrade)))
		case ScopeInsider:
			where = append(where, fmt.Sprintf("event_type = $%d", arg(model.EventTypeInsiderTrade)))
		}
	}

	if r.Since != nil {
		where = append(where, fmt.Sprintf("%s >= $%d", sortExpr, arg(r.Since.UTC())))
	}
	if r.RecentSince != nil {
		where = append(where, fmt.Sprintf("%s >= $%d", sortExpr, arg(r.RecentSince.UTC())))
	}

	if r.Member != "" {
		where = append(where, fmt.Sprintf("member_name ILIKE $%d", arg("%"+strings.TrimSpace(r.Member)+"%")))
	}
	if r.MemberID != "" {
		where = append(where, fmt.Sprintf("lower(member_id) = $%d", arg(strings.ToLower(strings.TrimSpace(r.MemberID)))))
	}
	if r.Chamber != "" {
		where = append(where, fmt.Sprintf("lower(chamber) = $%d", arg(r.Chamber)))
	}
	if r.Party != "" {
		if r.Party == model.PartyOther {
			// "other" also matches rows never attributed to a party.
			where = append(where, fmt.Sprintf("(party IS NULL OR lower(party) = $%d)", arg(r.Party)))
		} else {
			where = append(where, fmt.Sprintf("lower(party) = $%d", arg(r.Party)))
		}
	}

	if r.TradeType != "" {
		where = append(where, tradeTypeClause(r, arg))
	}
	if r.HideNonMarketInsider {
		where = append(where, fmt.Sprintf(
			"(event_type <> $%d OR lower(trade_type) IN ('purchase', 'sale'))",
			arg(model.EventTypeInsiderTrade)))
	}

	if r.TransactionType != "" {
		where = append(where, fmt.Sprintf("lower(transaction_type) = $%d", arg(strings.ToLower(strings.TrimSpace(r.TransactionType)))))
	}
	if r.Role != "" {
		where = append(where, fmt.Sprintf("lower(raw_attributes::text) LIKE $%d", arg(`%"role"%`+strings.ToLower(strings.TrimSpace(r.Role))+"%")))
	}
	if r.Ownership != "" {
		where = append(where, fmt.Sprintf("lower(raw_attributes::text) LIKE $%d", arg(`%"ownership"%`+strings.ToLower(strings.TrimSpace(r.Ownership))+"%")))
	}

	// Asymmetric on purpose: a range filter matches any overlapping
	// disclosed range.
	if r.MinAmount != nil {
		where = append(where, fmt.Sprintf("amount_max >= $%d", arg(*r.MinAmount)))
	}
	if r.MaxAmount != nil {
		where = append(where, fmt.Sprintf("amount_min <= $%d", arg(*r.MaxAmount)))
	}

	return where, args
}

// tradeTypeClause collapses aliases and applies the per-tape trade
// type vocabulary: canonical purchase/sale on the congress side,
// stored alias values on the insider side.
func tradeTypeClause(r *Resolved, arg func(any) int) string {
	canonical, insiderValues := CanonicalTradeTypes(r.TradeType)

	switch r.Scope {
	case ScopeCongress:
		return fmt.Sprintf("lower(trade_type) = $%d", arg(canonical))
	case ScopeInsider:
		return fmt.Sprintf("lower(trade_type) = ANY($%d)", arg(insiderValues))
	default:
		return fmt.Sprintf(
			"((event_type = $%d AND lower(trade_type) = $%d) OR (event_type = $%d AND lower(trade_type) = ANY($%d)))",
			arg(model.EventTypeCongressTrade), arg(canonical),
			arg(model.EventTypeInsiderTrade), arg(insiderValues))
	}
}
