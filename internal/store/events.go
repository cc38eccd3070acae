package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/model"
	"github.com/tapelabs/disclosure-tape/internal/query"
)

// EventStore persists canonical events.
type EventStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewEventStore(db *pgxpool.Pool, logger *slog.Logger) *EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{db: db, logger: logger}
}

// InsertEvent writes one event, skipping silently when the same
// (event_type, fingerprint) pair already exists. Reports whether a row
// landed.
func (s *EventStore) InsertEvent(ctx context.Context, ev *model.Event) (bool, error) {
	payload, err := json.Marshal(ev.RawAttributes)
	if err != nil {
		return false, fmt.Errorf("encode raw attributes: %w", err)
	}

	ct, err := s.db.Exec(ctx, `
		INSERT INTO events (event_type, capture_ts, event_date, symbol, source,
			member_name, member_id, chamber, party, transaction_type, trade_type,
			amount_min, amount_max, raw_attributes, dedupe_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (event_type, dedupe_fingerprint) DO NOTHING
	`, ev.EventType, ev.CaptureTS, ev.EventDate, ev.Symbol, ev.Source,
		ev.MemberName, ev.MemberID, ev.Chamber, ev.Party, ev.TransactionType, ev.TradeType,
		ev.AmountMin, ev.AmountMax, payload, ev.Fingerprint)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// ListEvents returns one page of events for a resolved filter. The
// page asks the builder for limit+1 rows; the caller trims the extra
// row after deriving the next cursor.
func (s *EventStore) ListEvents(ctx context.Context, r *query.Resolved, p query.Page) ([]model.Event, error) {
	sql, args := query.BuildList(r, p)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// CountEvents computes the exact total over the fully filtered set.
func (s *EventStore) CountEvents(ctx context.Context, r *query.Resolved) (int64, error) {
	sql, args := query.BuildCount(r)

	var total int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// BaselineAmounts returns disclosed amount ceilings partitioned by
// symbol over the trailing baseline window, congress tape only.
func (s *EventStore) BaselineAmounts(ctx context.Context, since time.Time) (map[string][]float64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT upper(symbol), amount_max FROM events
		WHERE event_type = $1
		  AND symbol IS NOT NULL
		  AND amount_max IS NOT NULL
		  AND coalesce(event_date, capture_ts) >= $2
	`, model.EventTypeCongressTrade, since)
	if err != nil {
		return nil, fmt.Errorf("baseline amounts: %w", err)
	}
	defer rows.Close()

	amounts := make(map[string][]float64)
	for rows.Next() {
		var symbol string
		var amount float64
		if err := rows.Scan(&symbol, &amount); err != nil {
			return nil, fmt.Errorf("scan baseline row: %w", err)
		}
		amounts[symbol] = append(amounts[symbol], amount)
	}
	return amounts, rows.Err()
}

// RecentCandidates returns congress events inside the recent window
// with a disclosed ceiling at or above minAmount.
func (s *EventStore) RecentCandidates(ctx context.Context, since time.Time, minAmount float64) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+query.EventColumns+` FROM events
		WHERE event_type = $1
		  AND amount_max IS NOT NULL
		  AND amount_max >= $2
		  AND coalesce(event_date, capture_ts) >= $3
	`, model.EventTypeCongressTrade, minAmount, since)
	if err != nil {
		return nil, fmt.Errorf("recent candidates: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// repairableColumns are the typed columns repair may fill, keyed by
// the field names the repair job emits.
var repairableColumns = map[string]bool{
	"event_date":       true,
	"symbol":           true,
	"member_name":      true,
	"member_id":        true,
	"chamber":          true,
	"party":            true,
	"trade_type":       true,
	"transaction_type": true,
	"amount_min":       true,
	"amount_max":       true,
}

// incompleteClause lists the columns a repair pass could still fill
// for one event type. Insider rows never carry member identity or
// dollar bounds (share counts live in the attributes), so those
// columns are complete as stored and must not keep the row in scan
// range forever.
func incompleteClause(eventType string) string {
	if eventType == model.EventTypeInsiderTrade {
		return `(event_date IS NULL OR symbol IS NULL
		       OR trade_type IS NULL OR transaction_type IS NULL)`
	}
	return `(event_date IS NULL OR symbol IS NULL OR member_name IS NULL
		       OR member_id IS NULL OR chamber IS NULL OR party IS NULL
		       OR trade_type IS NULL OR transaction_type IS NULL
		       OR amount_min IS NULL OR amount_max IS NULL)`
}

// IncompleteEvents pages through events of the type with any NULL
// repairable column, ascending by id.
func (s *EventStore) IncompleteEvents(ctx context.Context, eventType string, afterID int64, limit int) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+query.EventColumns+` FROM events
		WHERE event_type = $1 AND id > $2
		  AND `+incompleteClause(eventType)+`
		ORDER BY id
		LIMIT $3
	`, eventType, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("incomplete events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// FillNullFields sets the given columns only where they are currently
// NULL. Reports whether the row was touched.
func (s *EventStore) FillNullFields(ctx context.Context, id int64, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if !repairableColumns[name] {
			return false, fmt.Errorf("column %q is not repairable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	guards := make([]string, 0, len(names))
	args := []any{id}
	for _, name := range names {
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s = coalesce(%s, $%d)", name, name, len(args)))
		guards = append(guards, name+" IS NULL")
	}

	sql := fmt.Sprintf("UPDATE events SET %s WHERE id = $1 AND (%s)",
		strings.Join(sets, ", "), strings.Join(guards, " OR "))

	ct, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("fill null fields: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeleteEventsByType removes every event of one type ahead of a
// rebuild.
func (s *EventStore) DeleteEventsByType(ctx context.Context, eventType string) (int64, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM events WHERE event_type = $1`, eventType)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return ct.RowsAffected(), nil
}

// SuggestSymbols returns distinct canonical symbols matching a prefix,
// optionally scoped to one tape.
func (s *EventStore) SuggestSymbols(ctx context.Context, prefix, eventType string, limit int) ([]string, error) {
	sql := `
		SELECT DISTINCT upper(symbol) FROM events
		WHERE symbol IS NOT NULL AND upper(symbol) LIKE $1`
	args := []any{strings.ToUpper(strings.TrimSpace(prefix)) + "%"}
	if eventType != "" {
		args = append(args, eventType)
		sql += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY 1 LIMIT $%d", len(args))

	return s.queryStrings(ctx, sql, args...)
}

// SuggestMembers returns distinct congress member names matching a
// case-insensitive prefix.
func (s *EventStore) SuggestMembers(ctx context.Context, prefix string, limit int) ([]string, error) {
	return s.queryStrings(ctx, `
		SELECT DISTINCT member_name FROM events
		WHERE event_type = $1 AND member_name IS NOT NULL AND member_name ILIKE $2
		ORDER BY 1
		LIMIT $3
	`, model.EventTypeCongressTrade, strings.TrimSpace(prefix)+"%", limit)
}

func (s *EventStore) queryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// scanEvents reads rows in the EventColumns order. Corrupt stored
// payloads decode to a nil attribute map so downstream counters can
// tell them from genuinely empty ones.
func (s *EventStore) scanEvents(rows pgx.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.CaptureTS, &ev.EventDate,
			&ev.Symbol, &ev.Source, &ev.MemberName, &ev.MemberID, &ev.Chamber,
			&ev.Party, &ev.TransactionType, &ev.TradeType,
			&ev.AmountMin, &ev.AmountMax, &payload, &ev.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		decoded := model.DecodeAttributes(payload)
		if decoded.Status == model.DecodeCorrupt {
			metrics.DecodeFailures.Inc()
			s.logger.Warn("corrupt raw attributes", "event_id", ev.ID)
			ev.RawAttributes = nil
		} else {
			ev.RawAttributes = decoded.Attrs
		}

		events = append(events, ev)
	}
	return events, rows.Err()
}
