// Package query builds the single read path shared by plain event
// listings and the detector's candidate pool: filter predicates,
// tape-scope inference, and two pagination disciplines (keyset cursor
// and offset) over the same ordering.
//
// Ordering is always (coalesce(event_date, capture_ts) DESC, id DESC).
// A cursor is the "<RFC3339Nano ts>|<id>" of the last row of the
// previous page; the next page selects rows strictly below that pair,
// so concurrent inserts can never skip or repeat a row that existed at
// cursor-issue time.
package query
