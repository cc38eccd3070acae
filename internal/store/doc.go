// Package store implements the Postgres persistence layer: the
// canonical events table and the raw disclosure tables it is derived
// from.
//
// Deduplication relies on a unique index over (event_type,
// dedupe_fingerprint); inserts use ON CONFLICT DO NOTHING and report
// whether a row landed. Repair writes only ever fill NULL columns, so
// they are safe to race against readers.
package store
