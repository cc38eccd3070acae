// Package transform turns raw disclosure records into canonical tape
// events and provides the idempotent repair and rebuild maintenance
// jobs.
//
// Dedup correctness relies on the store enforcing uniqueness of
// (event_type, fingerprint) with insert-or-skip, not on locking here.
// Repair only ever fills nil columns, so it is safe to re-run and to
// race against reads. Rebuild is destructive for one event type and
// must not run concurrently with ingestion or repair for that type.
package transform
