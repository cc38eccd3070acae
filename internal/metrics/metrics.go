package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsInserted counts canonical events written, per event type.
	EventsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tape_events_inserted_total",
		Help: "Canonical events inserted into the store.",
	}, []string{"event_type"})

	// DedupSkips counts idempotent insert skips on fingerprint conflict.
	DedupSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_dedup_skips_total",
		Help: "Raw records skipped because an identical fingerprint already exists.",
	})

	// RecordsSkipped counts raw records that failed required-field resolution.
	RecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_records_skipped_total",
		Help: "Raw records dropped as unresolvable.",
	})

	// CoverageWarnings counts events stored without a resolvable symbol.
	CoverageWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_coverage_warnings_total",
		Help: "Events stored with unresolved fields such as a missing ticker.",
	})

	// RepairScanned and RepairUpdated track repair job progress.
	RepairScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_repair_scanned_total",
		Help: "Events scanned by repair jobs.",
	})
	RepairUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_repair_updated_total",
		Help: "Events healed by repair jobs.",
	})

	// DecodeFailures counts stored raw-attribute payloads that did not decode.
	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tape_attribute_decode_failures_total",
		Help: "Stored raw-attribute payloads treated as empty because they failed to decode.",
	})

	// RequestDuration observes API handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tape_http_request_duration_seconds",
		Help:    "API request duration by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	// QuoteLookups tracks vendor quote calls by result.
	QuoteLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tape_quote_lookups_total",
		Help: "Vendor quote lookups by outcome (hit, miss, error).",
	}, []string{"outcome"})
)
