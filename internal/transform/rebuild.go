package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// RawSource iterates raw disclosure records in stable ascending-id
// order for a full rebuild.
type RawSource interface {
	CongressRecords(ctx context.Context, afterID int64, limit int) ([]model.CongressRecord, error)
	InsiderRecords(ctx context.Context, afterID int64, limit int) ([]model.InsiderRecord, error)
}

// RebuildStore is the event-store surface the rebuild job needs.
type RebuildStore interface {
	EventSink
	DeleteEventsByType(ctx context.Context, eventType string) (int64, error)
}

// RebuildResult carries the counters a rebuild run reports.
type RebuildResult struct {
	RunID          uuid.UUID `json:"run_id"`
	Deleted        int64     `json:"deleted"`
	Scanned        int       `json:"scanned"`
	Inserted       int       `json:"inserted"`
	AlreadyPresent int       `json:"already_present"`
	Skipped        int       `json:"skipped"`
}

// RebuildJob deletes every event of one type and re-runs the full
// transform over that type's raw records. Events of other types are
// untouched. Destructive: must not run concurrently with repair or
// ingestion for the same type.
type RebuildJob struct {
	store       RebuildStore
	raw         RawSource
	transformer *Transformer
	logger      *slog.Logger

	EventType string
	BatchSize int
	Limit     int // Max raw records to scan; 0 = unbounded
}

// NewRebuildJob creates a rebuild job for one event type.
func NewRebuildJob(store RebuildStore, raw RawSource, eventType string, logger *slog.Logger) *RebuildJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildJob{
		store:       store,
		raw:         raw,
		transformer: New(store, logger),
		EventType:   eventType,
		BatchSize:   500,
		logger:      logger,
	}
}

// Run performs the delete-then-recreate pass. Raw records are consumed
// in bounded batches so partial progress survives an infrastructure
// failure; the dedup rule still applies (it degenerates to
// always-insert against the emptied type).
func (j *RebuildJob) Run(ctx context.Context) (RebuildResult, error) {
	res := RebuildResult{RunID: uuid.New()}

	deleted, err := j.store.DeleteEventsByType(ctx, j.EventType)
	if err != nil {
		return res, fmt.Errorf("delete %s events: %w", j.EventType, err)
	}
	res.Deleted = deleted
	j.logger.Info("rebuild deleted existing events",
		"run_id", res.RunID, "event_type", j.EventType, "deleted", deleted)

	switch j.EventType {
	case model.EventTypeCongressTrade:
		err = j.rebuildCongress(ctx, &res)
	case model.EventTypeInsiderTrade:
		err = j.rebuildInsider(ctx, &res)
	default:
		return res, fmt.Errorf("unknown event type %q", j.EventType)
	}
	if err != nil {
		return res, err
	}

	j.logger.Info("rebuild complete",
		"run_id", res.RunID,
		"event_type", j.EventType,
		"scanned", res.Scanned,
		"inserted", res.Inserted,
		"already_present", res.AlreadyPresent,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (j *RebuildJob) rebuildCongress(ctx context.Context, res *RebuildResult) error {
	afterID := int64(0)
	for {
		batch := j.nextBatch(res.Scanned)
		if batch <= 0 {
			return nil
		}
		records, err := j.raw.CongressRecords(ctx, afterID, batch)
		if err != nil {
			return fmt.Errorf("scan congress records after %d: %w", afterID, err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			rec := &records[i]
			afterID = rec.ID
			res.Scanned++
			outcome, err := j.transformer.TransformCongress(ctx, rec)
			if err != nil {
				return err
			}
			res.count(outcome)
		}
	}
}

func (j *RebuildJob) rebuildInsider(ctx context.Context, res *RebuildResult) error {
	afterID := int64(0)
	for {
		batch := j.nextBatch(res.Scanned)
		if batch <= 0 {
			return nil
		}
		records, err := j.raw.InsiderRecords(ctx, afterID, batch)
		if err != nil {
			return fmt.Errorf("scan insider records after %d: %w", afterID, err)
		}
		if len(records) == 0 {
			return nil
		}
		for i := range records {
			rec := &records[i]
			afterID = rec.ID
			res.Scanned++
			outcome, err := j.transformer.TransformInsider(ctx, rec)
			if err != nil {
				return err
			}
			res.count(outcome)
		}
	}
}

func (j *RebuildJob) nextBatch(scanned int) int {
	batch := j.BatchSize
	if j.Limit > 0 && j.Limit-scanned < batch {
		batch = j.Limit - scanned
	}
	return batch
}

func (r *RebuildResult) count(o Outcome) {
	switch o {
	case OutcomeInserted:
		r.Inserted++
	case OutcomeAlreadyPresent:
		r.AlreadyPresent++
	case OutcomeSkipped:
		r.Skipped++
	}
}
