package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// MaintenanceStore is the event-store surface maintenance jobs need.
type MaintenanceStore interface {
	RepairStore
	RebuildStore
}

// MaintenanceRaw is the raw-store surface maintenance jobs need.
type MaintenanceRaw interface {
	RawLookup
	RawSource
}

// MaintenanceOptions tune one maintenance run.
type MaintenanceOptions struct {
	Limit     int
	BatchSize int
	DryRun    bool
}

// Maintenance wires repair and rebuild jobs over concrete stores so
// the API and the CLI trigger them the same way.
type Maintenance struct {
	store  MaintenanceStore
	raw    MaintenanceRaw
	logger *slog.Logger
}

func NewMaintenance(store MaintenanceStore, raw MaintenanceRaw, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{store: store, raw: raw, logger: logger}
}

// Repair fills NULL typed columns for one event type from the raw
// records and stored attributes.
func (m *Maintenance) Repair(ctx context.Context, eventType string, opts MaintenanceOptions) (RepairResult, error) {
	if err := validEventType(eventType); err != nil {
		return RepairResult{}, err
	}

	job := NewRepairJob(m.store, m.raw, eventType, m.logger)
	job.Limit = opts.Limit
	job.DryRun = opts.DryRun
	if opts.BatchSize > 0 {
		job.BatchSize = opts.BatchSize
	}
	return job.Run(ctx)
}

// Rebuild deletes one event type and re-transforms it from the raw
// records. Exclusive per type; the caller serializes runs.
func (m *Maintenance) Rebuild(ctx context.Context, eventType string, opts MaintenanceOptions) (RebuildResult, error) {
	if err := validEventType(eventType); err != nil {
		return RebuildResult{}, err
	}

	job := NewRebuildJob(m.store, m.raw, eventType, m.logger)
	job.Limit = opts.Limit
	if opts.BatchSize > 0 {
		job.BatchSize = opts.BatchSize
	}
	return job.Run(ctx)
}

func validEventType(eventType string) error {
	switch eventType {
	case model.EventTypeCongressTrade, model.EventTypeInsiderTrade:
		return nil
	}
	return fmt.Errorf("unknown event type %q, allowed: %s, %s",
		eventType, model.EventTypeCongressTrade, model.EventTypeInsiderTrade)
}
