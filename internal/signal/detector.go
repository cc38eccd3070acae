package signal

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Source supplies the two read paths the detector needs: historical
// amount ceilings for the baseline and recent candidate events.
type Source interface {
	BaselineAmounts(ctx context.Context, since time.Time) (map[string][]float64, error)
	RecentCandidates(ctx context.Context, since time.Time, minAmount float64) ([]model.Event, error)
}

// Hit is one qualifying event with its baseline context alongside, so
// consumers can re-rank without re-querying.
type Hit struct {
	Event          model.Event
	BaselineMedian float64
	BaselineCount  int
	Multiple       float64
}

// Options shape one detection run.
type Options struct {
	Resolution Resolution
	Overrides  Overrides
	Adaptive   bool
	Limit      int
}

// Result carries the ranked hits plus the resolution the run actually
// used, after any adaptive relaxation.
type Result struct {
	Hits        []Hit
	Resolution  Resolution
	SymbolCount int
	TotalHits   int
}

// Detector scores recent congress trades against per-symbol baselines.
type Detector struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

func New(source Source, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{source: source, logger: logger, now: time.Now}
}

// Unusual runs one detection pass.
func (d *Detector) Unusual(ctx context.Context, opts Options) (*Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	res := opts.Resolution
	now := d.now().UTC()
	baselineSince := now.AddDate(0, 0, -res.Params.BaselineDays)

	amounts, err := d.source.BaselineAmounts(ctx, baselineSince)
	if err != nil {
		return nil, fmt.Errorf("loading baseline amounts: %w", err)
	}
	stats := ComputeBaselines(amounts)

	if opts.Adaptive {
		res.Adapt(opts.Overrides, len(stats))
	}

	recentSince := now.AddDate(0, 0, -res.Params.RecentDays)
	candidates, err := d.source.RecentCandidates(ctx, recentSince, res.Params.MinAmount)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	var hits []Hit
	for _, ev := range candidates {
		if ev.Symbol == nil || ev.AmountMax == nil {
			continue
		}
		stat, ok := stats[*ev.Symbol]
		if !ok || stat.Median <= 0 || stat.Count < res.Params.MinBaselineCount {
			continue
		}
		multiple := *ev.AmountMax / stat.Median
		if multiple < res.Params.Multiple {
			continue
		}
		hits = append(hits, Hit{
			Event:          ev,
			BaselineMedian: stat.Median,
			BaselineCount:  stat.Count,
			Multiple:       multiple,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Multiple != hits[j].Multiple {
			return hits[i].Multiple > hits[j].Multiple
		}
		return hits[i].Event.SortTS().After(hits[j].Event.SortTS())
	})

	total := len(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	d.logger.Debug("unusual signal pass",
		"mode", res.Mode,
		"symbols", len(stats),
		"candidates", len(candidates),
		"hits", total)

	return &Result{
		Hits:        hits,
		Resolution:  res,
		SymbolCount: len(stats),
		TotalHits:   total,
	}, nil
}
