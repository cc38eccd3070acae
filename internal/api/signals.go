package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tapelabs/disclosure-tape/internal/signal"
)

// SignalDetector is the detector surface the signals handler consumes.
type SignalDetector interface {
	Unusual(ctx context.Context, opts signal.Options) (*signal.Result, error)
}

// UnusualSignals handles GET /api/signals/unusual.
func (h *Handlers) UnusualSignals(c *gin.Context) {
	overrides, err := parseOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorOut{Error: err.Error()})
		return
	}

	resolution, err := signal.Resolve(c.Query("preset"), overrides)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorOut{Error: err.Error()})
		return
	}

	opts := signal.Options{
		Resolution: resolution,
		Overrides:  overrides,
		Adaptive:   parseBool(c, "adaptive"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorOut{Error: fmt.Sprintf("limit must be a positive integer, got %q", raw)})
			return
		}
		opts.Limit = limit
	}

	result, err := h.detector.Unusual(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("unusual signal query failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "signal query failed"})
		return
	}

	out := SignalPageOut{Signals: []SignalOut{}}
	for _, hit := range result.Hits {
		out.Signals = append(out.Signals, signalOut(hit))
	}
	if parseBool(c, "debug") {
		out.Debug = signalDebugOut(result)
	}

	c.JSON(http.StatusOK, out)
}

func parseOverrides(c *gin.Context) (signal.Overrides, error) {
	var o signal.Overrides
	var err error

	if o.RecentDays, err = parseIntOverride(c, "recent_days"); err != nil {
		return o, err
	}
	if o.BaselineDays, err = parseIntOverride(c, "baseline_days"); err != nil {
		return o, err
	}
	if o.MinBaselineCount, err = parseIntOverride(c, "min_baseline_count"); err != nil {
		return o, err
	}
	if o.Multiple, err = parseFloatParam(c, "multiple"); err != nil {
		return o, err
	}
	if o.Multiple != nil && *o.Multiple < 1 {
		return o, fmt.Errorf("multiple must be >= 1")
	}
	if o.MinAmount, err = parseFloatParam(c, "min_amount"); err != nil {
		return o, err
	}
	if o.MinAmount != nil && *o.MinAmount < 0 {
		return o, fmt.Errorf("min_amount must be non-negative")
	}
	return o, nil
}

func parseIntOverride(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return &v, nil
}
