package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tapelabs/disclosure-tape/internal/model"
	"github.com/tapelabs/disclosure-tape/internal/transform"
)

// Maintainer is the maintenance surface the admin handlers consume.
type Maintainer interface {
	Repair(ctx context.Context, eventType string, opts transform.MaintenanceOptions) (transform.RepairResult, error)
	Rebuild(ctx context.Context, eventType string, opts transform.MaintenanceOptions) (transform.RebuildResult, error)
}

// RepairEvents handles POST /api/admin/events/repair. Repair itself is
// monotonic and safe against reads, but it must not overlap a rebuild,
// so it takes the same process-wide maintenance lock.
func (h *Handlers) RepairEvents(c *gin.Context) {
	eventType, opts, ok := h.maintenanceParams(c)
	if !ok {
		return
	}

	if !h.maintenanceMu.TryLock() {
		c.JSON(http.StatusConflict, ErrorOut{Error: "another maintenance run is in progress"})
		return
	}
	defer h.maintenanceMu.Unlock()

	result, err := h.maintainer.Repair(c.Request.Context(), eventType, opts)
	if err != nil {
		h.logger.Error("repair failed", "event_type", eventType, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "repair failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RebuildEvents handles POST /api/admin/events/rebuild. Rebuild is
// destructive per type and must not overlap itself or a repair for the
// same type, so admin runs are serialized process-wide.
func (h *Handlers) RebuildEvents(c *gin.Context) {
	eventType, opts, ok := h.maintenanceParams(c)
	if !ok {
		return
	}

	if !h.maintenanceMu.TryLock() {
		c.JSON(http.StatusConflict, ErrorOut{Error: "another maintenance run is in progress"})
		return
	}
	defer h.maintenanceMu.Unlock()

	result, err := h.maintainer.Rebuild(c.Request.Context(), eventType, opts)
	if err != nil {
		h.logger.Error("rebuild failed", "event_type", eventType, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "rebuild failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) maintenanceParams(c *gin.Context) (string, transform.MaintenanceOptions, bool) {
	eventType := c.Query("event_type")
	if eventType == "" {
		c.JSON(http.StatusBadRequest, ErrorOut{Error: "event_type is required"})
		return "", transform.MaintenanceOptions{}, false
	}
	switch eventType {
	case model.EventTypeCongressTrade, model.EventTypeInsiderTrade:
	default:
		c.JSON(http.StatusBadRequest, ErrorOut{Error: fmt.Sprintf("unknown event_type %q, allowed: %s, %s",
			eventType, model.EventTypeCongressTrade, model.EventTypeInsiderTrade)})
		return "", transform.MaintenanceOptions{}, false
	}

	opts := transform.MaintenanceOptions{DryRun: parseBool(c, "dry_run")}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "batch_size": &opts.BatchSize} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, ErrorOut{Error: name + " must be a positive integer"})
			return "", transform.MaintenanceOptions{}, false
		}
		*dst = v
	}
	return eventType, opts, true
}
