package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tapelabs/disclosure-tape/internal/model"
	"github.com/tapelabs/disclosure-tape/internal/price"
	"github.com/tapelabs/disclosure-tape/internal/query"
)

// EventReader is the store surface the listing handlers consume.
type EventReader interface {
	ListEvents(ctx context.Context, r *query.Resolved, p query.Page) ([]model.Event, error)
	CountEvents(ctx context.Context, r *query.Resolved) (int64, error)
	SuggestSymbols(ctx context.Context, prefix, eventType string, limit int) ([]string, error)
	SuggestMembers(ctx context.Context, prefix string, limit int) ([]string, error)
}

// ListEvents handles GET /api/events.
func (h *Handlers) ListEvents(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorOut{Error: err.Error()})
		return
	}

	resolved, err := f.Resolve(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorOut{Error: err.Error()})
		return
	}

	page := query.Page{Limit: query.DefaultLimit}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, ErrorOut{Error: fmt.Sprintf("limit must be a positive integer, got %q", raw)})
			return
		}
		if limit > query.MaxLimit {
			limit = query.MaxLimit
		}
		page.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, ErrorOut{Error: fmt.Sprintf("offset must be a non-negative integer, got %q", raw)})
			return
		}
		page.Offset = offset
	}
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := query.ParseCursor(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorOut{Error: err.Error()})
			return
		}
		page.Cursor = &cursor
	}

	events, err := h.events.ListEvents(c.Request.Context(), resolved, page)
	if err != nil {
		h.logger.Error("list events failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "event query failed"})
		return
	}

	out := EventPageOut{Items: []EventOut{}}

	// The store fetched one extra row to detect a next page.
	if len(events) > page.Limit {
		events = events[:page.Limit]
		last := events[len(events)-1]
		out.NextCursor = query.Cursor{TS: last.SortTS(), ID: last.ID}.Encode()
	}

	var annotations map[int64]price.Annotation
	if parseBool(c, "with_prices") {
		annotations = price.Annotate(c.Request.Context(), h.quotes, events)
	}
	for _, ev := range events {
		var ann *price.Annotation
		if a, ok := annotations[ev.ID]; ok {
			ann = &a
		}
		out.Items = append(out.Items, eventOut(ev, ann))
	}

	if parseBool(c, "with_total") {
		total, err := h.events.CountEvents(c.Request.Context(), resolved)
		if err != nil {
			h.logger.Error("count events failed", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorOut{Error: "event count failed"})
			return
		}
		out.Total = &total
	}

	c.JSON(http.StatusOK, out)
}

// parseFilter maps request parameters onto a filter. Validation of
// enum values happens in Resolve; this only rejects malformed numbers
// and timestamps.
func parseFilter(c *gin.Context) (query.Filter, error) {
	f := query.Filter{
		Tape:            c.Query("tape"),
		Member:          c.Query("member"),
		MemberID:        c.Query("member_id"),
		Chamber:         c.Query("chamber"),
		Party:           c.Query("party"),
		TradeType:       c.Query("trade_type"),
		TransactionType: c.Query("transaction_type"),
		Role:            c.Query("role"),
		Ownership:       c.Query("ownership"),
		Whale:           parseBool(c, "whale"),
	}
	f.Symbols = splitParam(c.QueryArray("symbol"))
	f.Types = splitParam(c.QueryArray("type"))

	if raw := c.Query("since"); raw != "" {
		ts, err := query.ParseTime(raw)
		if err != nil {
			return f, fmt.Errorf("since: unparseable timestamp %q", raw)
		}
		f.Since = &ts
	}
	if raw := c.Query("recent_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			return f, fmt.Errorf("recent_days must be a positive integer, got %q", raw)
		}
		f.RecentDays = days
	}

	var err error
	if f.MinAmount, err = parseFloatParam(c, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseFloatParam(c, "max_amount"); err != nil {
		return f, err
	}

	return f, nil
}

// splitParam flattens repeated parameters and comma-separated lists.
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFloatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return &v, nil
}

func parseBool(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
