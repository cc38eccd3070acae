package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadCursor rejects structurally invalid cursors at the boundary.
var ErrBadCursor = errors.New("invalid cursor format, expected ts|id")

// Cursor addresses the next page under keyset pagination: the ordering
// key of the last row already returned.
type Cursor struct {
	TS time.Time
	ID int64
}

// Encode renders the cursor in its wire form, "<RFC3339Nano>|<id>".
func (c Cursor) Encode() string {
	return c.TS.UTC().Format(time.RFC3339Nano) + "|" + strconv.FormatInt(c.ID, 10)
}

// ParseCursor decodes a wire cursor. Errors wrap ErrBadCursor so the
// API layer can map them to a 400.
func ParseCursor(raw string) (Cursor, error) {
	tsPart, idPart, ok := strings.Cut(raw, "|")
	if !ok {
		return Cursor{}, ErrBadCursor
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad id %q", ErrBadCursor, idPart)
	}

	ts, err := ParseTime(tsPart)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp %q", ErrBadCursor, tsPart)
	}

	return Cursor{TS: ts, ID: id}, nil
}

// ParseTime accepts RFC3339 timestamps (with or without fractional
// seconds or a trailing Z) and bare dates, normalized to UTC.
func ParseTime(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, cleaned); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
