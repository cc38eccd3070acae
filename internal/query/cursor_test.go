package query

import (
	"errors"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{TS: time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC), ID: 4211}

	parsed, err := ParseCursor(c.Encode())
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !parsed.TS.Equal(c.TS) {
		t.Errorf("ts = %v, want %v", parsed.TS, c.TS)
	}
	if parsed.ID != c.ID {
		t.Errorf("id = %d, want %d", parsed.ID, c.ID)
	}
}

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantTS  time.Time
		wantID  int64
		wantErr bool
	}{
		{
			name:   "rfc3339",
			raw:    "2026-03-14T09:26:53Z|17",
			wantTS: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			wantID: 17,
		},
		{
			name:   "bare date",
			raw:    "2026-03-14|17",
			wantTS: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			wantID: 17,
		},
		{
			name:   "no zone suffix",
			raw:    "2026-03-14T09:26:53|17",
			wantTS: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			wantID: 17,
		},
		{name: "missing separator", raw: "2026-03-14T09:26:53Z", wantErr: true},
		{name: "non-numeric id", raw: "2026-03-14T09:26:53Z|abc", wantErr: true},
		{name: "garbage timestamp", raw: "not-a-time|17", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCursor(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrBadCursor) {
					t.Fatalf("err = %v, want ErrBadCursor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCursor(%q): %v", tt.raw, err)
			}
			if !got.TS.Equal(tt.wantTS) || got.ID != tt.wantID {
				t.Errorf("got %v|%d, want %v|%d", got.TS, got.ID, tt.wantTS, tt.wantID)
			}
		})
	}
}
