package transform

import (
	"context"
	"testing"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

func TestRepairCandidatesFillsOnlyNilColumns(t *testing.T) {
	existing := "IBM"
	ev := &model.Event{
		ID:        1,
		EventType: model.EventTypeCongressTrade,
		Symbol:    &existing, // already resolved, must not change
	}
	attrs := map[string]any{
		"symbol":           "nvda",
		"transaction_type": "buy",
		"trade_date":       "2025-12-01",
		"amount_range_min": 1001.0,
		"amount_range_max": 15000.0,
		"member": map[string]any{
			"name":        "Demo Member",
			"bioguide_id": "FMP_HOUSE_CA11",
			"chamber":     "House",
			"party":       "GOP",
		},
	}

	fields := repairCandidates(ev, nil, attrs)

	if _, ok := fields["symbol"]; ok {
		t.Error("symbol already set; repair must not propose it")
	}
	if got := fields["member_name"]; got != "Demo Member" {
		t.Errorf("member_name = %v", got)
	}
	if got := fields["chamber"]; got != "house" {
		t.Errorf("chamber = %v, want normalized house", got)
	}
	if got := fields["party"]; got != "republican" {
		t.Errorf("party = %v, want republican (GOP)", got)
	}
	if got := fields["trade_type"]; got != "purchase" {
		t.Errorf("trade_type = %v, want purchase", got)
	}
	if got := fields["amount_max"]; got != 15000.0 {
		t.Errorf("amount_max = %v", got)
	}
	wantDate := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if got, ok := fields["event_date"].(time.Time); !ok || !got.Equal(wantDate) {
		t.Errorf("event_date = %v, want %v", fields["event_date"], wantDate)
	}
}

func TestRepairCandidatesPreferRawRecord(t *testing.T) {
	ev := &model.Event{ID: 2, EventType: model.EventTypeCongressTrade}
	rec := sampleCongressRecord(7)
	attrs := map[string]any{
		"symbol": "WRONG",
		"member": map[string]any{"name": "Stale Name"},
	}

	fields := repairCandidates(ev, rec, attrs)

	if got := fields["symbol"]; got != "NVDA" {
		t.Errorf("symbol = %v, want raw-record NVDA over attribute WRONG", got)
	}
	if got := fields["member_name"]; got != "Demo Member" {
		t.Errorf("member_name = %v, want raw-record value", got)
	}
}

func TestRepairCandidatesEmptyAttrs(t *testing.T) {
	ev := &model.Event{ID: 3, EventType: model.EventTypeCongressTrade}
	if fields := repairCandidates(ev, nil, map[string]any{}); len(fields) != 0 {
		t.Errorf("fields = %v, want none from empty attributes", fields)
	}
}

func TestRepairCandidatesInsider(t *testing.T) {
	ev := &model.Event{ID: 4, EventType: model.EventTypeInsiderTrade}
	attrs := map[string]any{
		"symbol":           "$abc",
		"transaction_type": "P-Purchase",
		"transaction_date": "2026-01-05",
		"filing_date":      "2026-01-09",
	}

	fields := repairCandidates(ev, nil, attrs)

	if got := fields["symbol"]; got != "ABC" {
		t.Errorf("symbol = %v, want ABC", got)
	}
	if got := fields["trade_type"]; got != "purchase" {
		t.Errorf("trade_type = %v, want purchase (P-Purchase code)", got)
	}
	wantDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	if got, ok := fields["event_date"].(time.Time); !ok || !got.Equal(wantDate) {
		t.Errorf("event_date = %v, want transaction date %v", fields["event_date"], wantDate)
	}
	for _, col := range []string{"member_name", "member_id", "chamber", "party"} {
		if _, ok := fields[col]; ok {
			t.Errorf("%s proposed for an insider row", col)
		}
	}
}

func TestRepairCandidatesInsiderNonMarketType(t *testing.T) {
	ev := &model.Event{ID: 5, EventType: model.EventTypeInsiderTrade}
	attrs := map[string]any{"transaction_type": "Award"}

	fields := repairCandidates(ev, nil, attrs)

	if got := fields["trade_type"]; got != "award" {
		t.Errorf("trade_type = %v, want verbatim lowercased award", got)
	}
}

// fakeRepairStore serves incomplete events and records fills.
type fakeRepairStore struct {
	incomplete []model.Event
	fills      map[int64]map[string]any
}

func (f *fakeRepairStore) IncompleteEvents(_ context.Context, eventType string, afterID int64, limit int) ([]model.Event, error) {
	var out []model.Event
	for _, ev := range f.incomplete {
		if ev.EventType == eventType && ev.ID > afterID {
			out = append(out, ev)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepairStore) FillNullFields(_ context.Context, id int64, fields map[string]any) (bool, error) {
	if f.fills == nil {
		f.fills = map[int64]map[string]any{}
	}
	f.fills[id] = fields
	return len(fields) > 0, nil
}

type fakeRawLookup struct {
	records map[int64]*model.CongressRecord
}

func (f *fakeRawLookup) CongressRecordByID(_ context.Context, id int64) (*model.CongressRecord, error) {
	return f.records[id], nil
}

func TestRepairJobRun(t *testing.T) {
	healable := model.Event{
		ID:        1,
		EventType: model.EventTypeCongressTrade,
		RawAttributes: map[string]any{
			"transaction_id": float64(7), // as decoded JSON numbers arrive
		},
	}
	hopeless := model.Event{
		ID:            2,
		EventType:     model.EventTypeCongressTrade,
		RawAttributes: map[string]any{},
	}

	store := &fakeRepairStore{incomplete: []model.Event{healable, hopeless}}
	raw := &fakeRawLookup{records: map[int64]*model.CongressRecord{7: sampleCongressRecord(7)}}

	job := NewRepairJob(store, raw, model.EventTypeCongressTrade, nil)
	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Scanned != 2 {
		t.Errorf("Scanned = %d, want 2", res.Scanned)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.MissingSource != 1 {
		t.Errorf("MissingSource = %d, want 1", res.MissingSource)
	}

	fields := store.fills[1]
	if fields == nil {
		t.Fatal("event 1 not filled")
	}
	if fields["symbol"] != "NVDA" {
		t.Errorf("filled symbol = %v", fields["symbol"])
	}
}

func TestRepairJobDryRun(t *testing.T) {
	store := &fakeRepairStore{incomplete: []model.Event{{
		ID:            1,
		EventType:     model.EventTypeCongressTrade,
		RawAttributes: map[string]any{"symbol": "nvda"},
	}}}

	job := NewRepairJob(store, nil, model.EventTypeCongressTrade, nil)
	job.DryRun = true
	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1 (counted, not applied)", res.Updated)
	}
	if len(store.fills) != 0 {
		t.Errorf("dry run must not write, got %v", store.fills)
	}
}

func TestRepairJobInsider(t *testing.T) {
	store := &fakeRepairStore{incomplete: []model.Event{{
		ID:        9,
		EventType: model.EventTypeInsiderTrade,
		RawAttributes: map[string]any{
			"transaction_type": "S-Sale",
			"transaction_date": "2026-02-02",
		},
	}}}

	job := NewRepairJob(store, &fakeRawLookup{}, model.EventTypeInsiderTrade, nil)
	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}

	fields := store.fills[9]
	if got := fields["trade_type"]; got != "sale" {
		t.Errorf("trade_type = %v, want sale (S-Sale code)", got)
	}
	wantDate := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	if got, ok := fields["event_date"].(time.Time); !ok || !got.Equal(wantDate) {
		t.Errorf("event_date = %v, want %v", fields["event_date"], wantDate)
	}
}

func TestAttributeTransactionID(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]any
		want  int64
		ok    bool
	}{
		{"float64 as decoded", map[string]any{"transaction_id": float64(42)}, 42, true},
		{"camelCase alias", map[string]any{"transactionId": float64(9)}, 9, true},
		{"nested transaction", map[string]any{"transaction": map[string]any{"id": float64(5)}}, 5, true},
		{"numeric string", map[string]any{"transaction_id": "17"}, 17, true},
		{"absent", map[string]any{}, 0, false},
		{"garbage string", map[string]any{"transaction_id": "abc"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := attributeTransactionID(tt.attrs)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got (%d,%v), want (%d,%v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRebuildJobRun(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)
	ctx := context.Background()

	// Preload: two congress events (one of which rebuild will
	// re-derive) and one insider event that must survive untouched.
	if _, err := tr.TransformCongress(ctx, sampleCongressRecord(7)); err != nil {
		t.Fatal(err)
	}
	stale := sampleCongressRecord(99)
	stale.TradeDate = datep(2020, time.January, 1)
	if _, err := tr.TransformCongress(ctx, stale); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.TransformInsider(ctx, &model.InsiderRecord{
		ID: 1, Source: "fmp", ExternalID: "keep-me", Symbol: strp("AAPL"),
		TransactionType: strp("P-Purchase"),
	}); err != nil {
		t.Fatal(err)
	}

	raw := &fakeRawSource{congress: []model.CongressRecord{*sampleCongressRecord(7)}}
	job := NewRebuildJob(store, raw, model.EventTypeCongressTrade, nil)
	res, err := job.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", res.Deleted)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}

	var congress, insider int
	for _, ev := range store.events {
		switch ev.EventType {
		case model.EventTypeCongressTrade:
			congress++
		case model.EventTypeInsiderTrade:
			insider++
		}
	}
	if congress != 1 {
		t.Errorf("congress events = %d, want 1", congress)
	}
	if insider != 1 {
		t.Errorf("insider events = %d, want 1 (other types untouched)", insider)
	}
}

type fakeRawSource struct {
	congress []model.CongressRecord
	insider  []model.InsiderRecord
}

func (f *fakeRawSource) CongressRecords(_ context.Context, afterID int64, limit int) ([]model.CongressRecord, error) {
	var out []model.CongressRecord
	for _, rec := range f.congress {
		if rec.ID > afterID {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRawSource) InsiderRecords(_ context.Context, afterID int64, limit int) ([]model.InsiderRecord, error) {
	var out []model.InsiderRecord
	for _, rec := range f.insider {
		if rec.ID > afterID {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
