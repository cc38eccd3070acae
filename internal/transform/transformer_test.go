package transform

import (
	"context"
	"testing"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// fakeStore keeps events in memory and enforces the
// (event_type, fingerprint) uniqueness the real store gets from its
// unique index.
type fakeStore struct {
	events []model.Event
	nextID int64
	seen   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: map[string]bool{}}
}

func (f *fakeStore) InsertEvent(_ context.Context, ev *model.Event) (bool, error) {
	key := ev.EventType + "|" + ev.Fingerprint
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.nextID++
	stored := *ev
	stored.ID = f.nextID
	f.events = append(f.events, stored)
	return true, nil
}

func (f *fakeStore) DeleteEventsByType(_ context.Context, eventType string) (int64, error) {
	var kept []model.Event
	var deleted int64
	for _, ev := range f.events {
		if ev.EventType == eventType {
			deleted++
			delete(f.seen, ev.EventType+"|"+ev.Fingerprint)
			continue
		}
		kept = append(kept, ev)
	}
	f.events = kept
	return deleted, nil
}

func strp(s string) *string { return &s }
func f64p(v float64) *float64 { return &v }
func datep(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleCongressRecord(id int64) *model.CongressRecord {
	return &model.CongressRecord{
		ID:              id,
		FilingID:        40,
		MemberKey:       "FMP_HOUSE_CA11",
		MemberName:      strp("Demo Member"),
		Chamber:         strp("house"),
		Party:           strp("Democratic"),
		Symbol:          strp("$nvda"),
		OwnerType:       "self",
		TransactionType: "buy",
		TradeDate:       datep(2025, time.December, 1),
		ReportDate:      datep(2026, time.January, 9),
		AmountMin:       f64p(15000),
		AmountMax:       f64p(50000),
		Source:          "house_fmp",
	}
}

func TestTransformCongress(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)

	outcome, err := tr.TransformCongress(context.Background(), sampleCongressRecord(7))
	if err != nil {
		t.Fatalf("TransformCongress: %v", err)
	}
	if outcome != OutcomeInserted {
		t.Fatalf("outcome = %v, want inserted", outcome)
	}

	ev := store.events[0]
	if ev.EventType != model.EventTypeCongressTrade {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.Symbol == nil || *ev.Symbol != "NVDA" {
		t.Errorf("Symbol = %v, want NVDA", ev.Symbol)
	}
	if ev.Party == nil || *ev.Party != "democrat" {
		t.Errorf("Party = %v, want democrat", ev.Party)
	}
	if ev.TradeType == nil || *ev.TradeType != "purchase" {
		t.Errorf("TradeType = %v, want purchase (buy synonym)", ev.TradeType)
	}
	wantDate := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if ev.EventDate == nil || !ev.EventDate.Equal(wantDate) {
		t.Errorf("EventDate = %v, want trade date %v", ev.EventDate, wantDate)
	}
	if ev.Fingerprint == "" {
		t.Error("Fingerprint not set")
	}
	if _, ok := ev.RawAttributes["member"]; !ok {
		t.Error("RawAttributes missing member block")
	}
}

func TestTransformIdempotent(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)
	ctx := context.Background()

	// Replaying the same raw record must yield exactly one event.
	for i, want := range []Outcome{OutcomeInserted, OutcomeAlreadyPresent, OutcomeAlreadyPresent} {
		got, err := tr.TransformCongress(ctx, sampleCongressRecord(7))
		if err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
		if got != want {
			t.Errorf("replay %d outcome = %v, want %v", i, got, want)
		}
	}
	if len(store.events) != 1 {
		t.Fatalf("store has %d events, want 1", len(store.events))
	}

	// A distinct disclosure still inserts.
	other := sampleCongressRecord(8)
	other.TradeDate = datep(2025, time.December, 2)
	if got, _ := tr.TransformCongress(ctx, other); got != OutcomeInserted {
		t.Errorf("distinct record outcome = %v, want inserted", got)
	}
	if len(store.events) != 2 {
		t.Errorf("store has %d events, want 2", len(store.events))
	}
}

func TestTransformCongressMissingSymbolStillRecorded(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)

	rec := sampleCongressRecord(9)
	rec.Symbol = nil
	outcome, err := tr.TransformCongress(context.Background(), rec)
	if err != nil {
		t.Fatalf("TransformCongress: %v", err)
	}
	if outcome != OutcomeInserted {
		t.Fatalf("outcome = %v, want inserted despite missing symbol", outcome)
	}
	if store.events[0].Symbol != nil {
		t.Errorf("Symbol = %v, want nil", store.events[0].Symbol)
	}
}

func TestTransformCongressUnresolvableSkipped(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)

	rec := &model.CongressRecord{ID: 10, Source: "house_fmp"}
	outcome, err := tr.TransformCongress(context.Background(), rec)
	if err != nil {
		t.Fatalf("TransformCongress: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("outcome = %v, want skipped", outcome)
	}
	if len(store.events) != 0 {
		t.Errorf("store has %d events, want 0", len(store.events))
	}
}

func TestTransformInsider(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)

	rec := &model.InsiderRecord{
		ID:              3,
		Source:          "fmp",
		ExternalID:      "abc123",
		Symbol:          strp("msft"),
		InsiderName:     strp("NADELLA SATYA"),
		TransactionType: strp("S-Sale"),
		Role:            strp("CEO"),
		TransactionDate: datep(2026, time.February, 2),
		FilingDate:      datep(2026, time.February, 4),
		Payload:         map[string]any{"transactionType": "S-Sale"},
	}

	outcome, err := tr.TransformInsider(context.Background(), rec)
	if err != nil {
		t.Fatalf("TransformInsider: %v", err)
	}
	if outcome != OutcomeInserted {
		t.Fatalf("outcome = %v", outcome)
	}

	ev := store.events[0]
	if ev.EventType != model.EventTypeInsiderTrade {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.TradeType == nil || *ev.TradeType != "sale" {
		t.Errorf("TradeType = %v, want sale", ev.TradeType)
	}
	if ev.MemberName != nil || ev.Chamber != nil || ev.Party != nil {
		t.Error("insider events must not carry congress identity fields")
	}
	if ev.AmountMin != nil || ev.AmountMax != nil {
		t.Error("insider events carry no disclosed dollar range")
	}
}

func TestTransformInsiderNonMarketKeepsVerbatimType(t *testing.T) {
	store := newFakeStore()
	tr := New(store, nil)

	rec := &model.InsiderRecord{
		ID:              4,
		Source:          "fmp",
		ExternalID:      "def456",
		Symbol:          strp("AAPL"),
		TransactionType: strp("G-Gift"),
	}
	if _, err := tr.TransformInsider(context.Background(), rec); err != nil {
		t.Fatalf("TransformInsider: %v", err)
	}

	ev := store.events[0]
	if ev.TradeType == nil || *ev.TradeType != "g-gift" {
		t.Errorf("TradeType = %v, want verbatim g-gift", ev.TradeType)
	}
	if ev.MarketTradeType() {
		t.Error("gift must sit outside the purchase/sale vocabulary")
	}
}
