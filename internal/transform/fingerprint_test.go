package transform

import "testing"

func TestFingerprintStable(t *testing.T) {
	fields := map[string]any{
		"source":           "house_fmp",
		"member_id":        "FMP_HOUSE_CA11",
		"symbol":           "NVDA",
		"trade_date":       "2025-12-01",
		"transaction_type": "buy",
		"amount_min":       15000.0,
		"amount_max":       50000.0,
	}

	first := Fingerprint(fields)
	second := Fingerprint(fields)
	if first != second {
		t.Errorf("identical tuples hash differently: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(first))
	}
}

func TestFingerprintKeyOrderIndependent(t *testing.T) {
	// Same logical tuple assembled in different insertion orders.
	a := map[string]any{"symbol": "NVDA", "source": "senate", "amount_max": 50000.0}
	b := map[string]any{"amount_max": 50000.0, "source": "senate", "symbol": "NVDA"}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint depends on map insertion order")
	}
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	base := map[string]any{"symbol": "NVDA", "trade_date": "2025-12-01", "amount_max": 50000.0}
	changed := map[string]any{"symbol": "NVDA", "trade_date": "2025-12-02", "amount_max": 50000.0}
	withNil := map[string]any{"symbol": "NVDA", "trade_date": "2025-12-01", "amount_max": nil}

	if Fingerprint(base) == Fingerprint(changed) {
		t.Error("different trade dates should hash differently")
	}
	if Fingerprint(base) == Fingerprint(withNil) {
		t.Error("nil amount should hash differently from a set amount")
	}
}
