package signal

import "testing"

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{10, 20, 30}, 20},
		{"even count", []float64{10, 20, 30, 40}, 25},
		{"unsorted input", []float64{30, 10, 20}, 20},
		{"single value", []float64{7500}, 7500},
		{"two values", []float64{1000, 3000}, 2000},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{30, 10, 20}
	Median(values)
	if values[0] != 30 || values[1] != 10 || values[2] != 20 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestComputeBaselines(t *testing.T) {
	stats := ComputeBaselines(map[string][]float64{
		"NVDA": {10, 20, 30},
		"AAPL": {10, 20, 30, 40},
		"GME":  {},
	})

	nvda, ok := stats["NVDA"]
	if !ok || nvda.Median != 20 || nvda.Count != 3 {
		t.Errorf("NVDA = %+v", nvda)
	}
	aapl := stats["AAPL"]
	if aapl.Median != 25 || aapl.Count != 4 {
		t.Errorf("AAPL = %+v", aapl)
	}
	if _, ok := stats["GME"]; ok {
		t.Error("empty partition should produce no stat")
	}
}
