package signal

import (
	"sort"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

// Median computes the rank-method median: the middle value for an odd
// count, the mean of the two middle values for an even count.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ComputeBaselines partitions amount ceilings by symbol and reduces
// each partition to its median and sample count.
func ComputeBaselines(amountsBySymbol map[string][]float64) map[string]model.BaselineStat {
	stats := make(map[string]model.BaselineStat, len(amountsBySymbol))
	for symbol, amounts := range amountsBySymbol {
		if len(amounts) == 0 {
			continue
		}
		stats[symbol] = model.BaselineStat{
			Symbol: symbol,
			Median: Median(amounts),
			Count:  len(amounts),
		}
	}
	return stats
}
