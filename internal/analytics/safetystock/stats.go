package safetystock

import (
	"math"
	"sort"
)

// Service level to z-score mapping. Lookup is nearest-match by absolute
// distance, falling back to the 0.95 entry.
var zTable = []struct {
	level float64
	z     float64
}{
	{0.90, 1.2816},
	{0.95, 1.6449},
	{0.975, 1.96},
	{0.99, 2.3263},
}

const defaultZ = 1.6449

func zScore(serviceLevel float64) float64 {
	if math.IsNaN(serviceLevel) {
		return defaultZ
	}

	best := defaultZ
	bestDist := math.Inf(1)
	for _, entry := range zTable {
		dist := math.Abs(entry.level - serviceLevel)
		if dist < bestDist {
			bestDist = dist
			best = entry.z
		}
	}
	return best
}

// clampToP95 caps every value at the series' 95th percentile (by sorted
// position) so a single-day spike cannot dominate the variance estimate.
func clampToP95(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}

	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	ceiling := sorted[int(math.Floor(0.95*float64(n-1)))]

	clamped := make([]float64, n)
	for i, v := range series {
		if v > ceiling {
			v = ceiling
		}
		clamped[i] = v
	}
	return clamped
}

// meanStdDev returns the mean and sample standard deviation (n-1 divisor).
// A series with fewer than two points has zero deviation.
func meanStdDev(series []float64) (mean, sd float64) {
	n := len(series)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean = sum / float64(n)

	if n < 2 {
		return mean, 0
	}

	var sqSum float64
	for _, v := range series {
		d := v - mean
		sqSum += d * d
	}
	sd = math.Sqrt(sqSum / float64(n-1))
	return mean, sd
}
