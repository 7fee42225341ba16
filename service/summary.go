package service

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

var summaryPercentiles = []struct {
	key string
	p   float64
}{
	{"p25", 25},
	{"p50", 50},
	{"p75", 75},
	{"p90", 90},
}

// summarizeSeries computes descriptive statistics per series keyed by
// series name. Series with no points are skipped.
func summarizeSeries(series []MetricSeries) map[string]MetricSummary {
	out := make(map[string]MetricSummary, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		values := make([]float64, len(s.Values))
		for i, p := range s.Values {
			values[i] = p.Value
		}
		out[s.Name] = summarizeValues(values)
	}
	return out
}

func summarizeValues(values []float64) MetricSummary {
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)

	var stddev float64
	if len(values) > 1 {
		stddev, _ = stats.StandardDeviationSample(values)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	percentiles := make(map[string]float64, len(summaryPercentiles))
	for _, sp := range summaryPercentiles {
		percentiles[sp.key] = percentileLinear(sorted, sp.p)
	}

	return MetricSummary{
		Mean:        mean,
		Median:      median,
		Min:         minVal,
		Max:         maxVal,
		StdDev:      stddev,
		Count:       len(values),
		Percentiles: percentiles,
	}
}

// percentileLinear interpolates linearly between the closest ranks of an
// ascending-sorted sample. stats.Percentile rounds to the nearest rank,
// which disagrees with the interpolated values callers expect here.
func percentileLinear(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
