package service

import "context"

// baselineFetch loads the unfiltered series of a baseline scope so the
// current results can be compared against it.
type baselineFetch func(ctx context.Context, baselineID string) ([]MetricSeries, error)

// buildComparison derives change metrics for the aggregated series. A
// comparison period yields a first-vs-last delta per series; a baseline id
// re-aggregates the baseline scope and compares the latest values per
// series. Series absent from the baseline are left out rather than reported
// as errors. The comparison is returned whenever either trigger is set,
// even if no series qualifies.
func buildComparison(ctx context.Context, series []MetricSeries, f *MetricsFilter, fetch baselineFetch) (*MetricComparison, error) {
	if f.ComparisonPeriod == "" && f.BaselineID == "" {
		return nil, nil
	}
	cmp := &MetricComparison{}

	if f.ComparisonPeriod != "" {
		cmp.PeriodChange = make(map[string]PeriodChange, len(series))
		for _, s := range series {
			if len(s.Values) < 2 {
				continue
			}
			previous := s.Values[0].Value
			current := s.Values[len(s.Values)-1].Value
			cmp.PeriodChange[s.Name] = PeriodChange{
				Current:       current,
				Previous:      previous,
				ChangePercent: changePercent(current, previous),
			}
		}
	}

	if f.BaselineID != "" && fetch != nil {
		baseline, err := fetch(ctx, f.BaselineID)
		if err != nil {
			return nil, err
		}
		baselineLatest := make(map[string]float64, len(baseline))
		for _, s := range baseline {
			if len(s.Values) == 0 {
				continue
			}
			baselineLatest[s.Name] = s.Values[len(s.Values)-1].Value
		}

		cmp.BaselineComparison = make(map[string]BaselineChange)
		for _, s := range series {
			base, ok := baselineLatest[s.Name]
			if !ok || len(s.Values) == 0 {
				continue
			}
			current := s.Values[len(s.Values)-1].Value
			cmp.BaselineComparison[s.Name] = BaselineChange{
				Current:       current,
				Baseline:      base,
				ChangePercent: changePercent(current, base),
			}
		}
	}

	return cmp, nil
}

func changePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
