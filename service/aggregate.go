package service

import (
	"sort"

	"github.com/tachyonhq/tachyon-eval/data/repository"
)

// aggregateMetrics groups raw metric records into series and applies the
// filter's value bounds, sort, and limit. Series appear in first-seen name
// order. A record missing its name, value, or timestamp aborts the whole
// aggregation: silent drops would hide data-quality bugs upstream.
func aggregateMetrics(records []repository.Metric, f *MetricsFilter) ([]MetricSeries, error) {
	if f == nil {
		f = &MetricsFilter{}
	}

	wantNames := toSet(f.MetricNames)
	wantCategories := toSet(f.Categories)

	var order []string
	groups := make(map[string][]MetricPoint)
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.Name == "" {
			return nil, &AggregationError{Reason: "metric record missing name"}
		}
		if rec.Value == nil {
			return nil, &AggregationError{Reason: "metric record missing value: " + rec.Name}
		}
		if rec.Timestamp == nil || rec.Timestamp.IsZero() {
			return nil, &AggregationError{Reason: "metric record missing timestamp: " + rec.Name}
		}

		if wantNames != nil && !wantNames[rec.Name] {
			continue
		}
		if wantCategories != nil && !wantCategories[rec.Category] {
			continue
		}

		if !seen[rec.Name] {
			seen[rec.Name] = true
			order = append(order, rec.Name)
		}

		value := *rec.Value
		if f.MinValue != nil && value < *f.MinValue {
			continue
		}
		if f.MaxValue != nil && value > *f.MaxValue {
			continue
		}

		groups[rec.Name] = append(groups[rec.Name], MetricPoint{
			Timestamp:          *rec.Timestamp,
			Value:              value,
			ConfidenceInterval: rec.ConfidenceInterval,
			Category:           rec.Category,
			Label:              rec.Label,
			Metadata:           rec.Metadata,
		})
	}

	series := make([]MetricSeries, 0, len(order))
	for _, name := range order {
		points := groups[name]
		if len(points) == 0 {
			continue
		}

		switch f.SortBy {
		case SortByTimestamp:
			sort.SliceStable(points, func(i, j int) bool {
				return points[i].Timestamp.Before(points[j].Timestamp)
			})
		case SortByValue:
			sort.SliceStable(points, func(i, j int) bool {
				return points[i].Value < points[j].Value
			})
		}
		if f.SortBy != "" && f.SortOrder == SortDesc {
			reversePoints(points)
		}

		if f.Limit > 0 && len(points) > f.Limit {
			points = points[:f.Limit]
		}

		series = append(series, MetricSeries{
			Name:   name,
			Values: points,
		})
	}

	return series, nil
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func reversePoints(points []MetricPoint) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
