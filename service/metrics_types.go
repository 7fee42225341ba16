package service

import (
	"time"
)

// Sort keys and orders accepted by MetricsFilter.
const (
	SortByTimestamp = "timestamp"
	SortByValue     = "value"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// MetricPoint is a single measurement, read-only once projected from the
// store.
type MetricPoint struct {
	Timestamp          time.Time          `json:"timestamp"`
	Value              float64            `json:"value"`
	ConfidenceInterval map[string]float64 `json:"confidence_interval,omitempty"`
	Category           string             `json:"category,omitempty"`
	Label              string             `json:"label,omitempty"`
	Metadata           map[string]any     `json:"metadata,omitempty"`
}

// MetricSeries is an ordered collection of points sharing one metric name.
// Point order reflects the requested sort, or store-return order when
// unsorted.
type MetricSeries struct {
	Name            string        `json:"name"`
	Values          []MetricPoint `json:"values"`
	AggregationType string        `json:"aggregation_type,omitempty"`
	Unit            string        `json:"unit,omitempty"`
	Color           string        `json:"color,omitempty"`
	YAxis           string        `json:"y_axis,omitempty"`
}

// MetricsFilter carries the parsed query parameters for a metrics request.
type MetricsFilter struct {
	StartTime         *time.Time `form:"start_time" json:"start_time,omitempty" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime           *time.Time `form:"end_time" json:"end_time,omitempty" time_format:"2006-01-02T15:04:05Z07:00"`
	MetricNames       []string   `form:"metric_names" json:"metric_names,omitempty"`
	MinValue          *float64   `form:"min_value" json:"min_value,omitempty"`
	MaxValue          *float64   `form:"max_value" json:"max_value,omitempty"`
	SortBy            string     `form:"sort_by" json:"sort_by,omitempty" binding:"omitempty,oneof=timestamp value"`
	SortOrder         string     `form:"sort_order" json:"sort_order,omitempty" binding:"omitempty,oneof=asc desc"`
	Limit             int        `form:"limit" json:"limit,omitempty" binding:"omitempty,min=1"`
	Categories        []string   `form:"categories" json:"categories,omitempty"`
	ChartType         string     `form:"chart_type" json:"chart_type,omitempty" binding:"omitempty,oneof=line bar scatter pie heatmap"`
	IncludeSummary    bool       `form:"include_summary" json:"include_summary,omitempty"`
	IncludeComparison bool       `form:"include_comparison" json:"include_comparison,omitempty"`
	ComparisonPeriod  string     `form:"comparison_period" json:"comparison_period,omitempty"`
	BaselineID        string     `form:"baseline_id" json:"baseline_id,omitempty"`
}

// Validate checks cross-field constraints. It runs before any store access.
func (f *MetricsFilter) Validate() error {
	if f.StartTime != nil && f.EndTime != nil && f.StartTime.After(*f.EndTime) {
		return &ValidationError{Field: "start_time", Message: "start time must be before end time"}
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return &ValidationError{Field: "min_value", Message: "min value must not exceed max value"}
	}
	if f.IncludeComparison && f.ComparisonPeriod == "" && f.BaselineID == "" {
		return &ValidationError{Field: "include_comparison", Message: "comparison requires comparison_period or baseline_id"}
	}
	return nil
}

// MetricSummary holds descriptive statistics for one series. Computed per
// request, never persisted.
type MetricSummary struct {
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	StdDev      float64            `json:"std_dev"`
	Count       int                `json:"count"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
}

// PeriodChange compares the first and last point of a series.
type PeriodChange struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// BaselineChange compares a series against the same-named baseline series.
type BaselineChange struct {
	Current       float64 `json:"current"`
	Baseline      float64 `json:"baseline"`
	ChangePercent float64 `json:"change_percent"`
}

// MetricComparison carries period-over-period and baseline deltas keyed by
// series name.
type MetricComparison struct {
	PeriodChange       map[string]PeriodChange   `json:"period_change"`
	BaselineComparison map[string]BaselineChange `json:"baseline_comparison"`
}

// ChartConfig is a rendering hint attached to the response.
type ChartConfig struct {
	Type       string `json:"type"`
	Title      string `json:"title,omitempty"`
	XAxisLabel string `json:"x_axis_label,omitempty"`
	YAxisLabel string `json:"y_axis_label,omitempty"`
}

// MetricsResponse is the assembled result of one metrics query.
type MetricsResponse struct {
	UsecaseID    string                   `json:"usecase_id"`
	DatasetID    string                   `json:"dataset_id,omitempty"`
	EvaluationID string                   `json:"evaluation_id,omitempty"`
	Series       []MetricSeries           `json:"series"`
	Summary      map[string]MetricSummary `json:"summary,omitempty"`
	Comparison   *MetricComparison        `json:"comparison,omitempty"`
	ChartConfig  *ChartConfig             `json:"chart_config,omitempty"`
}
