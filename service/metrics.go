package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/ecode"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/retry"
)

// queryStage labels the phases a metrics query moves through. Stages are
// logged so a slow or failing query can be located from the log alone.
type queryStage string

const (
	stageValidating  queryStage = "validating"
	stageFetching    queryStage = "fetching"
	stageAggregating queryStage = "aggregating"
	stageSummarizing queryStage = "summarizing"
	stageComparing   queryStage = "comparing"
	stageAssembled   queryStage = "assembled"
)

// MetricsService answers metric queries scoped to a usecase, dataset, or
// evaluation. Store reads run under the retry policy; only transient store
// errors are retried.
type MetricsService struct {
	metrics     repository.MetricRepository
	usecases    repository.UsecaseRepository
	datasets    repository.DatasetRepository
	evaluations repository.EvaluationRepository
	logger      *logger.Logger
	policy      retry.Policy
	obs         retry.Observer
}

// NewMetricsService builds the service from the shared data layer and the
// configured retry policy.
func NewMetricsService(d *data.Data, log *logger.Logger, rc *config.Retry) *MetricsService {
	policy := retry.DefaultPolicy()
	if rc != nil {
		policy.MaxRetries = rc.MaxRetries
		policy.InitialDelay = rc.InitialDelay
		policy.MaxDelay = rc.MaxDelay
		policy.ExponentialBase = rc.ExponentialBase
	}
	policy.Retryable = data.IsTransient

	return &MetricsService{
		metrics:     d.MetricRepo,
		usecases:    d.UsecaseRepo,
		datasets:    d.DatasetRepo,
		evaluations: d.EvaluationRepo,
		logger:      log,
		policy:      policy,
		obs:         &retryObserver{logger: log},
	}
}

// GetUsecaseMetrics aggregates every metric recorded under the usecase.
func (s *MetricsService) GetUsecaseMetrics(ctx context.Context, usecaseID string, f *MetricsFilter) (*MetricsResponse, error) {
	if _, err := s.usecases.FindByID(ctx, usecaseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "usecase", ID: usecaseID}
		}
		return nil, err
	}

	scope := repository.MetricScope{UsecaseID: usecaseID}
	return s.query(ctx, scope, f, fmt.Sprintf("Metrics for Usecase %s", usecaseID))
}

// GetDatasetMetrics aggregates metrics for one dataset within the usecase.
func (s *MetricsService) GetDatasetMetrics(ctx context.Context, usecaseID, datasetID string, f *MetricsFilter) (*MetricsResponse, error) {
	if _, err := s.datasets.FindByID(ctx, usecaseID, datasetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "dataset", ID: datasetID}
		}
		return nil, err
	}

	scope := repository.MetricScope{UsecaseID: usecaseID, DatasetID: datasetID}
	return s.query(ctx, scope, f, fmt.Sprintf("Metrics for Dataset %s", datasetID))
}

// GetEvaluationMetrics aggregates metrics for one evaluation run.
func (s *MetricsService) GetEvaluationMetrics(ctx context.Context, usecaseID, evaluationID string, f *MetricsFilter) (*MetricsResponse, error) {
	if _, err := s.evaluations.FindByID(ctx, usecaseID, evaluationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "evaluation", ID: evaluationID}
		}
		return nil, err
	}

	scope := repository.MetricScope{UsecaseID: usecaseID, EvaluationID: evaluationID}
	return s.query(ctx, scope, f, fmt.Sprintf("Metrics for Evaluation %s", evaluationID))
}

func (s *MetricsService) query(ctx context.Context, scope repository.MetricScope, f *MetricsFilter, title string) (*MetricsResponse, error) {
	if f == nil {
		f = &MetricsFilter{}
	}

	s.stage(ctx, stageValidating)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.stage(ctx, stageFetching)
	records, err := retry.Do(ctx, s.policy, s.obs, func(ctx context.Context) ([]repository.Metric, error) {
		return s.metrics.Find(ctx, scope, repository.TimeRange{Start: f.StartTime, End: f.EndTime})
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "metrics", ID: scope.UsecaseID}
	}

	s.stage(ctx, stageAggregating)
	series, err := aggregateMetrics(records, f)
	if err != nil {
		return nil, err
	}

	resp := &MetricsResponse{
		UsecaseID:    scope.UsecaseID,
		DatasetID:    scope.DatasetID,
		EvaluationID: scope.EvaluationID,
		Series:       series,
		ChartConfig:  s.chartConfig(f, title),
	}

	if f.IncludeSummary {
		s.stage(ctx, stageSummarizing)
		resp.Summary = summarizeSeries(series)
	}

	if f.IncludeComparison {
		s.stage(ctx, stageComparing)
		cmp, err := buildComparison(ctx, series, f, s.fetchBaseline)
		if err != nil {
			return nil, err
		}
		resp.Comparison = cmp
	}

	s.stage(ctx, stageAssembled)
	return resp, nil
}

// RecordMetricBody is the payload for ingesting one measurement.
type RecordMetricBody struct {
	DatasetID          string             `json:"dataset_id"`
	EvaluationID       string             `json:"evaluation_id"`
	Name               string             `json:"name" binding:"required"`
	Value              *float64           `json:"value" binding:"required"`
	Timestamp          *time.Time         `json:"timestamp"`
	ConfidenceInterval map[string]float64 `json:"confidence_interval"`
	Category           string             `json:"category"`
	Label              string             `json:"label"`
	Metadata           map[string]any     `json:"metadata"`
}

// Record ingests a single metric point under the usecase. A missing
// timestamp defaults to the current time.
func (s *MetricsService) Record(ctx context.Context, usecaseID string, body *RecordMetricBody) (*repository.Metric, error) {
	if _, err := s.usecases.FindByID(ctx, usecaseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "usecase", ID: usecaseID}
		}
		return nil, err
	}
	if body.Name == "" {
		return nil, &ValidationError{Field: "name", Message: ecode.FieldIsRequired("name")}
	}
	if body.Value == nil {
		return nil, &ValidationError{Field: "value", Message: ecode.FieldIsRequired("value")}
	}

	ts := body.Timestamp
	if ts == nil {
		now := time.Now().UTC()
		ts = &now
	}

	m := &repository.Metric{
		UsecaseID:          usecaseID,
		DatasetID:          body.DatasetID,
		EvaluationID:       body.EvaluationID,
		Name:               body.Name,
		Value:              body.Value,
		Timestamp:          ts,
		ConfidenceInterval: body.ConfidenceInterval,
		Category:           body.Category,
		Label:              body.Label,
		Metadata:           body.Metadata,
	}
	if err := s.metrics.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// fetchBaseline re-aggregates the baseline evaluation without any filter so
// the comparison reflects the full baseline population.
func (s *MetricsService) fetchBaseline(ctx context.Context, baselineID string) ([]MetricSeries, error) {
	records, err := retry.Do(ctx, s.policy, s.obs, func(ctx context.Context) ([]repository.Metric, error) {
		return s.metrics.FindByEvaluation(ctx, baselineID)
	})
	if err != nil {
		return nil, err
	}
	return aggregateMetrics(records, &MetricsFilter{})
}

func (s *MetricsService) chartConfig(f *MetricsFilter, title string) *ChartConfig {
	chartType := f.ChartType
	if chartType == "" {
		chartType = "line"
	}
	return &ChartConfig{
		Type:       chartType,
		Title:      title,
		XAxisLabel: "Time",
		YAxisLabel: "Value",
	}
}

func (s *MetricsService) stage(ctx context.Context, st queryStage) {
	s.logger.Debugf(ctx, "metrics query stage: %s", st)
}

// retryObserver logs retry lifecycle events through the shared logger.
type retryObserver struct {
	logger *logger.Logger
}

func (o *retryObserver) OnRetry(ctx context.Context, attempt int, delay time.Duration, err error) {
	o.logger.Warnf(ctx, "store query attempt %d failed, retrying in %s: %v", attempt, delay, err)
}

func (o *retryObserver) OnExhausted(ctx context.Context, attempts int, err error) {
	o.logger.Errorf(ctx, "store query failed after %d attempts: %v", attempts, err)
}
