// Package service implements the application's business logic: metric
// aggregation and the record services for usecases, datasets, evaluations,
// and goldens. Services validate input, translate store errors into the
// package's error types, and leave transport concerns to the handlers.
package service

import (
	"context"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/worker"
)

// Service bundles all application services behind one handle.
type Service struct {
	Metrics    *MetricsService
	Usecase    *UsecaseService
	Dataset    *DatasetService
	Evaluation *EvaluationService
	Golden     *GoldenService
}

// New wires the services against the data layer. The evaluation service's
// status worker pool is started here; Shutdown drains it.
func New(cfg *config.Config, d *data.Data, log *logger.Logger) *Service {
	var retryCfg *config.Retry
	if cfg != nil {
		retryCfg = cfg.Retry
	}

	evaluation := NewEvaluationService(d, log, retryCfg, worker.DefaultConfig())
	evaluation.Start()

	return &Service{
		Metrics:    NewMetricsService(d, log, retryCfg),
		Usecase:    NewUsecaseService(d, log),
		Dataset:    NewDatasetService(d, log),
		Evaluation: evaluation,
		Golden:     NewGoldenService(d, log),
	}
}

// Shutdown drains in-flight background work.
func (s *Service) Shutdown(ctx context.Context) {
	s.Evaluation.Stop(ctx)
}
