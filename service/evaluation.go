package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/retry"
	"github.com/tachyonhq/tachyon-eval/worker"
)

// CreateEvaluationBody is the payload for scheduling an evaluation run.
type CreateEvaluationBody struct {
	DatasetID   string                     `json:"dataset_id" binding:"required"`
	Name        string                     `json:"name" binding:"required"`
	ModelID     string                     `json:"model_id" binding:"required"`
	Temperature string                     `json:"temperature"`
	Parameters  []repository.TestParameter `json:"parameters"`
}

// UpdateEvaluationBody is the payload for a partial evaluation update.
// Only the fields present are applied.
type UpdateEvaluationBody struct {
	DatasetID  *string                    `json:"dataset_id"`
	Parameters []repository.TestParameter `json:"parameters"`
	Status     *string                    `json:"status"`
	Result     map[string]any             `json:"result"`
	Error      *string                    `json:"error"`
}

// statusUpdate is the task type processed by the status worker pool.
type statusUpdate struct {
	EvaluationID string
	Status       string
}

// EvaluationService manages evaluation runs. Status transitions are applied
// asynchronously through a worker pool so a slow store write never blocks
// the caller; the writes themselves run under the retry policy.
type EvaluationService struct {
	evaluations repository.EvaluationRepository
	datasets    repository.DatasetRepository
	responses   repository.EvaluationResponseRepository
	logger      *logger.Logger
	policy      retry.Policy
	obs         retry.Observer
	pool        *worker.Pool
}

func NewEvaluationService(d *data.Data, log *logger.Logger, rc *config.Retry, wc *worker.Config) *EvaluationService {
	policy := retry.DefaultPolicy()
	if rc != nil {
		policy.MaxRetries = rc.MaxRetries
		policy.InitialDelay = rc.InitialDelay
		policy.MaxDelay = rc.MaxDelay
		policy.ExponentialBase = rc.ExponentialBase
	}
	policy.Retryable = data.IsTransient

	if wc == nil || wc.Validate() != nil {
		wc = worker.DefaultConfig()
	}

	s := &EvaluationService{
		evaluations: d.EvaluationRepo,
		datasets:    d.DatasetRepo,
		responses:   d.ResponseRepo,
		logger:      log,
		policy:      policy,
		obs:         &retryObserver{logger: log},
	}
	s.pool = worker.NewPool(wc, worker.ProcessorFunc(s.processStatusUpdate))
	return s
}

// Start launches the status worker pool.
func (s *EvaluationService) Start() {
	s.pool.Start()
}

// Stop drains queued status updates and shuts the pool down.
func (s *EvaluationService) Stop(ctx context.Context) {
	s.pool.Stop(ctx)
}

// WorkerMetrics exposes the status pool counters.
func (s *EvaluationService) WorkerMetrics() map[string]int64 {
	return s.pool.GetMetrics()
}

// Create schedules an evaluation run in pending state.
func (s *EvaluationService) Create(ctx context.Context, usecaseID string, body *CreateEvaluationBody) (*repository.Evaluation, error) {
	if _, err := s.datasets.FindByID(ctx, usecaseID, body.DatasetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "dataset", ID: body.DatasetID}
		}
		return nil, err
	}

	return s.evaluations.Create(ctx, &repository.Evaluation{
		UsecaseID:   usecaseID,
		DatasetID:   body.DatasetID,
		Name:        body.Name,
		ModelID:     body.ModelID,
		Temperature: body.Temperature,
		Parameters:  body.Parameters,
	})
}

// Get returns an evaluation by id within the usecase.
func (s *EvaluationService) Get(ctx context.Context, usecaseID, id string) (*repository.Evaluation, error) {
	ev, err := s.evaluations.FindByID(ctx, usecaseID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "evaluation", ID: id}
		}
		return nil, err
	}
	return ev, nil
}

// Update applies a partial update to an evaluation. A dataset change is
// validated against the usecase before it is written.
func (s *EvaluationService) Update(ctx context.Context, usecaseID, id string, body *UpdateEvaluationBody) (*repository.Evaluation, error) {
	fields := map[string]any{}
	if body.DatasetID != nil {
		if _, err := s.datasets.FindByID(ctx, usecaseID, *body.DatasetID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &NotFoundError{Resource: "dataset", ID: *body.DatasetID}
			}
			return nil, err
		}
		fields["dataset_id"] = *body.DatasetID
	}
	if body.Status != nil {
		if err := validStatus(*body.Status); err != nil {
			return nil, err
		}
		fields["status"] = *body.Status
	}
	if body.Parameters != nil {
		fields["parameters"] = body.Parameters
	}
	if body.Result != nil {
		fields["result"] = body.Result
	}
	if body.Error != nil {
		fields["error"] = *body.Error
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Message: "no fields to update"}
	}

	ev, err := s.evaluations.Update(ctx, usecaseID, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "evaluation", ID: id}
		}
		return nil, err
	}
	return ev, nil
}

// Responses returns the runner results of an evaluation in run order.
func (s *EvaluationService) Responses(ctx context.Context, usecaseID, id string) ([]*repository.EvaluationResponse, error) {
	if _, err := s.evaluations.FindByID(ctx, usecaseID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "evaluation", ID: id}
		}
		return nil, err
	}
	return s.responses.ListByEvaluation(ctx, id)
}

// List returns all evaluations of the usecase.
func (s *EvaluationService) List(ctx context.Context, usecaseID string) ([]*repository.Evaluation, error) {
	return s.evaluations.List(ctx, usecaseID)
}

// Delete removes an evaluation from the usecase.
func (s *EvaluationService) Delete(ctx context.Context, usecaseID, id string) error {
	if err := s.evaluations.Delete(ctx, usecaseID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "evaluation", ID: id}
		}
		return err
	}
	return nil
}

func validStatus(status string) error {
	switch status {
	case repository.StatusPending, repository.StatusRunning, repository.StatusCompleted, repository.StatusFailed:
		return nil
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
}

// SetStatus queues a status transition for background application.
func (s *EvaluationService) SetStatus(ctx context.Context, usecaseID, id, status string) error {
	if err := validStatus(status); err != nil {
		return err
	}
	if _, err := s.evaluations.FindByID(ctx, usecaseID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "evaluation", ID: id}
		}
		return err
	}

	if err := s.pool.Submit(statusUpdate{EvaluationID: id, Status: status}); err != nil {
		return err
	}
	s.logger.Infof(ctx, "queued status %s for evaluation %s", status, id)
	return nil
}

func (s *EvaluationService) processStatusUpdate(ctx context.Context, task any) error {
	upd, ok := task.(statusUpdate)
	if !ok {
		return fmt.Errorf("unexpected task type %T", task)
	}
	_, err := retry.Do(ctx, s.policy, s.obs, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.evaluations.UpdateStatus(ctx, upd.EvaluationID, upd.Status)
	})
	return err
}
