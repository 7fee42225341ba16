package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/retry"
	"github.com/tachyonhq/tachyon-eval/worker"
)

type fakeEvaluationRepo struct {
	mu          sync.Mutex
	evaluations map[string]*repository.Evaluation
	statusLog   []string
}

func (f *fakeEvaluationRepo) Create(_ context.Context, e *repository.Evaluation) (*repository.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = "eval-" + e.Name
	e.Status = repository.StatusPending
	f.evaluations[e.ID] = e
	return e, nil
}

func (f *fakeEvaluationRepo) FindByID(_ context.Context, usecaseID, id string) (*repository.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.evaluations[id]
	if !ok || e.UsecaseID != usecaseID {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeEvaluationRepo) List(_ context.Context, usecaseID string) ([]*repository.Evaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationRepo) Update(_ context.Context, usecaseID, id string, fields map[string]any) (*repository.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.evaluations[id]
	if !ok || e.UsecaseID != usecaseID {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["dataset_id"].(string); ok {
		e.DatasetID = v
	}
	if v, ok := fields["status"].(string); ok {
		e.Status = v
	}
	if v, ok := fields["error"].(string); ok {
		e.Error = v
	}
	return e, nil
}

func (f *fakeEvaluationRepo) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.evaluations[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = status
	f.statusLog = append(f.statusLog, status)
	return nil
}

func (f *fakeEvaluationRepo) Delete(_ context.Context, usecaseID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.evaluations, id)
	return nil
}

type fakeDatasetRepo struct {
	datasets map[string]*repository.Dataset
}

func (f *fakeDatasetRepo) Create(_ context.Context, d *repository.Dataset) (*repository.Dataset, error) {
	return d, nil
}

func (f *fakeDatasetRepo) FindByID(_ context.Context, usecaseID, id string) (*repository.Dataset, error) {
	d, ok := f.datasets[id]
	if !ok || d.UsecaseID != usecaseID {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDatasetRepo) FindByAlias(_ context.Context, usecaseID, alias string) (*repository.Dataset, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeDatasetRepo) List(_ context.Context, usecaseID string) ([]*repository.Dataset, error) {
	return nil, nil
}

func (f *fakeDatasetRepo) Delete(_ context.Context, usecaseID, id string) error { return nil }

type fakeResponseRepo struct {
	responses map[string][]*repository.EvaluationResponse
}

func (f *fakeResponseRepo) CreateMany(_ context.Context, rs []*repository.EvaluationResponse) error {
	for _, r := range rs {
		f.responses[r.EvaluationID] = append(f.responses[r.EvaluationID], r)
	}
	return nil
}

func (f *fakeResponseRepo) ListByEvaluation(_ context.Context, evaluationID string) ([]*repository.EvaluationResponse, error) {
	return f.responses[evaluationID], nil
}

func newTestEvaluationService(evals *fakeEvaluationRepo, datasets *fakeDatasetRepo) *EvaluationService {
	s := &EvaluationService{
		evaluations: evals,
		datasets:    datasets,
		responses:   &fakeResponseRepo{responses: map[string][]*repository.EvaluationResponse{}},
		logger:      testLogger(),
		policy: retry.Policy{
			MaxRetries:      1,
			InitialDelay:    time.Millisecond,
			MaxDelay:        time.Millisecond,
			ExponentialBase: 2.0,
			Retryable:       data.IsTransient,
		},
		obs: retry.NopObserver{},
	}
	s.pool = worker.NewPool(&worker.Config{MaxWorkers: 1, QueueSize: 8, TaskTimeout: time.Second}, worker.ProcessorFunc(s.processStatusUpdate))
	return s
}

func TestEvaluationCreateRequiresDataset(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	_, err := svc.Create(context.Background(), "uc-1", &CreateEvaluationBody{
		DatasetID: "missing", Name: "run-1", ModelID: "model-1",
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEvaluationCreateStartsPending(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{}}
	datasets := &fakeDatasetRepo{datasets: map[string]*repository.Dataset{
		"ds-1": {ID: "ds-1", UsecaseID: "uc-1", Alias: "regression"},
	}}
	svc := newTestEvaluationService(evals, datasets)

	ev, err := svc.Create(context.Background(), "uc-1", &CreateEvaluationBody{
		DatasetID: "ds-1", Name: "run-1", ModelID: "model-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Status != repository.StatusPending {
		t.Errorf("status = %s, want pending", ev.Status)
	}
}

func TestEvaluationSetStatusAppliedInBackground(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1", Status: repository.StatusPending},
	}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})
	svc.Start()

	if err := svc.SetStatus(context.Background(), "uc-1", "eval-1", repository.StatusRunning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc.Stop(ctx)

	evals.mu.Lock()
	defer evals.mu.Unlock()
	if got := evals.evaluations["eval-1"].Status; got != repository.StatusRunning {
		t.Errorf("status = %s, want running", got)
	}
}

func TestEvaluationSetStatusRejectsUnknownStatus(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	err := svc.SetStatus(context.Background(), "uc-1", "eval-1", "finished")
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEvaluationSetStatusUnknownEvaluation(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	err := svc.SetStatus(context.Background(), "uc-1", "eval-1", repository.StatusRunning)
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEvaluationUpdateAppliesFields(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1", DatasetID: "ds-1", Status: repository.StatusPending},
	}}
	datasets := &fakeDatasetRepo{datasets: map[string]*repository.Dataset{
		"ds-2": {ID: "ds-2", UsecaseID: "uc-1", Alias: "smoke"},
	}}
	svc := newTestEvaluationService(evals, datasets)

	ds := "ds-2"
	status := repository.StatusFailed
	msg := "runner crashed"
	ev, err := svc.Update(context.Background(), "uc-1", "eval-1", &UpdateEvaluationBody{
		DatasetID: &ds, Status: &status, Error: &msg,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.DatasetID != "ds-2" || ev.Status != repository.StatusFailed || ev.Error != "runner crashed" {
		t.Errorf("update not applied: %+v", ev)
	}
}

func TestEvaluationUpdateValidatesDataset(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1"},
	}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	ds := "missing"
	_, err := svc.Update(context.Background(), "uc-1", "eval-1", &UpdateEvaluationBody{DatasetID: &ds})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEvaluationUpdateRejectsEmptyBody(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1"},
	}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	_, err := svc.Update(context.Background(), "uc-1", "eval-1", &UpdateEvaluationBody{})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEvaluationUpdateRejectsUnknownStatus(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1"},
	}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	status := "finished"
	_, err := svc.Update(context.Background(), "uc-1", "eval-1", &UpdateEvaluationBody{Status: &status})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEvaluationResponses(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{
		"eval-1": {ID: "eval-1", UsecaseID: "uc-1"},
	}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})
	seed := []*repository.EvaluationResponse{
		{EvaluationID: "eval-1", Status: repository.StatusCompleted, Data: repository.ResponseData{Order: 0, Success: true}},
	}
	if err := svc.responses.CreateMany(context.Background(), seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rs, err := svc.Responses(context.Background(), "uc-1", "eval-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 || !rs[0].Data.Success {
		t.Errorf("responses = %+v, want one successful response", rs)
	}
}

func TestEvaluationResponsesUnknownEvaluation(t *testing.T) {
	evals := &fakeEvaluationRepo{evaluations: map[string]*repository.Evaluation{}}
	svc := newTestEvaluationService(evals, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	_, err := svc.Responses(context.Background(), "uc-1", "eval-1")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
