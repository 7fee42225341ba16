package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
)

// CreateGoldenBody is the payload for a single golden record.
type CreateGoldenBody struct {
	Input            string `json:"input" binding:"required"`
	ActualOutput     string `json:"actual_output"`
	ExpectedOutput   string `json:"expected_output" binding:"required"`
	Context          string `json:"context"`
	RetrievalContext string `json:"retrieval_context"`
}

// UpdateGoldenBody is the payload for a partial golden update. Only the
// fields present are applied.
type UpdateGoldenBody struct {
	Input            *string `json:"input"`
	ActualOutput     *string `json:"actual_output"`
	ExpectedOutput   *string `json:"expected_output"`
	Context          *string `json:"context"`
	RetrievalContext *string `json:"retrieval_context"`
}

// GenerateGoldensBody is the payload for template-based golden generation.
// Input, expected output, and context serve as templates that are expanded
// per generated record.
type GenerateGoldensBody struct {
	Input          string `json:"input" binding:"required"`
	ExpectedOutput string `json:"expected_output" binding:"required"`
	Context        string `json:"context"`
	Count          int    `json:"count" binding:"required,min=1"`
}

// GoldenService manages golden records within a dataset.
type GoldenService struct {
	goldens  repository.GoldenRepository
	datasets repository.DatasetRepository
	logger   *logger.Logger
}

func NewGoldenService(d *data.Data, log *logger.Logger) *GoldenService {
	return &GoldenService{goldens: d.GoldenRepo, datasets: d.DatasetRepo, logger: log}
}

// Create adds one golden to the dataset.
func (s *GoldenService) Create(ctx context.Context, usecaseID, datasetID string, body *CreateGoldenBody) (*repository.Golden, error) {
	if err := s.checkDataset(ctx, usecaseID, datasetID); err != nil {
		return nil, err
	}
	return s.goldens.Create(ctx, s.toGolden(usecaseID, datasetID, body))
}

// Import adds a batch of goldens to the dataset in one write.
func (s *GoldenService) Import(ctx context.Context, usecaseID, datasetID string, bodies []CreateGoldenBody) (int, error) {
	if len(bodies) == 0 {
		return 0, &ValidationError{Field: "goldens", Message: "at least one golden is required"}
	}
	if err := s.checkDataset(ctx, usecaseID, datasetID); err != nil {
		return 0, err
	}

	gs := make([]*repository.Golden, len(bodies))
	for i := range bodies {
		if bodies[i].Input == "" {
			return 0, &ValidationError{Field: "input", Message: fmt.Sprintf("golden %d is missing input", i)}
		}
		gs[i] = s.toGolden(usecaseID, datasetID, &bodies[i])
	}
	if err := s.goldens.CreateMany(ctx, gs); err != nil {
		return 0, err
	}
	return len(gs), nil
}

// Generate synthesizes count goldens from the body's templates and stores
// them in one write.
func (s *GoldenService) Generate(ctx context.Context, usecaseID, datasetID string, body *GenerateGoldensBody) ([]*repository.Golden, error) {
	if body.Count < 1 {
		return nil, &ValidationError{Field: "count", Message: "count must be at least 1"}
	}
	if err := s.checkDataset(ctx, usecaseID, datasetID); err != nil {
		return nil, err
	}

	gs := make([]*repository.Golden, body.Count)
	for i := range gs {
		n := i + 1
		gs[i] = &repository.Golden{
			UsecaseID:      usecaseID,
			DatasetID:      datasetID,
			Input:          fmt.Sprintf("%s %d about %s", body.Input, n, datasetID),
			ExpectedOutput: fmt.Sprintf("%s for question %d", body.ExpectedOutput, n),
			Context:        fmt.Sprintf("%s for question %d", body.Context, n),
		}
	}
	if err := s.goldens.CreateMany(ctx, gs); err != nil {
		return nil, err
	}
	s.logger.Infof(ctx, "generated %d goldens for dataset %s", len(gs), datasetID)
	return gs, nil
}

// Update applies a partial update to a golden within the dataset.
func (s *GoldenService) Update(ctx context.Context, usecaseID, datasetID, id string, body *UpdateGoldenBody) (*repository.Golden, error) {
	if err := s.checkDataset(ctx, usecaseID, datasetID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if body.Input != nil {
		fields["input"] = *body.Input
	}
	if body.ActualOutput != nil {
		fields["actual_output"] = *body.ActualOutput
	}
	if body.ExpectedOutput != nil {
		fields["expected_output"] = *body.ExpectedOutput
	}
	if body.Context != nil {
		fields["context"] = *body.Context
	}
	if body.RetrievalContext != nil {
		fields["retrieval_context"] = *body.RetrievalContext
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Message: "no fields to update"}
	}

	g, err := s.goldens.Update(ctx, datasetID, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "golden", ID: id}
		}
		return nil, err
	}
	return g, nil
}

// Get returns a golden by id within the dataset.
func (s *GoldenService) Get(ctx context.Context, datasetID, id string) (*repository.Golden, error) {
	g, err := s.goldens.FindByID(ctx, datasetID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "golden", ID: id}
		}
		return nil, err
	}
	return g, nil
}

// List returns all goldens of the dataset.
func (s *GoldenService) List(ctx context.Context, usecaseID, datasetID string) ([]*repository.Golden, error) {
	if err := s.checkDataset(ctx, usecaseID, datasetID); err != nil {
		return nil, err
	}
	return s.goldens.List(ctx, datasetID)
}

// Delete removes a golden from the dataset.
func (s *GoldenService) Delete(ctx context.Context, datasetID, id string) error {
	if err := s.goldens.Delete(ctx, datasetID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "golden", ID: id}
		}
		return err
	}
	return nil
}

func (s *GoldenService) checkDataset(ctx context.Context, usecaseID, datasetID string) error {
	if _, err := s.datasets.FindByID(ctx, usecaseID, datasetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "dataset", ID: datasetID}
		}
		return err
	}
	return nil
}

func (s *GoldenService) toGolden(usecaseID, datasetID string, body *CreateGoldenBody) *repository.Golden {
	return &repository.Golden{
		UsecaseID:        usecaseID,
		DatasetID:        datasetID,
		Input:            body.Input,
		ActualOutput:     body.ActualOutput,
		ExpectedOutput:   body.ExpectedOutput,
		Context:          body.Context,
		RetrievalContext: body.RetrievalContext,
	}
}
