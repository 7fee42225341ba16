package service

import (
	"context"
	"errors"

	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/ecode"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
)

// CreateDatasetBody is the payload for registering a dataset.
type CreateDatasetBody struct {
	Alias string `json:"alias" binding:"required"`
}

// ErrAliasTaken reports a dataset alias collision within a usecase.
var ErrAliasTaken = errors.New("dataset alias already in use")

// DatasetService manages datasets scoped to a usecase.
type DatasetService struct {
	datasets repository.DatasetRepository
	usecases repository.UsecaseRepository
	logger   *logger.Logger
}

func NewDatasetService(d *data.Data, log *logger.Logger) *DatasetService {
	return &DatasetService{datasets: d.DatasetRepo, usecases: d.UsecaseRepo, logger: log}
}

// Create registers a dataset under the usecase. The alias must be unique
// within that usecase.
func (s *DatasetService) Create(ctx context.Context, usecaseID string, body *CreateDatasetBody) (*repository.Dataset, error) {
	if body.Alias == "" {
		return nil, &ValidationError{Field: "alias", Message: ecode.FieldIsRequired("alias")}
	}
	if _, err := s.usecases.FindByID(ctx, usecaseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "usecase", ID: usecaseID}
		}
		return nil, err
	}

	ds, err := s.datasets.Create(ctx, &repository.Dataset{
		UsecaseID: usecaseID,
		Alias:     body.Alias,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAliasTaken
		}
		return nil, err
	}
	return ds, nil
}

// Get returns a dataset by id within the usecase.
func (s *DatasetService) Get(ctx context.Context, usecaseID, id string) (*repository.Dataset, error) {
	ds, err := s.datasets.FindByID(ctx, usecaseID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "dataset", ID: id}
		}
		return nil, err
	}
	return ds, nil
}

// GetByAlias returns the dataset carrying the alias within the usecase.
func (s *DatasetService) GetByAlias(ctx context.Context, usecaseID, alias string) (*repository.Dataset, error) {
	ds, err := s.datasets.FindByAlias(ctx, usecaseID, alias)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "dataset", ID: alias}
		}
		return nil, err
	}
	return ds, nil
}

// List returns all datasets of the usecase.
func (s *DatasetService) List(ctx context.Context, usecaseID string) ([]*repository.Dataset, error) {
	return s.datasets.List(ctx, usecaseID)
}

// Delete removes a dataset from the usecase.
func (s *DatasetService) Delete(ctx context.Context, usecaseID, id string) error {
	if err := s.datasets.Delete(ctx, usecaseID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "dataset", ID: id}
		}
		return err
	}
	return nil
}
