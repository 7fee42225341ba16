package service

import (
	"context"
	"errors"

	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/ecode"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
)

// CreateUsecaseBody is the payload for onboarding a usecase.
type CreateUsecaseBody struct {
	ModelID        string         `json:"model_id" binding:"required"`
	OnboardedTo    string         `json:"onboarded_to" binding:"required"`
	Authentication map[string]any `json:"authentication" binding:"required"`
	Description    string         `json:"description"`
	Metadata       map[string]any `json:"metadata"`
}

// UpdateUsecaseBody carries a partial update; nil fields are left untouched.
type UpdateUsecaseBody struct {
	OnboardedTo    *string        `json:"onboarded_to"`
	Authentication map[string]any `json:"authentication"`
	Description    *string        `json:"description"`
	Metadata       map[string]any `json:"metadata"`
	Status         *string        `json:"status"`
}

// UsecaseService manages onboarded usecases.
type UsecaseService struct {
	usecases repository.UsecaseRepository
	logger   *logger.Logger
}

func NewUsecaseService(d *data.Data, log *logger.Logger) *UsecaseService {
	return &UsecaseService{usecases: d.UsecaseRepo, logger: log}
}

// Create onboards a new usecase.
func (s *UsecaseService) Create(ctx context.Context, body *CreateUsecaseBody) (*repository.Usecase, error) {
	if body.ModelID == "" {
		return nil, &ValidationError{Field: "model_id", Message: ecode.FieldIsRequired("model_id")}
	}
	return s.usecases.Create(ctx, &repository.Usecase{
		ModelID:        body.ModelID,
		OnboardedTo:    body.OnboardedTo,
		Authentication: body.Authentication,
		Description:    body.Description,
		Metadata:       body.Metadata,
	})
}

// Get returns a usecase by id.
func (s *UsecaseService) Get(ctx context.Context, id string) (*repository.Usecase, error) {
	u, err := s.usecases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "usecase", ID: id}
		}
		return nil, err
	}
	return u, nil
}

// List returns all onboarded usecases.
func (s *UsecaseService) List(ctx context.Context) ([]*repository.Usecase, error) {
	return s.usecases.List(ctx)
}

// Update applies a partial update and returns the updated usecase.
func (s *UsecaseService) Update(ctx context.Context, id string, body *UpdateUsecaseBody) (*repository.Usecase, error) {
	fields := make(map[string]any)
	if body.OnboardedTo != nil {
		fields["onboarded_to"] = *body.OnboardedTo
	}
	if body.Authentication != nil {
		fields["authentication"] = body.Authentication
	}
	if body.Description != nil {
		fields["description"] = *body.Description
	}
	if body.Metadata != nil {
		fields["metadata"] = body.Metadata
	}
	if body.Status != nil {
		fields["status"] = *body.Status
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Message: "no fields to update"}
	}

	u, err := s.usecases.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "usecase", ID: id}
		}
		return nil, err
	}
	return u, nil
}

// Delete removes a usecase.
func (s *UsecaseService) Delete(ctx context.Context, id string) error {
	if err := s.usecases.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "usecase", ID: id}
		}
		return err
	}
	return nil
}
