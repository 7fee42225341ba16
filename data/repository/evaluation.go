package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/nanoid"
)

// Evaluation statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TestParameter is a named evaluation parameter.
type TestParameter struct {
	Name  string `bson:"name" json:"name"`
	Value string `bson:"value" json:"value"`
}

// Evaluation represents a single evaluation run of a dataset.
type Evaluation struct {
	ID          string          `bson:"id" json:"id"`
	UsecaseID   string          `bson:"usecase_id" json:"usecase_id"`
	DatasetID   string          `bson:"dataset_id" json:"dataset_id"`
	Name        string          `bson:"evaluation_name" json:"evaluation_name"`
	ModelID     string          `bson:"model_id" json:"model_id"`
	Temperature string          `bson:"temperature" json:"temperature"`
	Parameters  []TestParameter `bson:"parameters" json:"parameters"`
	Status      string          `bson:"status" json:"status"`
	Result      map[string]any  `bson:"result,omitempty" json:"result,omitempty"`
	Error       string          `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time      `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	FailedAt    *time.Time      `bson:"failed_at,omitempty" json:"failed_at,omitempty"`
}

// EvaluationRepository defines the interface for evaluation data operations.
type EvaluationRepository interface {
	Create(ctx context.Context, e *Evaluation) (*Evaluation, error)
	FindByID(ctx context.Context, usecaseID, id string) (*Evaluation, error)
	List(ctx context.Context, usecaseID string) ([]*Evaluation, error)
	Update(ctx context.Context, usecaseID, id string, fields map[string]any) (*Evaluation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, usecaseID, id string) error
}

type evaluationRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewEvaluationRepository creates a new evaluation repository instance.
func NewEvaluationRepository(db *mongo.Database, logger *logger.Logger) EvaluationRepository {
	return &evaluationRepository{
		collection: db.Collection("evaluations"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// Create creates a new evaluation in pending state.
func (r *evaluationRepository) Create(ctx context.Context, e *Evaluation) (*Evaluation, error) {
	now := time.Now().UTC()
	e.ID = r.newID()
	e.Status = StatusPending
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, e); err != nil {
		r.logger.Errorf(ctx, "failed to create evaluation %s: %v", e.Name, err)
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}

	r.logger.Infof(ctx, "evaluation %s created with name %s", e.ID, e.Name)
	return e, nil
}

// FindByID retrieves an evaluation scoped to its usecase.
func (r *evaluationRepository) FindByID(ctx context.Context, usecaseID, id string) (*Evaluation, error) {
	var e Evaluation
	err := r.collection.FindOne(ctx, bson.M{"id": id, "usecase_id": usecaseID}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &e, nil
}

// List retrieves all evaluations for a usecase, newest first.
func (r *evaluationRepository) List(ctx context.Context, usecaseID string) ([]*Evaluation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"usecase_id": usecaseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	var evaluations []*Evaluation
	if err := cursor.All(ctx, &evaluations); err != nil {
		return nil, fmt.Errorf("failed to decode evaluations: %w", err)
	}
	return evaluations, nil
}

// Update applies a partial update and returns the updated evaluation.
func (r *evaluationRepository) Update(ctx context.Context, usecaseID, id string, fields map[string]any) (*Evaluation, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"id": id, "usecase_id": usecaseID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Errorf(ctx, "failed to update evaluation %s: %v", id, result.Err())
		return nil, fmt.Errorf("failed to update evaluation: %w", result.Err())
	}

	var updated Evaluation
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated evaluation: %w", err)
	}

	r.logger.Infof(ctx, "evaluation %s updated", id)
	return &updated, nil
}

// UpdateStatus transitions an evaluation to a new status, stamping
// completed_at or failed_at for terminal states.
func (r *evaluationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case StatusCompleted:
		set["completed_at"] = now
	case StatusFailed:
		set["failed_at"] = now
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		r.logger.Errorf(ctx, "failed to update evaluation %s status to %s: %v", id, status, err)
		return fmt.Errorf("failed to update evaluation status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	r.logger.Infof(ctx, "evaluation %s status updated to %s", id, status)
	return nil
}

// Delete removes an evaluation by ID.
func (r *evaluationRepository) Delete(ctx context.Context, usecaseID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id, "usecase_id": usecaseID})
	if err != nil {
		r.logger.Errorf(ctx, "failed to delete evaluation %s: %v", id, err)
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	r.logger.Infof(ctx, "evaluation %s deleted", id)
	return nil
}
