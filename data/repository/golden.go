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

// Golden is a reference input/output pair inside a dataset.
type Golden struct {
	ID               string    `bson:"id" json:"id"`
	UsecaseID        string    `bson:"usecase_id" json:"usecase_id"`
	DatasetID        string    `bson:"dataset_id" json:"dataset_id"`
	Input            string    `bson:"input" json:"input"`
	ActualOutput     string    `bson:"actual_output,omitempty" json:"actual_output,omitempty"`
	ExpectedOutput   string    `bson:"expected_output" json:"expected_output"`
	Context          string    `bson:"context" json:"context"`
	RetrievalContext string    `bson:"retrieval_context,omitempty" json:"retrieval_context,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// GoldenRepository defines the interface for golden data operations.
type GoldenRepository interface {
	Create(ctx context.Context, g *Golden) (*Golden, error)
	CreateMany(ctx context.Context, gs []*Golden) error
	FindByID(ctx context.Context, datasetID, id string) (*Golden, error)
	List(ctx context.Context, datasetID string) ([]*Golden, error)
	Update(ctx context.Context, datasetID, id string, fields map[string]any) (*Golden, error)
	Delete(ctx context.Context, datasetID, id string) error
}

type goldenRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewGoldenRepository creates a new golden repository instance.
func NewGoldenRepository(db *mongo.Database, logger *logger.Logger) GoldenRepository {
	return &goldenRepository{
		collection: db.Collection("goldens"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// Create creates a new golden.
func (r *goldenRepository) Create(ctx context.Context, g *Golden) (*Golden, error) {
	now := time.Now().UTC()
	g.ID = r.newID()
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, g); err != nil {
		r.logger.Errorf(ctx, "failed to create golden in dataset %s: %v", g.DatasetID, err)
		return nil, fmt.Errorf("failed to create golden: %w", err)
	}
	return g, nil
}

// CreateMany stores a batch of goldens (dataset imports).
func (r *goldenRepository) CreateMany(ctx context.Context, gs []*Golden) error {
	if len(gs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(gs))
	for i, g := range gs {
		g.ID = r.newID()
		g.CreatedAt = now
		g.UpdatedAt = now
		docs[i] = g
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		r.logger.Errorf(ctx, "failed to import %d goldens: %v", len(gs), err)
		return fmt.Errorf("failed to import goldens: %w", err)
	}
	r.logger.Infof(ctx, "imported %d goldens", len(gs))
	return nil
}

// FindByID retrieves a golden scoped to its dataset.
func (r *goldenRepository) FindByID(ctx context.Context, datasetID, id string) (*Golden, error) {
	var g Golden
	err := r.collection.FindOne(ctx, bson.M{"id": id, "dataset_id": datasetID}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find golden: %w", err)
	}
	return &g, nil
}

// List retrieves all goldens in a dataset.
func (r *goldenRepository) List(ctx context.Context, datasetID string) ([]*Golden, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"dataset_id": datasetID})
	if err != nil {
		return nil, fmt.Errorf("failed to list goldens: %w", err)
	}
	defer cursor.Close(ctx)

	var goldens []*Golden
	if err := cursor.All(ctx, &goldens); err != nil {
		return nil, fmt.Errorf("failed to decode goldens: %w", err)
	}
	return goldens, nil
}

// Update applies a partial update and returns the updated golden.
func (r *goldenRepository) Update(ctx context.Context, datasetID, id string, fields map[string]any) (*Golden, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"id": id, "dataset_id": datasetID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Errorf(ctx, "failed to update golden %s: %v", id, result.Err())
		return nil, fmt.Errorf("failed to update golden: %w", result.Err())
	}

	var updated Golden
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated golden: %w", err)
	}
	return &updated, nil
}

// Delete removes a golden by ID.
func (r *goldenRepository) Delete(ctx context.Context, datasetID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id, "dataset_id": datasetID})
	if err != nil {
		r.logger.Errorf(ctx, "failed to delete golden %s: %v", id, err)
		return fmt.Errorf("failed to delete golden: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
