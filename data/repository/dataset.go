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

// Dataset represents a named collection of goldens under a usecase.
type Dataset struct {
	ID        string    `bson:"id" json:"id"`
	UsecaseID string    `bson:"usecase_id" json:"usecase_id"`
	Alias     string    `bson:"alias" json:"alias"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DatasetRepository defines the interface for dataset data operations.
type DatasetRepository interface {
	Create(ctx context.Context, d *Dataset) (*Dataset, error)
	FindByID(ctx context.Context, usecaseID, id string) (*Dataset, error)
	FindByAlias(ctx context.Context, usecaseID, alias string) (*Dataset, error)
	List(ctx context.Context, usecaseID string) ([]*Dataset, error)
	Delete(ctx context.Context, usecaseID, id string) error
}

type datasetRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewDatasetRepository creates a new dataset repository instance.
func NewDatasetRepository(db *mongo.Database, logger *logger.Logger) DatasetRepository {
	return &datasetRepository{
		collection: db.Collection("datasets"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// Create creates a new dataset; aliases are unique within a usecase.
func (r *datasetRepository) Create(ctx context.Context, d *Dataset) (*Dataset, error) {
	existing := r.collection.FindOne(ctx, bson.M{"usecase_id": d.UsecaseID, "alias": d.Alias})
	if existing.Err() == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(existing.Err(), mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check dataset alias: %w", existing.Err())
	}

	now := time.Now().UTC()
	d.ID = r.newID()
	d.CreatedAt = now
	d.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, d); err != nil {
		r.logger.Errorf(ctx, "failed to create dataset %s: %v", d.Alias, err)
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	r.logger.Infof(ctx, "dataset %s created with alias %s", d.ID, d.Alias)
	return d, nil
}

// FindByID retrieves a dataset scoped to its usecase.
func (r *datasetRepository) FindByID(ctx context.Context, usecaseID, id string) (*Dataset, error) {
	var d Dataset
	err := r.collection.FindOne(ctx, bson.M{"id": id, "usecase_id": usecaseID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dataset: %w", err)
	}
	return &d, nil
}

// FindByAlias retrieves a dataset by its alias within a usecase.
func (r *datasetRepository) FindByAlias(ctx context.Context, usecaseID, alias string) (*Dataset, error) {
	var d Dataset
	err := r.collection.FindOne(ctx, bson.M{"alias": alias, "usecase_id": usecaseID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dataset: %w", err)
	}
	return &d, nil
}

// List retrieves all datasets for a usecase, newest first.
func (r *datasetRepository) List(ctx context.Context, usecaseID string) ([]*Dataset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"usecase_id": usecaseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer cursor.Close(ctx)

	var datasets []*Dataset
	if err := cursor.All(ctx, &datasets); err != nil {
		return nil, fmt.Errorf("failed to decode datasets: %w", err)
	}
	return datasets, nil
}

// Delete removes a dataset by ID.
func (r *datasetRepository) Delete(ctx context.Context, usecaseID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id, "usecase_id": usecaseID})
	if err != nil {
		r.logger.Errorf(ctx, "failed to delete dataset %s: %v", id, err)
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	r.logger.Infof(ctx, "dataset %s deleted", id)
	return nil
}
