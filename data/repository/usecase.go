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

// Usecase represents an onboarded model usecase.
type Usecase struct {
	ID             string         `bson:"id" json:"id"`
	ModelID        string         `bson:"model_id" json:"model_id"`
	OnboardedTo    string         `bson:"onboarded_to" json:"onboarded_to"`
	Authentication map[string]any `bson:"authentication" json:"authentication"`
	Description    string         `bson:"description,omitempty" json:"description,omitempty"`
	Metadata       map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Status         string         `bson:"status" json:"status"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// UsecaseRepository defines the interface for usecase data operations.
type UsecaseRepository interface {
	Create(ctx context.Context, u *Usecase) (*Usecase, error)
	FindByID(ctx context.Context, id string) (*Usecase, error)
	List(ctx context.Context) ([]*Usecase, error)
	Update(ctx context.Context, id string, fields map[string]any) (*Usecase, error)
	Delete(ctx context.Context, id string) error
}

type usecaseRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewUsecaseRepository creates a new usecase repository instance.
func NewUsecaseRepository(db *mongo.Database, logger *logger.Logger) UsecaseRepository {
	return &usecaseRepository{
		collection: db.Collection("usecases"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// Create creates a new usecase.
func (r *usecaseRepository) Create(ctx context.Context, u *Usecase) (*Usecase, error) {
	now := time.Now().UTC()
	u.ID = r.newID()
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, u); err != nil {
		r.logger.Errorf(ctx, "failed to create usecase for model %s: %v", u.ModelID, err)
		return nil, fmt.Errorf("failed to create usecase: %w", err)
	}

	r.logger.Infof(ctx, "usecase %s created", u.ID)
	return u, nil
}

// FindByID retrieves a usecase by ID.
func (r *usecaseRepository) FindByID(ctx context.Context, id string) (*Usecase, error) {
	var u Usecase
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find usecase: %w", err)
	}
	return &u, nil
}

// List retrieves all usecases, newest first.
func (r *usecaseRepository) List(ctx context.Context) ([]*Usecase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list usecases: %w", err)
	}
	defer cursor.Close(ctx)

	var usecases []*Usecase
	if err := cursor.All(ctx, &usecases); err != nil {
		return nil, fmt.Errorf("failed to decode usecases: %w", err)
	}
	return usecases, nil
}

// Update applies a partial update and returns the updated usecase.
func (r *usecaseRepository) Update(ctx context.Context, id string, fields map[string]any) (*Usecase, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Errorf(ctx, "failed to update usecase %s: %v", id, result.Err())
		return nil, fmt.Errorf("failed to update usecase: %w", result.Err())
	}

	var updated Usecase
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated usecase: %w", err)
	}

	r.logger.Infof(ctx, "usecase %s updated", id)
	return &updated, nil
}

// Delete removes a usecase by ID.
func (r *usecaseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		r.logger.Errorf(ctx, "failed to delete usecase %s: %v", id, err)
		return fmt.Errorf("failed to delete usecase: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	r.logger.Infof(ctx, "usecase %s deleted", id)
	return nil
}
