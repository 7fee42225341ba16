// Package repository provides MongoDB-backed persistence for evaluation
// records and raw metric points.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/nanoid"
)

// Metric is a raw measurement document as stored. Value and Timestamp are
// pointers so that documents missing them decode to nil and can be rejected
// downstream instead of silently reading zero values.
type Metric struct {
	ID                 string             `bson:"id,omitempty" json:"id,omitempty"`
	UsecaseID          string             `bson:"usecase_id" json:"usecase_id"`
	DatasetID          string             `bson:"dataset_id,omitempty" json:"dataset_id,omitempty"`
	EvaluationID       string             `bson:"evaluation_id,omitempty" json:"evaluation_id,omitempty"`
	Name               string             `bson:"name" json:"name"`
	Value              *float64           `bson:"value" json:"value"`
	Timestamp          *time.Time         `bson:"timestamp" json:"timestamp"`
	ConfidenceInterval map[string]float64 `bson:"confidence_interval,omitempty" json:"confidence_interval,omitempty"`
	Category           string             `bson:"category,omitempty" json:"category,omitempty"`
	Label              string             `bson:"label,omitempty" json:"label,omitempty"`
	Metadata           map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// MetricScope narrows a metric query to a usecase and optionally to one
// dataset or evaluation.
type MetricScope struct {
	UsecaseID    string
	DatasetID    string
	EvaluationID string
}

// TimeRange bounds a metric query by timestamp; either side may be nil.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// MetricRepository defines the interface for metric point data operations.
type MetricRepository interface {
	Find(ctx context.Context, scope MetricScope, tr TimeRange) ([]Metric, error)
	FindByEvaluation(ctx context.Context, evaluationID string) ([]Metric, error)
	Insert(ctx context.Context, m *Metric) error
	InsertMany(ctx context.Context, ms []Metric) error
	EnsureIndexes(ctx context.Context) error
}

type metricRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewMetricRepository creates a new metric repository instance.
func NewMetricRepository(db *mongo.Database, logger *logger.Logger) MetricRepository {
	return &metricRepository{
		collection: db.Collection("metrics"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// Find returns all metric points matching the scope and time range, in
// store-return order.
func (r *metricRepository) Find(ctx context.Context, scope MetricScope, tr TimeRange) ([]Metric, error) {
	query := bson.M{"usecase_id": scope.UsecaseID}
	if scope.DatasetID != "" {
		query["dataset_id"] = scope.DatasetID
	}
	if scope.EvaluationID != "" {
		query["evaluation_id"] = scope.EvaluationID
	}
	if tr.Start != nil || tr.End != nil {
		ts := bson.M{}
		if tr.Start != nil {
			ts["$gte"] = *tr.Start
		}
		if tr.End != nil {
			ts["$lte"] = *tr.End
		}
		query["timestamp"] = ts
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer cursor.Close(ctx)

	var metrics []Metric
	if err := cursor.All(ctx, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}

	return metrics, nil
}

// FindByEvaluation returns every metric point recorded for one evaluation,
// used as a baseline set for comparisons.
func (r *metricRepository) FindByEvaluation(ctx context.Context, evaluationID string) ([]Metric, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"evaluation_id": evaluationID})
	if err != nil {
		return nil, fmt.Errorf("failed to query baseline metrics: %w", err)
	}
	defer cursor.Close(ctx)

	var metrics []Metric
	if err := cursor.All(ctx, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode baseline metrics: %w", err)
	}

	return metrics, nil
}

// Insert stores a single metric point.
func (r *metricRepository) Insert(ctx context.Context, m *Metric) error {
	if m.ID == "" {
		m.ID = r.newID()
	}
	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		r.logger.Errorf(ctx, "failed to insert metric %s: %v", m.Name, err)
		return fmt.Errorf("failed to insert metric: %w", err)
	}
	return nil
}

// InsertMany stores a batch of metric points.
func (r *metricRepository) InsertMany(ctx context.Context, ms []Metric) error {
	if len(ms) == 0 {
		return nil
	}
	docs := make([]any, len(ms))
	for i := range ms {
		if ms[i].ID == "" {
			ms[i].ID = r.newID()
		}
		docs[i] = ms[i]
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		r.logger.Errorf(ctx, "failed to insert %d metrics: %v", len(ms), err)
		return fmt.Errorf("failed to insert metrics: %w", err)
	}
	return nil
}

// EnsureIndexes creates the query indexes for the metrics collection.
func (r *metricRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "usecase_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "dataset_id", Value: 1}}},
		{Keys: bson.D{{Key: "evaluation_id", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create metric indexes: %w", err)
	}
	return nil
}
