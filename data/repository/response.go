package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/nanoid"
)

// MetricResult is one metric verdict inside an evaluation response.
type MetricResult struct {
	Name            string  `bson:"name" json:"name"`
	Threshold       float64 `bson:"threshold" json:"threshold"`
	Success         bool    `bson:"success" json:"success"`
	Score           float64 `bson:"score" json:"score"`
	Reason          string  `bson:"reason" json:"reason"`
	StrictMode      bool    `bson:"strict_mode" json:"strict_mode"`
	EvaluationModel string  `bson:"evaluation_model" json:"evaluation_model"`
	VerboseLogs     string  `bson:"verbose_logs,omitempty" json:"verbose_logs,omitempty"`
}

// ResponseData is the per-golden outcome recorded by the evaluation runner.
type ResponseData struct {
	Name             string         `bson:"name" json:"name"`
	Input            string         `bson:"input" json:"input"`
	ActualOutput     string         `bson:"actual_output" json:"actual_output"`
	ExpectedOutput   string         `bson:"expected_output" json:"expected_output"`
	Context          string         `bson:"context,omitempty" json:"context,omitempty"`
	RetrievalContext string         `bson:"retrieval_context,omitempty" json:"retrieval_context,omitempty"`
	Success          bool           `bson:"success" json:"success"`
	MetricsData      []MetricResult `bson:"metrics_data" json:"metrics_data"`
	RunDuration      float64        `bson:"run_duration" json:"run_duration"`
	Order            int            `bson:"order" json:"order"`
}

// EvaluationResponse is one runner result attached to an evaluation.
type EvaluationResponse struct {
	ID           string       `bson:"id" json:"id"`
	EvaluationID string       `bson:"evaluation_id" json:"evaluation_id"`
	UsecaseID    string       `bson:"usecase_id" json:"usecase_id"`
	DatasetID    string       `bson:"dataset_id" json:"dataset_id"`
	ModelID      string       `bson:"model_id" json:"model_id"`
	Status       string       `bson:"status" json:"status"`
	Data         ResponseData `bson:"data" json:"data"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
}

// EvaluationResponseRepository defines the interface for evaluation
// response data operations. Responses are written in batches by the
// evaluation runner and read back per evaluation.
type EvaluationResponseRepository interface {
	CreateMany(ctx context.Context, rs []*EvaluationResponse) error
	ListByEvaluation(ctx context.Context, evaluationID string) ([]*EvaluationResponse, error)
}

type evaluationResponseRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	newID      func() string
}

// NewEvaluationResponseRepository creates a new evaluation response
// repository instance.
func NewEvaluationResponseRepository(db *mongo.Database, logger *logger.Logger) EvaluationResponseRepository {
	return &evaluationResponseRepository{
		collection: db.Collection("evaluation_responses"),
		logger:     logger,
		newID:      nanoid.PrimaryKey(),
	}
}

// CreateMany stores a batch of responses for an evaluation run.
func (r *evaluationResponseRepository) CreateMany(ctx context.Context, rs []*EvaluationResponse) error {
	if len(rs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(rs))
	for i, resp := range rs {
		resp.ID = r.newID()
		resp.CreatedAt = now
		docs[i] = resp
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		r.logger.Errorf(ctx, "failed to store %d evaluation responses: %v", len(rs), err)
		return fmt.Errorf("failed to store evaluation responses: %w", err)
	}
	return nil
}

// ListByEvaluation retrieves all responses of an evaluation in run order.
func (r *evaluationResponseRepository) ListByEvaluation(ctx context.Context, evaluationID string) ([]*EvaluationResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "data.order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"evaluation_id": evaluationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation responses: %w", err)
	}
	defer cursor.Close(ctx)

	var responses []*EvaluationResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation responses: %w", err)
	}
	return responses, nil
}
