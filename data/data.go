// Package data manages the MongoDB connection and exposes repositories.
// The store handle is an explicit capability passed to services at
// construction; there is no process-wide singleton.
package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client *mongo.Client
	db     *mongo.Database

	MetricRepo     repository.MetricRepository
	DatasetRepo    repository.DatasetRepository
	EvaluationRepo repository.EvaluationRepository
	UsecaseRepo    repository.UsecaseRepository
	GoldenRepo     repository.GoldenRepository
	ResponseRepo   repository.EvaluationResponseRepository
}

// New creates a new Data instance with a MongoDB connection.
func New(cfg *config.MongoDB, log *logger.Logger) (*Data, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Infof(ctx, "connected to MongoDB database %s", cfg.Database)

	db := client.Database(cfg.Database)

	return &Data{
		client:         client,
		db:             db,
		MetricRepo:     repository.NewMetricRepository(db, log),
		DatasetRepo:    repository.NewDatasetRepository(db, log),
		EvaluationRepo: repository.NewEvaluationRepository(db, log),
		UsecaseRepo:    repository.NewUsecaseRepository(db, log),
		GoldenRepo:     repository.NewGoldenRepository(db, log),
		ResponseRepo:   repository.NewEvaluationResponseRepository(db, log),
	}, nil
}

// Close closes the MongoDB connection.
func (d *Data) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// Ping verifies the store connection is alive.
func (d *Data) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// DB returns the MongoDB database instance.
func (d *Data) DB() *mongo.Database {
	return d.db
}
