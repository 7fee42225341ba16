package commands

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/data/repository"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
)

// NewSeedCommand creates the seed command. It provisions indexes and loads a
// small demo usecase with a dataset, goldens, an evaluation, and a week of
// metric points.
func NewSeedCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create indexes and load demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func runSeed(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, loggerCleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer loggerCleanup()

	d, err := data.New(cfg.Data.MongoDB, log)
	if err != nil {
		return fmt.Errorf("failed to create data layer: %w", err)
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := d.MetricRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	usecase, err := d.UsecaseRepo.Create(ctx, &repository.Usecase{
		ModelID:        "demo-model",
		OnboardedTo:    "staging",
		Authentication: map[string]any{"mode": "api_key"},
		Description:    "Seeded demo usecase",
	})
	if err != nil {
		return fmt.Errorf("failed to create usecase: %w", err)
	}

	dataset, err := d.DatasetRepo.Create(ctx, &repository.Dataset{
		UsecaseID: usecase.ID,
		Alias:     "regression-suite",
	})
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	goldens := []*repository.Golden{
		{UsecaseID: usecase.ID, DatasetID: dataset.ID, Input: "What is the refund window?", ExpectedOutput: "30 days from delivery.", Context: "refund policy"},
		{UsecaseID: usecase.ID, DatasetID: dataset.ID, Input: "How do I reset my password?", ExpectedOutput: "Use the reset link on the sign-in page.", Context: "account help"},
	}
	if err := d.GoldenRepo.CreateMany(ctx, goldens); err != nil {
		return fmt.Errorf("failed to create goldens: %w", err)
	}

	evaluation, err := d.EvaluationRepo.Create(ctx, &repository.Evaluation{
		UsecaseID: usecase.ID,
		DatasetID: dataset.ID,
		Name:      "seed-run",
		ModelID:   usecase.ModelID,
	})
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	if err := d.MetricRepo.InsertMany(ctx, seedMetrics(usecase.ID, dataset.ID, evaluation.ID)); err != nil {
		return fmt.Errorf("failed to insert metrics: %w", err)
	}

	if err := d.ResponseRepo.CreateMany(ctx, seedResponses(evaluation, goldens)); err != nil {
		return fmt.Errorf("failed to insert evaluation responses: %w", err)
	}

	log.Infof(ctx, "seeded usecase %s with dataset %s and evaluation %s", usecase.ID, dataset.ID, evaluation.ID)
	return nil
}

func seedResponses(ev *repository.Evaluation, goldens []*repository.Golden) []*repository.EvaluationResponse {
	responses := make([]*repository.EvaluationResponse, len(goldens))
	for i, g := range goldens {
		responses[i] = &repository.EvaluationResponse{
			EvaluationID: ev.ID,
			UsecaseID:    ev.UsecaseID,
			DatasetID:    ev.DatasetID,
			ModelID:      ev.ModelID,
			Status:       repository.StatusCompleted,
			Data: repository.ResponseData{
				Name:           fmt.Sprintf("case-%d", i+1),
				Input:          g.Input,
				ActualOutput:   g.ExpectedOutput,
				ExpectedOutput: g.ExpectedOutput,
				Context:        g.Context,
				Success:        true,
				MetricsData: []repository.MetricResult{
					{Name: "answer_relevancy", Threshold: 0.7, Success: true, Score: 0.93, Reason: "matches the reference answer", EvaluationModel: ev.ModelID},
				},
				RunDuration: 1.2,
				Order:       i,
			},
		}
	}
	return responses
}

func seedMetrics(usecaseID, datasetID, evaluationID string) []repository.Metric {
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	var metrics []repository.Metric
	for day := 6; day >= 0; day-- {
		ts := now.AddDate(0, 0, -day)
		accuracy := 0.75 + rng.Float64()*0.2
		latency := 90 + rng.Float64()*60
		metrics = append(metrics,
			metricPoint("accuracy", accuracy, ts, usecaseID, datasetID, evaluationID),
			metricPoint("latency_ms", latency, ts, usecaseID, datasetID, evaluationID),
		)
	}
	return metrics
}

func metricPoint(name string, value float64, ts time.Time, usecaseID, datasetID, evaluationID string) repository.Metric {
	v := value
	t := ts
	return repository.Metric{
		UsecaseID:    usecaseID,
		DatasetID:    datasetID,
		EvaluationID: evaluationID,
		Name:         name,
		Value:        &v,
		Timestamp:    &t,
		Category:     "quality",
	}
}
