package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/tachyonhq/tachyon-eval/data/repository"
)

type fakeGoldenRepo struct {
	goldens map[string]*repository.Golden
	nextID  int
}

func (f *fakeGoldenRepo) Create(_ context.Context, g *repository.Golden) (*repository.Golden, error) {
	f.nextID++
	g.ID = fmt.Sprintf("g-%03d", f.nextID)
	f.goldens[g.ID] = g
	return g, nil
}

func (f *fakeGoldenRepo) CreateMany(ctx context.Context, gs []*repository.Golden) error {
	for _, g := range gs {
		if _, err := f.Create(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGoldenRepo) FindByID(_ context.Context, datasetID, id string) (*repository.Golden, error) {
	g, ok := f.goldens[id]
	if !ok || g.DatasetID != datasetID {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeGoldenRepo) List(_ context.Context, datasetID string) ([]*repository.Golden, error) {
	var out []*repository.Golden
	for _, g := range f.goldens {
		if g.DatasetID == datasetID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoldenRepo) Update(_ context.Context, datasetID, id string, fields map[string]any) (*repository.Golden, error) {
	g, ok := f.goldens[id]
	if !ok || g.DatasetID != datasetID {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["input"].(string); ok {
		g.Input = v
	}
	if v, ok := fields["expected_output"].(string); ok {
		g.ExpectedOutput = v
	}
	if v, ok := fields["actual_output"].(string); ok {
		g.ActualOutput = v
	}
	return g, nil
}

func (f *fakeGoldenRepo) Delete(_ context.Context, datasetID, id string) error {
	delete(f.goldens, id)
	return nil
}

func newTestGoldenService(goldens *fakeGoldenRepo, datasets *fakeDatasetRepo) *GoldenService {
	return &GoldenService{goldens: goldens, datasets: datasets, logger: testLogger()}
}

func goldenDatasetFixture() *fakeDatasetRepo {
	return &fakeDatasetRepo{datasets: map[string]*repository.Dataset{
		"ds-1": {ID: "ds-1", UsecaseID: "uc-1", Alias: "regression"},
	}}
}

func TestGenerateGoldensExpandsTemplates(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{}}
	svc := newTestGoldenService(goldens, goldenDatasetFixture())

	gs, err := svc.Generate(context.Background(), "uc-1", "ds-1", &GenerateGoldensBody{
		Input:          "Question",
		ExpectedOutput: "Answer",
		Context:        "Context",
		Count:          3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gs) != 3 {
		t.Fatalf("generated %d goldens, want 3", len(gs))
	}
	if gs[0].Input != "Question 1 about ds-1" {
		t.Errorf("input = %q", gs[0].Input)
	}
	if gs[2].ExpectedOutput != "Answer for question 3" {
		t.Errorf("expected output = %q", gs[2].ExpectedOutput)
	}
	if len(goldens.goldens) != 3 {
		t.Errorf("stored %d goldens, want 3", len(goldens.goldens))
	}
}

func TestGenerateGoldensRequiresDataset(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{}}
	svc := newTestGoldenService(goldens, &fakeDatasetRepo{datasets: map[string]*repository.Dataset{}})

	_, err := svc.Generate(context.Background(), "uc-1", "missing", &GenerateGoldensBody{
		Input: "Q", ExpectedOutput: "A", Count: 1,
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGenerateGoldensRejectsZeroCount(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{}}
	svc := newTestGoldenService(goldens, goldenDatasetFixture())

	_, err := svc.Generate(context.Background(), "uc-1", "ds-1", &GenerateGoldensBody{
		Input: "Q", ExpectedOutput: "A", Count: 0,
	})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateGoldenAppliesFields(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{
		"g-001": {ID: "g-001", UsecaseID: "uc-1", DatasetID: "ds-1", Input: "old", ExpectedOutput: "out"},
	}}
	svc := newTestGoldenService(goldens, goldenDatasetFixture())

	in := "new input"
	actual := "observed"
	g, err := svc.Update(context.Background(), "uc-1", "ds-1", "g-001", &UpdateGoldenBody{
		Input: &in, ActualOutput: &actual,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Input != "new input" || g.ActualOutput != "observed" {
		t.Errorf("update not applied: %+v", g)
	}
	if g.ExpectedOutput != "out" {
		t.Errorf("untouched field changed: %q", g.ExpectedOutput)
	}
}

func TestUpdateGoldenRejectsEmptyBody(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{
		"g-001": {ID: "g-001", UsecaseID: "uc-1", DatasetID: "ds-1"},
	}}
	svc := newTestGoldenService(goldens, goldenDatasetFixture())

	_, err := svc.Update(context.Background(), "uc-1", "ds-1", "g-001", &UpdateGoldenBody{})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateGoldenUnknownGolden(t *testing.T) {
	goldens := &fakeGoldenRepo{goldens: map[string]*repository.Golden{}}
	svc := newTestGoldenService(goldens, goldenDatasetFixture())

	in := "x"
	_, err := svc.Update(context.Background(), "uc-1", "ds-1", "g-404", &UpdateGoldenBody{Input: &in})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
