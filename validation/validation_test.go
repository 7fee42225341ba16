package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sampleBody struct {
	ModelID string `json:"model_id" validate:"required"`
	SortBy  string `form:"sort_by" validate:"omitempty,oneof=timestamp value"`
	Limit   int    `form:"limit" validate:"omitempty,min=1"`
}

func TestFieldErrorsUsesWireNames(t *testing.T) {
	v := validator.New()
	body := &sampleBody{SortBy: "name"}

	errs := FieldErrors(body, v.Struct(body))
	if errs == nil {
		t.Fatal("expected field errors")
	}
	if _, ok := errs["model_id"]; !ok {
		t.Errorf("missing json tag key, got %v", errs)
	}
	if msg, ok := errs["sort_by"]; !ok || !strings.Contains(msg, "one of") {
		t.Errorf("sort_by message = %q", msg)
	}
}

func TestFieldErrorsNonValidationError(t *testing.T) {
	if errs := FieldErrors(&sampleBody{}, nil); errs != nil {
		t.Errorf("nil error must yield nil map, got %v", errs)
	}
}
