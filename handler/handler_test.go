package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/retry"
	"github.com/tachyonhq/tachyon-eval/service"
	"github.com/tachyonhq/tachyon-eval/worker"
)

func testHandler() *Handler {
	gin.SetMode(gin.TestMode)
	l := logger.StandardLogger()
	l.SetOutput(io.Discard)
	return &Handler{logger: l}
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "start_time", Message: "start_time must not be after end_time"}, http.StatusBadRequest},
		{"not found", &service.NotFoundError{Resource: "usecase", ID: "uc-1"}, http.StatusNotFound},
		{"alias conflict", service.ErrAliasTaken, http.StatusConflict},
		{"queue full", worker.ErrQueueFull, http.StatusServiceUnavailable},
		{"exhausted", &retry.ExhaustedError{Attempts: 4, Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"aggregation", &service.AggregationError{Reason: "metric record missing value"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	h := testHandler()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext("/api/v1/usecases")
			h.respondError(c, tc.err)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	h := testHandler()
	c, rec := testContext("/api/v1/usecases")

	h.respondError(c, errors.New("dial tcp 10.0.0.5:27017: connection refused"))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if msg, _ := body["message"].(string); msg != "internal error" {
		t.Errorf("message = %q, internal detail must not leak", msg)
	}
}

func TestBindFilterParsesQuery(t *testing.T) {
	h := testHandler()
	c, _ := testContext("/metrics?min_value=0.7&sort_by=value&sort_order=desc&limit=10&include_summary=true")

	filter, ok := h.bindFilter(c)
	if !ok {
		t.Fatal("bind failed")
	}
	if filter.MinValue == nil || *filter.MinValue != 0.7 {
		t.Errorf("min_value = %v, want 0.7", filter.MinValue)
	}
	if filter.SortBy != service.SortByValue || filter.SortOrder != service.SortDesc {
		t.Errorf("sort = %s/%s, want value/desc", filter.SortBy, filter.SortOrder)
	}
	if filter.Limit != 10 || !filter.IncludeSummary {
		t.Errorf("limit/include_summary = %d/%v", filter.Limit, filter.IncludeSummary)
	}
}

func TestBindFilterRejectsBadSortField(t *testing.T) {
	h := testHandler()
	c, rec := testContext("/metrics?sort_by=name")

	if _, ok := h.bindFilter(c); ok {
		t.Fatal("expected bind failure for unknown sort field")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
