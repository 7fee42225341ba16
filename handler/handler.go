// Package handler exposes the HTTP API. Handlers bind and validate input,
// call into the service layer, and translate service errors into HTTP
// responses. Internal failure detail is logged, never returned to clients.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/retry"
	"github.com/tachyonhq/tachyon-eval/service"
	"github.com/tachyonhq/tachyon-eval/validation"
	"github.com/tachyonhq/tachyon-eval/worker"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	svc    *service.Service
	logger *logger.Logger
}

// New creates the handler set.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, logger: log}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	usecases := v1.Group("/usecases")
	usecases.POST("", h.CreateUsecase)
	usecases.GET("", h.ListUsecases)
	usecases.GET("/:usecase_id", h.GetUsecase)
	usecases.PATCH("/:usecase_id", h.UpdateUsecase)
	usecases.DELETE("/:usecase_id", h.DeleteUsecase)

	datasets := usecases.Group("/:usecase_id/datasets")
	datasets.POST("", h.CreateDataset)
	datasets.GET("", h.ListDatasets)
	datasets.GET("/:dataset_id", h.GetDataset)
	datasets.DELETE("/:dataset_id", h.DeleteDataset)

	goldens := datasets.Group("/:dataset_id/goldens")
	goldens.POST("", h.CreateGolden)
	goldens.POST("/import", h.ImportGoldens)
	goldens.POST("/generate", h.GenerateGoldens)
	goldens.GET("", h.ListGoldens)
	goldens.GET("/:golden_id", h.GetGolden)
	goldens.PUT("/:golden_id", h.UpdateGolden)
	goldens.DELETE("/:golden_id", h.DeleteGolden)

	evaluations := usecases.Group("/:usecase_id/evaluations")
	evaluations.POST("", h.CreateEvaluation)
	evaluations.GET("", h.ListEvaluations)
	evaluations.GET("/:evaluation_id", h.GetEvaluation)
	evaluations.PUT("/:evaluation_id", h.UpdateEvaluation)
	evaluations.GET("/:evaluation_id/responses", h.GetEvaluationResponses)
	evaluations.PATCH("/:evaluation_id/status", h.SetEvaluationStatus)
	evaluations.DELETE("/:evaluation_id", h.DeleteEvaluation)

	metrics := usecases.Group("/:usecase_id/metrics")
	metrics.POST("", h.RecordMetric)
	metrics.GET("", h.GetUsecaseMetrics)
	datasets.GET("/:dataset_id/metrics", h.GetDatasetMetrics)
	evaluations.GET("/:evaluation_id/metrics", h.GetEvaluationMetrics)
}

// respondBindError reports a request binding failure. Field-level
// validation failures are itemized per field; anything else surfaces the
// binding error text.
func (h *Handler) respondBindError(c *gin.Context, body any, err error) {
	if fields := validation.FieldErrors(body, err); fields != nil {
		resp.Fail(c.Writer, resp.BadRequest("validation failed", fields))
		return
	}
	resp.Fail(c.Writer, resp.BadRequest(err.Error()))
}

// respondError maps a service error onto the HTTP response. Validation and
// not-found errors carry their message; everything else is reported as an
// opaque server error with the detail kept in the log.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		resp.Fail(c.Writer, resp.BadRequest(validation.Error()))
		return
	}

	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		resp.Fail(c.Writer, resp.NotFound(notFound.Error()))
		return
	}

	if errors.Is(err, service.ErrAliasTaken) {
		resp.Fail(c.Writer, resp.Conflict(err.Error()))
		return
	}

	if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrPoolClosed) {
		h.logger.Warnf(c.Request.Context(), "status queue full: %v", err)
		resp.Fail(c.Writer, resp.ServiceUnavailable("try again later"))
		return
	}

	if retry.IsExhausted(err) {
		h.logger.Errorf(c.Request.Context(), "store unavailable: %v", err)
		resp.Fail(c.Writer, resp.ServiceUnavailable("store unavailable"))
		return
	}

	h.logger.Errorf(c.Request.Context(), "request failed: %v", err)
	resp.Fail(c.Writer, resp.InternalServer("internal error"))
}
