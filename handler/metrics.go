package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
)

// RecordMetric handles POST /usecases/:usecase_id/metrics.
func (h *Handler) RecordMetric(c *gin.Context) {
	var body service.RecordMetricBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	m, err := h.svc.Metrics.Record(c.Request.Context(), c.Param("usecase_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, m)
}

// GetUsecaseMetrics handles GET /usecases/:usecase_id/metrics.
func (h *Handler) GetUsecaseMetrics(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	out, err := h.svc.Metrics.GetUsecaseMetrics(c.Request.Context(), c.Param("usecase_id"), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, out)
}

// GetDatasetMetrics handles GET /usecases/:usecase_id/metrics/datasets/:dataset_id.
func (h *Handler) GetDatasetMetrics(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	out, err := h.svc.Metrics.GetDatasetMetrics(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, out)
}

// GetEvaluationMetrics handles GET /usecases/:usecase_id/metrics/evaluations/:evaluation_id.
func (h *Handler) GetEvaluationMetrics(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	out, err := h.svc.Metrics.GetEvaluationMetrics(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id"), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, out)
}

func (h *Handler) bindFilter(c *gin.Context) (*service.MetricsFilter, bool) {
	var filter service.MetricsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.respondBindError(c, &filter, err)
		return nil, false
	}
	return &filter, true
}
