package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
)

type setStatusBody struct {
	Status string `json:"status" binding:"required"`
}

// CreateEvaluation handles POST /usecases/:usecase_id/evaluations.
func (h *Handler) CreateEvaluation(c *gin.Context) {
	var body service.CreateEvaluationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	ev, err := h.svc.Evaluation.Create(c.Request.Context(), c.Param("usecase_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, ev)
}

// ListEvaluations handles GET /usecases/:usecase_id/evaluations.
func (h *Handler) ListEvaluations(c *gin.Context) {
	evs, err := h.svc.Evaluation.List(c.Request.Context(), c.Param("usecase_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, evs)
}

// GetEvaluation handles GET /usecases/:usecase_id/evaluations/:evaluation_id.
func (h *Handler) GetEvaluation(c *gin.Context) {
	ev, err := h.svc.Evaluation.Get(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, ev)
}

// UpdateEvaluation handles PUT /usecases/:usecase_id/evaluations/:evaluation_id.
func (h *Handler) UpdateEvaluation(c *gin.Context) {
	var body service.UpdateEvaluationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	ev, err := h.svc.Evaluation.Update(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, ev)
}

// GetEvaluationResponses handles GET /usecases/:usecase_id/evaluations/:evaluation_id/responses.
func (h *Handler) GetEvaluationResponses(c *gin.Context) {
	rs, err := h.svc.Evaluation.Responses(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, rs)
}

// SetEvaluationStatus handles PATCH /usecases/:usecase_id/evaluations/:evaluation_id/status.
// The transition is queued and applied asynchronously.
func (h *Handler) SetEvaluationStatus(c *gin.Context) {
	var body setStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	err := h.svc.Evaluation.SetStatus(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id"), body.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusAccepted, gin.H{"status": body.Status})
}

// DeleteEvaluation handles DELETE /usecases/:usecase_id/evaluations/:evaluation_id.
func (h *Handler) DeleteEvaluation(c *gin.Context) {
	if err := h.svc.Evaluation.Delete(c.Request.Context(), c.Param("usecase_id"), c.Param("evaluation_id")); err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer)
}
