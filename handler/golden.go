package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
)

// CreateGolden handles POST /usecases/:usecase_id/datasets/:dataset_id/goldens.
func (h *Handler) CreateGolden(c *gin.Context) {
	var body service.CreateGoldenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	g, err := h.svc.Golden.Create(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, g)
}

// ImportGoldens handles POST /usecases/:usecase_id/datasets/:dataset_id/goldens/import.
func (h *Handler) ImportGoldens(c *gin.Context) {
	var bodies []service.CreateGoldenBody
	if err := c.ShouldBindJSON(&bodies); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}
	n, err := h.svc.Golden.Import(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"), bodies)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, gin.H{"imported": n})
}

// GenerateGoldens handles POST /usecases/:usecase_id/datasets/:dataset_id/goldens/generate.
func (h *Handler) GenerateGoldens(c *gin.Context) {
	var body service.GenerateGoldensBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	gs, err := h.svc.Golden.Generate(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, gs)
}

// UpdateGolden handles PUT /usecases/:usecase_id/datasets/:dataset_id/goldens/:golden_id.
func (h *Handler) UpdateGolden(c *gin.Context) {
	var body service.UpdateGoldenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	g, err := h.svc.Golden.Update(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"), c.Param("golden_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, g)
}

// ListGoldens handles GET /usecases/:usecase_id/datasets/:dataset_id/goldens.
func (h *Handler) ListGoldens(c *gin.Context) {
	gs, err := h.svc.Golden.List(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, gs)
}

// GetGolden handles GET /usecases/:usecase_id/datasets/:dataset_id/goldens/:golden_id.
func (h *Handler) GetGolden(c *gin.Context) {
	g, err := h.svc.Golden.Get(c.Request.Context(), c.Param("dataset_id"), c.Param("golden_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, g)
}

// DeleteGolden handles DELETE /usecases/:usecase_id/datasets/:dataset_id/goldens/:golden_id.
func (h *Handler) DeleteGolden(c *gin.Context) {
	if err := h.svc.Golden.Delete(c.Request.Context(), c.Param("dataset_id"), c.Param("golden_id")); err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer)
}
