package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
)

// CreateDataset handles POST /usecases/:usecase_id/datasets.
func (h *Handler) CreateDataset(c *gin.Context) {
	var body service.CreateDatasetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	ds, err := h.svc.Dataset.Create(c.Request.Context(), c.Param("usecase_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, ds)
}

// ListDatasets handles GET /usecases/:usecase_id/datasets. An alias query
// parameter narrows the result to the single matching dataset.
func (h *Handler) ListDatasets(c *gin.Context) {
	if alias := c.Query("alias"); alias != "" {
		ds, err := h.svc.Dataset.GetByAlias(c.Request.Context(), c.Param("usecase_id"), alias)
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp.Success(c.Writer, ds)
		return
	}

	ds, err := h.svc.Dataset.List(c.Request.Context(), c.Param("usecase_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, ds)
}

// GetDataset handles GET /usecases/:usecase_id/datasets/:dataset_id.
func (h *Handler) GetDataset(c *gin.Context) {
	ds, err := h.svc.Dataset.Get(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, ds)
}

// DeleteDataset handles DELETE /usecases/:usecase_id/datasets/:dataset_id.
func (h *Handler) DeleteDataset(c *gin.Context) {
	if err := h.svc.Dataset.Delete(c.Request.Context(), c.Param("usecase_id"), c.Param("dataset_id")); err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer)
}
