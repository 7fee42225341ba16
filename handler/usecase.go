package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
)

// CreateUsecase handles POST /usecases.
func (h *Handler) CreateUsecase(c *gin.Context) {
	var body service.CreateUsecaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	u, err := h.svc.Usecase.Create(c.Request.Context(), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, u)
}

// ListUsecases handles GET /usecases.
func (h *Handler) ListUsecases(c *gin.Context) {
	us, err := h.svc.Usecase.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, us)
}

// GetUsecase handles GET /usecases/:usecase_id.
func (h *Handler) GetUsecase(c *gin.Context) {
	u, err := h.svc.Usecase.Get(c.Request.Context(), c.Param("usecase_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, u)
}

// UpdateUsecase handles PATCH /usecases/:usecase_id.
func (h *Handler) UpdateUsecase(c *gin.Context) {
	var body service.UpdateUsecaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, &body, err)
		return
	}
	u, err := h.svc.Usecase.Update(c.Request.Context(), c.Param("usecase_id"), &body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer, u)
}

// DeleteUsecase handles DELETE /usecases/:usecase_id.
func (h *Handler) DeleteUsecase(c *gin.Context) {
	if err := h.svc.Usecase.Delete(c.Request.Context(), c.Param("usecase_id")); err != nil {
		h.respondError(c, err)
		return
	}
	resp.Success(c.Writer)
}
