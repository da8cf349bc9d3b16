package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/portfolio/service"
	"marketplace_backend/internal/portfolio/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for provider portfolios.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new portfolio handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Upload adds a photo to the provider's portfolio.
// POST /api/v1/provider/portfolio
func (h *Handler) Upload(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.UploadItemRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read image file", nil)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.svc.Upload(c.Request.Context(), providerID, req, fileHeader.Filename, contentType, file, fileHeader.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns a provider's portfolio (public).
// GET /api/v1/providers/:id/portfolio
func (h *Handler) List(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider ID", nil)
		return
	}

	items, err := h.svc.List(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ItemListResponse{Items: items})
}

// ListMine returns the provider's own portfolio.
// GET /api/v1/provider/portfolio
func (h *Handler) ListMine(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ItemListResponse{Items: items})
}

// Delete removes a portfolio item.
// DELETE /api/v1/provider/portfolio/:id
func (h *Handler) Delete(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid portfolio item ID", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), providerID, itemID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "portfolio item deleted"})
}
