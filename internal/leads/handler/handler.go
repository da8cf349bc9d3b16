package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for the lead lifecycle.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
)

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create submits a customer inquiry against a listing, creating a direct
// lead for its provider. Works with or without a signed-in caller.
// POST /api/v1/services/:id/leads
func (h *Handler) Create(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid service ID", nil)
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var customerID *uuid.UUID
	if value, ok := c.Get(httpkit.ContextUserIDKey); ok {
		id := value.(uuid.UUID)
		customerID = &id
	}

	result, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadParams{
		ServiceID:     serviceID,
		CustomerID:    customerID,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Message:       req.Message,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListDirect lists the provider's exclusive leads.
// GET /api/v1/provider/leads
func (h *Handler) ListDirect(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ListDirect(c.Request.Context(), providerID, req.Page, req.PageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListOpportunities lists open leads in the provider's service categories.
// GET /api/v1/provider/leads/opportunities
func (h *Handler) ListOpportunities(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ListOpportunities(c.Request.Context(), providerID, req.Page, req.PageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves a single lead visible to the provider.
// GET /api/v1/provider/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), providerID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Convert claims the lead as a confirmed job for the calling provider.
// POST /api/v1/provider/leads/:id/convert
func (h *Handler) Convert(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.Convert(c.Request.Context(), leadID, providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
