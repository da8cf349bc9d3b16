package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace_backend/internal/messaging/service"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for messaging.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidUserID    = "invalid user ID"
)

// New creates a new messaging handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Send appends a message to a thread.
// POST /api/v1/messages
func (h *Handler) Send(c *gin.Context) {
	senderID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Send(c.Request.Context(), senderID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Conversations returns the user's inbox.
// GET /api/v1/messages/conversations
func (h *Handler) Conversations(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.Conversations(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Thread returns the exchange with another user.
// GET /api/v1/messages/threads/:userId
func (h *Handler) Thread(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	result, err := h.svc.Thread(c.Request.Context(), userID, otherID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LeadThread returns the messages attached to a lead.
// GET /api/v1/messages/leads/:leadId
func (h *Handler) LeadThread(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	result, err := h.svc.LeadThread(c.Request.Context(), userID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkThreadRead marks everything the other user sent as read.
// POST /api/v1/messages/threads/:userId/read
func (h *Handler) MarkThreadRead(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	result, err := h.svc.MarkThreadRead(c.Request.Context(), userID, otherID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkLeadThreadRead marks the messages addressed to the caller on a lead
// thread as read.
// POST /api/v1/messages/leads/:leadId/read
func (h *Handler) MarkLeadThreadRead(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	result, err := h.svc.MarkLeadThreadRead(c.Request.Context(), userID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UnreadCount returns the unread badge counter.
// GET /api/v1/messages/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.UnreadCount(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
