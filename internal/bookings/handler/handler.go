package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"marketplace_backend/internal/bookings/service"
	"marketplace_backend/internal/bookings/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"
)

// Handler handles HTTP requests for bookings and payment methods.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidBookingID = "invalid booking ID"

	qrImageSize = 256
)

// New creates a new bookings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create books a listing.
// POST /api/v1/bookings
func (h *Handler) Create(c *gin.Context) {
	customerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), customerID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListMine lists the customer's bookings.
// GET /api/v1/bookings
func (h *Handler) ListMine(c *gin.Context) {
	customerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListMine(c.Request.Context(), customerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListForProvider lists bookings against the provider's listings.
// GET /api/v1/provider/bookings
func (h *Handler) ListForProvider(c *gin.Context) {
	providerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListForProvider(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves a single booking.
// GET /api/v1/bookings/:id
func (h *Handler) GetByID(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), userID, bookingID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreatePaymentIntent issues a simulated payment intent.
// POST /api/v1/bookings/:id/payment-intent
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	customerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	result, err := h.svc.CreatePaymentIntent(c.Request.Context(), customerID, bookingID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ConfirmPayment completes the simulated payment.
// POST /api/v1/bookings/:id/confirm
func (h *Handler) ConfirmPayment(c *gin.Context) {
	customerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	var req transport.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ConfirmPayment(c.Request.Context(), customerID, bookingID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel cancels a pending booking.
// POST /api/v1/bookings/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	customerID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), customerID, bookingID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "booking cancelled"})
}

// CheckInQR renders the paid booking's check-in code as a PNG.
// GET /api/v1/bookings/:id/qr
func (h *Handler) CheckInQR(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidBookingID, nil)
		return
	}

	payload, err := h.svc.CheckInPayload(c.Request.Context(), userID, bookingID)
	if httpkit.HandleError(c, err) {
		return
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, qrImageSize)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not render QR code", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// AddPaymentMethod stores a card reference.
// POST /api/v1/payment-methods
func (h *Handler) AddPaymentMethod(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddPaymentMethod(c.Request.Context(), userID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListPaymentMethods lists the user's stored cards.
// GET /api/v1/payment-methods
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListPaymentMethods(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeletePaymentMethod removes a stored card.
// DELETE /api/v1/payment-methods/:id
func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment method ID", nil)
		return
	}

	if err := h.svc.DeletePaymentMethod(c.Request.Context(), userID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "payment method deleted"})
}

// SetDefaultPaymentMethod makes one stored card the default.
// POST /api/v1/payment-methods/:id/default
func (h *Handler) SetDefaultPaymentMethod(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment method ID", nil)
		return
	}

	if err := h.svc.SetDefaultPaymentMethod(c.Request.Context(), userID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "default payment method updated"})
}
