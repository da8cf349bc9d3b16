// Package bookings provides scheduled jobs with a simulated payment flow
// and stored payment method management.
package bookings

import (
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/bookings/handler"
	"marketplace_backend/internal/bookings/repository"
	"marketplace_backend/internal/bookings/service"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the bookings module.
func NewModule(pool *pgxpool.Pool, catalog service.Catalog, contacts service.Contacts, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, contacts, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// RegisterRoutes mounts booking and payment method routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/bookings", m.handler.Create)
	ctx.Protected.GET("/bookings", m.handler.ListMine)
	ctx.Protected.GET("/bookings/:id", m.handler.GetByID)
	ctx.Protected.POST("/bookings/:id/payment-intent", m.handler.CreatePaymentIntent)
	ctx.Protected.POST("/bookings/:id/confirm", m.handler.ConfirmPayment)
	ctx.Protected.POST("/bookings/:id/cancel", m.handler.Cancel)
	ctx.Protected.GET("/bookings/:id/qr", m.handler.CheckInQR)

	ctx.Protected.POST("/payment-methods", m.handler.AddPaymentMethod)
	ctx.Protected.GET("/payment-methods", m.handler.ListPaymentMethods)
	ctx.Protected.DELETE("/payment-methods/:id", m.handler.DeletePaymentMethod)
	ctx.Protected.POST("/payment-methods/:id/default", m.handler.SetDefaultPaymentMethod)

	ctx.Provider.GET("/bookings", m.handler.ListForProvider)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
