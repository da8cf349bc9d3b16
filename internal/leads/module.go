// Package leads provides the lead routing bounded context. Customer
// inquiries become direct leads with an exclusivity window for the
// listing's provider; unanswered leads open up as opportunities for
// other providers in the same category.
package leads

import (
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/handler"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/service"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, catalog service.Catalog, contacts service.Contacts, expiry service.ExpiryScheduler, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, contacts, expiry, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the lifecycle service for the expiry worker and the
// messaging module's responded hook.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead lifecycle routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Inquiries are open to everyone; a valid token attaches the customer.
	ctx.V1.POST("/services/:id/leads", httpkit.AuthOptional(ctx.Config), m.handler.Create)

	// Provider lead board
	ctx.Provider.GET("/leads", m.handler.ListDirect)
	ctx.Provider.GET("/leads/opportunities", m.handler.ListOpportunities)
	ctx.Provider.GET("/leads/:id", m.handler.GetByID)
	ctx.Provider.POST("/leads/:id/convert", m.handler.Convert)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
