// Package services provides the service catalog bounded context.
// Providers create and manage listings; customers browse them.
package services

import (
	"marketplace_backend/internal/services/handler"
	"marketplace_backend/internal/services/repository"
	"marketplace_backend/internal/services/service"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the services bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the services module.
func NewModule(pool *pgxpool.Pool, images service.ImageStore, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, images, bucket, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "services"
}

// Service exposes the catalog service for adapters (leads opportunity scope).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts service catalog routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public browsing
	ctx.V1.GET("/services", m.handler.List)
	ctx.V1.GET("/services/:id", m.handler.GetByID)
	ctx.V1.GET("/categories", m.handler.ListCategories)

	// Provider management
	ctx.Provider.GET("/services", m.handler.ListMine)
	ctx.Provider.POST("/services", m.handler.Create)
	ctx.Provider.PUT("/services/:id", m.handler.Update)
	ctx.Provider.DELETE("/services/:id", m.handler.Delete)
	ctx.Provider.POST("/services/:id/image", m.handler.UploadImage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
