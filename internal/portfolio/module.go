// Package portfolio lets providers showcase past work with photos.
package portfolio

import (
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/portfolio/handler"
	"marketplace_backend/internal/portfolio/repository"
	"marketplace_backend/internal/portfolio/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the portfolio bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the portfolio module.
func NewModule(pool *pgxpool.Pool, images service.ImageStore, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, images, bucket, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "portfolio"
}

// RegisterRoutes mounts portfolio routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/providers/:id/portfolio", m.handler.List)

	ctx.Provider.POST("/portfolio", m.handler.Upload)
	ctx.Provider.GET("/portfolio", m.handler.ListMine)
	ctx.Provider.DELETE("/portfolio/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
