// Package messaging provides in-app messaging between customers and
// providers, including the threads that start from lead inquiries.
package messaging

import (
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/messaging/handler"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/service"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the messaging bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the messaging module. redisClient may be
// nil; unread counts then skip the cache.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, directory service.Directory, responder service.LeadResponder, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	cache := service.NewUnreadCache(redisClient)
	svc := service.New(repo, directory, responder, cache, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "messaging"
}

// RegisterRoutes mounts messaging routes. Everything requires a signed-in
// user.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/messages", m.handler.Send)
	ctx.Protected.GET("/messages/conversations", m.handler.Conversations)
	ctx.Protected.GET("/messages/unread-count", m.handler.UnreadCount)
	ctx.Protected.GET("/messages/threads/:userId", m.handler.Thread)
	ctx.Protected.POST("/messages/threads/:userId/read", m.handler.MarkThreadRead)
	ctx.Protected.GET("/messages/leads/:leadId", m.handler.LeadThread)
	ctx.Protected.POST("/messages/leads/:leadId/read", m.handler.MarkLeadThreadRead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
