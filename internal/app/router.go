package app

import (
	"github.com/gin-gonic/gin"

	"github.com/junoathena/gateway-backend/internal/observability"
	"github.com/junoathena/gateway-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlers.Auth,
		AbilityHandler: handlers.Ability,
		GroupHandler:   handlers.Group,
		ProjectHandler: handlers.Project,
		ChatHandler:    handlers.Chat,
		AuditHandler:   handlers.Audit,
		AuthMiddleware: middleware.Auth,
		TracingEnabled: observability.Enabled(),
	})
}
