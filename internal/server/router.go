package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/junoathena/gateway-backend/internal/handlers"
	"github.com/junoathena/gateway-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AbilityHandler *handlers.AbilityHandler
	GroupHandler   *handlers.GroupHandler
	ProjectHandler *handlers.ProjectHandler
	ChatHandler    *handlers.ChatHandler
	AuditHandler   *handlers.AuditHandler
	AuthMiddleware *middleware.AuthMiddleware
	TracingEnabled bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("gateway-backend"))
	}

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireSession())
	writable := cfg.AuthMiddleware.RequireWritable()

	// Session
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.POST("/license/refresh", cfg.AuthHandler.RefreshLicense)
	protected.GET("/me", cfg.AuthHandler.GetMe)

	// Abilities
	protected.GET("/abilities/check", cfg.AbilityHandler.Check)
	protected.GET("/abilities/grants", cfg.AbilityHandler.ListMine)
	protected.POST("/abilities/request", cfg.AbilityHandler.RequestAccess)
	protected.POST("/abilities/grant", writable, cfg.AbilityHandler.Grant)

	// Groups
	protected.GET("/groups", cfg.GroupHandler.List)
	protected.POST("/groups", writable, cfg.GroupHandler.Create)
	protected.GET("/groups/:group_id/members", cfg.GroupHandler.ListMembers)
	protected.POST("/groups/:group_id/members", writable, cfg.GroupHandler.Invite)
	protected.DELETE("/groups/:group_id/members/:email", writable, cfg.GroupHandler.RemoveMember)

	// Projects
	protected.GET("/groups/:group_id/projects", cfg.ProjectHandler.List)
	protected.POST("/groups/:group_id/projects", writable, cfg.ProjectHandler.Create)
	protected.GET("/projects/:project_id/findings", cfg.ProjectHandler.ListFindings)
	protected.POST("/projects/:project_id/findings", writable, cfg.ProjectHandler.AddFinding)

	// Chat
	protected.GET("/projects/:project_id/chat", cfg.ChatHandler.Fetch)
	protected.POST("/projects/:project_id/chat", writable, cfg.ChatHandler.Post)
	protected.GET("/projects/:project_id/athena", cfg.ChatHandler.ListAthena)
	protected.POST("/projects/:project_id/athena", writable, cfg.ChatHandler.AskAthena)
	protected.GET("/projects/:project_id/supervisor-comments", cfg.ChatHandler.ListSupervisorComments)
	protected.POST("/projects/:project_id/supervisor-comments", writable, cfg.ChatHandler.AddSupervisorComment)

	// Audit
	protected.GET("/audit/events", cfg.AuditHandler.Export)
	protected.POST("/status", cfg.AuditHandler.Status)

	return router
}
