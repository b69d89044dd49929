package app

import (
	"github.com/junoathena/gateway-backend/internal/handlers"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Ability *handlers.AbilityHandler
	Group   *handlers.GroupHandler
	Project *handlers.ProjectHandler
	Chat    *handlers.ChatHandler
	Audit   *handlers.AuditHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(services.Auth),
		Ability: handlers.NewAbilityHandler(services.Ability),
		Group:   handlers.NewGroupHandler(services.Group),
		Project: handlers.NewProjectHandler(services.Project),
		Chat:    handlers.NewChatHandler(services.Chat),
		Audit:   handlers.NewAuditHandler(services.Audit, services.Ability),
	}
}
