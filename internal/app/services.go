package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/services"
)

type Services struct {
	Audit   services.AuditService
	Mentor  services.MentorNotifier
	Auth    services.AuthService
	Ability services.AbilityService
	Group   services.GroupService
	Project services.ProjectService
	Chat    services.ChatService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	policy := abilities.DefaultPolicy()
	if cfg.AbilityPolicyPath != "" {
		loaded, err := abilities.LoadPolicy(cfg.AbilityPolicyPath)
		if err != nil {
			return Services{}, fmt.Errorf("load ability policy: %w", err)
		}
		policy = loaded
	}

	auditSvc := services.NewAuditService(db, log, reposet.AuditEvent)
	mentorSvc := services.NewMentorNotifier(log, clients.Mailer)

	authSvc := services.NewAuthService(db, log, services.AuthConfig{
		JWTSecretKey:      cfg.JWTSecretKey,
		LabAccessCodeHash: cfg.LabAccessCodeHash,
		MentorEmails:      cfg.MentorEmails,
		AccessTTL:         cfg.AccessTokenTTL,
		RefreshTTL:        cfg.RefreshTokenTTL,
	}, reposet.User, reposet.UserToken, clients.Athena, clients.License, auditSvc, mentorSvc)

	abilitySvc := services.NewAbilityService(db, log, policy, reposet.AbilityGrant, reposet.Membership, auditSvc, mentorSvc)
	groupSvc := services.NewGroupService(db, log, reposet.Group, reposet.Membership, auditSvc)
	projectSvc := services.NewProjectService(db, log, reposet.Project, reposet.Finding, reposet.Group, reposet.Membership, auditSvc, mentorSvc)
	chatSvc := services.NewChatService(db, log, reposet.ChatMessage, reposet.AthenaMessage, reposet.SupervisorComment, reposet.Project, reposet.Membership, clients.Athena, abilitySvc, auditSvc)

	return Services{
		Audit:   auditSvc,
		Mentor:  mentorSvc,
		Auth:    authSvc,
		Ability: abilitySvc,
		Group:   groupSvc,
		Project: projectSvc,
		Chat:    chatSvc,
	}, nil
}
