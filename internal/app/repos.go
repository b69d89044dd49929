package app

import (
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
)

type Repos struct {
	User              repos.UserRepo
	UserToken         repos.UserTokenRepo
	Group             repos.GroupRepo
	Membership        repos.MembershipRepo
	Project           repos.ProjectRepo
	Finding           repos.FindingRepo
	ChatMessage       repos.ChatMessageRepo
	AthenaMessage     repos.AthenaMessageRepo
	SupervisorComment repos.SupervisorCommentRepo
	AbilityGrant      repos.AbilityGrantRepo
	AuditEvent        repos.AuditEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		UserToken:         repos.NewUserTokenRepo(db, log),
		Group:             repos.NewGroupRepo(db, log),
		Membership:        repos.NewMembershipRepo(db, log),
		Project:           repos.NewProjectRepo(db, log),
		Finding:           repos.NewFindingRepo(db, log),
		ChatMessage:       repos.NewChatMessageRepo(db, log),
		AthenaMessage:     repos.NewAthenaMessageRepo(db, log),
		SupervisorComment: repos.NewSupervisorCommentRepo(db, log),
		AbilityGrant:      repos.NewAbilityGrantRepo(db, log),
		AuditEvent:        repos.NewAuditEventRepo(db, log),
	}
}
