package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AbilityService interface {
	// Can is the single ability decision point: explicit grant first, then
	// the role-default policy over the principal's highest role anywhere,
	// then deny. Pure read, no audit.
	Can(ctx context.Context, email, ability string) (bool, error)
	// RequestAccess records a mentor-directed access request. It never fails
	// the caller and never grants anything by itself.
	RequestAccess(ctx context.Context, ability, reqContext string)
	// Grant writes an explicit grant. Mentor principals only.
	Grant(ctx context.Context, email, ability string) (*types.AbilityGrant, error)
	ListGrants(ctx context.Context, email string) ([]*types.AbilityGrant, error)
}

type abilityService struct {
	db          *gorm.DB
	log         *logger.Logger
	policy      abilities.Policy
	grants      repos.AbilityGrantRepo
	memberships repos.MembershipRepo
	audit       AuditService
	notify      MentorNotifier
}

func NewAbilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	policy abilities.Policy,
	grantRepo repos.AbilityGrantRepo,
	membershipRepo repos.MembershipRepo,
	auditSvc AuditService,
	notifier MentorNotifier,
) AbilityService {
	return &abilityService{
		db:          db,
		log:         baseLog.With("service", "AbilityService"),
		policy:      policy,
		grants:      grantRepo,
		memberships: membershipRepo,
		audit:       auditSvc,
		notify:      notifier,
	}
}

func (s *abilityService) Can(ctx context.Context, email, ability string) (bool, error) {
	if email == "" || ability == "" {
		return false, nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	hasGrant, err := s.grants.Exists(dbc, email, ability)
	if err != nil {
		return false, err
	}
	if hasGrant {
		return true, nil
	}
	rows, err := s.memberships.ListByEmail(dbc, email)
	if err != nil {
		return false, err
	}
	roles := make([]string, 0, len(rows))
	for _, m := range rows {
		roles = append(roles, m.Role)
	}
	return abilities.Resolve(s.policy, ability, false, roles), nil
}

func (s *abilityService) RequestAccess(ctx context.Context, ability, reqContext string) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || ability == "" {
		return
	}
	s.audit.LogEvent(ctx, rd.Email, types.AuditAbilityRequest, map[string]any{
		"email":   rd.Email,
		"ability": ability,
		"context": reqContext,
	})
	s.notify.Notify(map[string]any{
		"type":    "ability_request",
		"email":   rd.Email,
		"name":    rd.FullName,
		"ability": ability,
		"context": reqContext,
	})
}

func (s *abilityService) Grant(ctx context.Context, email, ability string) (*types.AbilityGrant, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if !rd.Mentor {
		return nil, apierr.Permission("granting abilities requires the mentor role")
	}
	if email == "" || ability == "" {
		return nil, apierr.Validation("email and ability are required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	exists, err := s.grants.Exists(dbc, email, ability)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.Validation("%s is already granted to %s", ability, email)
	}
	rows, err := s.grants.Create(dbc, []*types.AbilityGrant{{
		Email:     email,
		Ability:   ability,
		GrantedBy: rd.Email,
	}})
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, rd.Email, types.AuditAbilityGrant, map[string]any{
		"email":      email,
		"ability":    ability,
		"granted_by": rd.Email,
	})
	return rows[0], nil
}

func (s *abilityService) ListGrants(ctx context.Context, email string) ([]*types.AbilityGrant, error) {
	return s.grants.ListByEmail(dbctx.Context{Ctx: ctx}, email)
}
