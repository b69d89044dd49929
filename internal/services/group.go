package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/types"
)

type GroupService interface {
	// CreateGroup creates the group and the creator's owner membership in
	// one transaction: a group is never observable without an owner.
	CreateGroup(ctx context.Context, name string) (*types.Group, error)
	// InviteMember adds a member with role editor or viewer. Owner is not
	// assignable by invite.
	InviteMember(ctx context.Context, groupID uuid.UUID, email, role string) (*types.Membership, error)
	ListGroups(ctx context.Context) ([]*types.Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*types.Membership, error)
	// RemoveMember deletes a membership. Removing the last owner is refused.
	RemoveMember(ctx context.Context, groupID uuid.UUID, email string) error
}

type groupService struct {
	db          *gorm.DB
	log         *logger.Logger
	groups      repos.GroupRepo
	memberships repos.MembershipRepo
	audit       AuditService
}

func NewGroupService(
	db *gorm.DB,
	baseLog *logger.Logger,
	groupRepo repos.GroupRepo,
	membershipRepo repos.MembershipRepo,
	auditSvc AuditService,
) GroupService {
	return &groupService{
		db:          db,
		log:         baseLog.With("service", "GroupService"),
		groups:      groupRepo,
		memberships: membershipRepo,
		audit:       auditSvc,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, name string) (*types.Group, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("group name is required")
	}

	var group *types.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		created, terr := s.groups.Create(txc, []*types.Group{{
			Name:         name,
			CreatorEmail: rd.Email,
		}})
		if terr != nil {
			return terr
		}
		group = created[0]
		_, terr = s.memberships.Create(txc, []*types.Membership{{
			GroupID: group.ID,
			Email:   rd.Email,
			Role:    types.RoleOwner,
		}})
		return terr
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, rd.Email, types.AuditCreateGroup, map[string]any{
		"group_id": group.ID.String(),
		"name":     group.Name,
	})
	return group, nil
}

func (s *groupService) InviteMember(ctx context.Context, groupID uuid.UUID, email, role string) (*types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apierr.Validation("invitee email is required")
	}
	if role == types.RoleOwner {
		return nil, apierr.Validation("owner is not assignable by invite")
	}
	if !types.ValidRole(role) {
		return nil, apierr.Validation("role must be editor or viewer")
	}

	dbc := dbctx.Context{Ctx: ctx}
	var (
		group    *types.Group
		inviter  *types.Membership
		existing *types.Membership
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, gerr := s.groups.GetByIDs(dbctx.Context{Ctx: gctx}, []uuid.UUID{groupID})
		if gerr != nil {
			return gerr
		}
		if len(rows) > 0 {
			group = rows[0]
		}
		return nil
	})
	g.Go(func() error {
		var gerr error
		inviter, gerr = s.memberships.GetByGroupAndEmail(dbctx.Context{Ctx: gctx}, groupID, rd.Email)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		existing, gerr = s.memberships.GetByGroupAndEmail(dbctx.Context{Ctx: gctx}, groupID, email)
		return gerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if group == nil {
		return nil, apierr.NotFound("group not found")
	}
	if inviter == nil || inviter.Role != types.RoleOwner {
		return nil, apierr.Permission("only group owners can invite members")
	}
	if existing != nil {
		return nil, apierr.Validation("%s is already a member of this group", email)
	}

	rows, err := s.memberships.Create(dbc, []*types.Membership{{
		GroupID: groupID,
		Email:   email,
		Role:    role,
	}})
	if err != nil {
		// Two concurrent invites can both pass the existence check; the
		// unique (group_id, email) index settles the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Validation("%s is already a member of this group", email)
		}
		return nil, err
	}

	s.audit.LogEvent(ctx, rd.Email, types.AuditInviteMember, map[string]any{
		"group_id": groupID.String(),
		"email":    email,
		"role":     role,
	})
	return rows[0], nil
}

func (s *groupService) ListGroups(ctx context.Context) ([]*types.Group, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	return s.groups.ListByMember(dbctx.Context{Ctx: ctx}, rd.Email)
}

func (s *groupService) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	dbc := dbctx.Context{Ctx: ctx}
	groups, err := s.groups.GetByIDs(dbc, []uuid.UUID{groupID})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apierr.NotFound("group not found")
	}
	if err := requireRole(dbc, s.memberships, groupID, rd.Email, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.memberships.ListByGroup(dbc, groupID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID uuid.UUID, email string) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apierr.Validation("member email is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}

		// Lock the group row so two concurrent removals cannot both read a
		// two-owner state and together delete the last owner.
		if _, terr := s.groups.LockByID(txc, groupID); terr != nil {
			return apierr.NotFound("group not found")
		}

		actor, terr := s.memberships.GetByGroupAndEmail(txc, groupID, rd.Email)
		if terr != nil {
			return terr
		}
		selfRemoval := strings.EqualFold(rd.Email, email)
		if !selfRemoval && (actor == nil || actor.Role != types.RoleOwner) {
			return apierr.Permission("only group owners can remove members")
		}

		target, terr := s.memberships.GetByGroupAndEmail(txc, groupID, email)
		if terr != nil {
			return terr
		}
		if target == nil {
			return apierr.NotFound("%s is not a member of this group", email)
		}
		if target.Role == types.RoleOwner {
			owners, terr := s.memberships.CountByGroupAndRole(txc, groupID, types.RoleOwner)
			if terr != nil {
				return terr
			}
			if owners <= 1 {
				return apierr.LastOwner("cannot remove the last owner of a group")
			}
		}
		return s.memberships.DeleteByIDs(txc, []uuid.UUID{target.ID})
	})
	if err != nil {
		return err
	}

	s.audit.LogEvent(ctx, rd.Email, types.AuditRemoveMember, map[string]any{
		"group_id": groupID.String(),
		"email":    email,
	})
	return nil
}
