package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AddFindingInput struct {
	ProjectID uuid.UUID
	Text      string
	Quality   string
	// ForSupervisor routes a copy of the note to the mentor channel.
	ForSupervisor bool
}

type ProjectService interface {
	// CreateProject requires editor access or better in the group.
	CreateProject(ctx context.Context, groupID uuid.UUID, title string) (*types.Project, error)
	// AddFinding appends an immutable finding. Editor access or better.
	AddFinding(ctx context.Context, in AddFindingInput) (*types.Finding, error)
	ListProjects(ctx context.Context, groupID uuid.UUID) ([]*types.Project, error)
	ListFindings(ctx context.Context, projectID uuid.UUID) ([]*types.Finding, error)
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	projects    repos.ProjectRepo
	findings    repos.FindingRepo
	groups      repos.GroupRepo
	memberships repos.MembershipRepo
	audit       AuditService
	notify      MentorNotifier
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	findingRepo repos.FindingRepo,
	groupRepo repos.GroupRepo,
	membershipRepo repos.MembershipRepo,
	auditSvc AuditService,
	notifier MentorNotifier,
) ProjectService {
	return &projectService{
		db:          db,
		log:         baseLog.With("service", "ProjectService"),
		projects:    projectRepo,
		findings:    findingRepo,
		groups:      groupRepo,
		memberships: membershipRepo,
		audit:       auditSvc,
		notify:      notifier,
	}
}

func (s *projectService) CreateProject(ctx context.Context, groupID uuid.UUID, title string) (*types.Project, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation("project title is required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	groups, err := s.groups.GetByIDs(dbc, []uuid.UUID{groupID})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apierr.NotFound("group not found")
	}
	if err := requireRole(dbc, s.memberships, groupID, rd.Email, types.RoleEditor); err != nil {
		return nil, err
	}

	rows, err := s.projects.Create(dbc, []*types.Project{{
		GroupID:      groupID,
		Title:        title,
		CreatorEmail: rd.Email,
	}})
	if err != nil {
		return nil, err
	}
	project := rows[0]

	s.audit.LogEvent(ctx, rd.Email, types.AuditCreateProject, map[string]any{
		"group_id":   groupID.String(),
		"project_id": project.ID.String(),
		"title":      project.Title,
	})
	return project, nil
}

func (s *projectService) AddFinding(ctx context.Context, in AddFindingInput) (*types.Finding, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apierr.Validation("finding text is required")
	}
	if !types.ValidQuality(in.Quality) {
		return nil, apierr.Validation("quality must be one of Preliminary, Validated, Gold")
	}

	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(dbc, s.memberships, project.GroupID, rd.Email, types.RoleEditor); err != nil {
		return nil, err
	}

	rows, err := s.findings.Create(dbc, []*types.Finding{{
		ProjectID:   project.ID,
		AuthorEmail: rd.Email,
		Text:        text,
		Quality:     in.Quality,
	}})
	if err != nil {
		return nil, err
	}
	finding := rows[0]

	s.audit.LogEvent(ctx, rd.Email, types.AuditAddFinding, map[string]any{
		"project_id": project.ID.String(),
		"finding_id": finding.ID.String(),
		"quality":    finding.Quality,
	})
	if in.ForSupervisor {
		s.notify.Notify(map[string]any{
			"type":       "student_note",
			"email":      rd.Email,
			"name":       rd.FullName,
			"project_id": project.ID.String(),
			"text":       text,
		})
	}
	return finding, nil
}

func (s *projectService) ListProjects(ctx context.Context, groupID uuid.UUID) ([]*types.Project, error) {
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
	return s.projects.ListByGroup(dbc, groupID)
}

func (s *projectService) ListFindings(ctx context.Context, projectID uuid.UUID) ([]*types.Finding, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(dbc, s.memberships, project.GroupID, rd.Email, types.RoleViewer); err != nil {
		return nil, err
	}
	return s.findings.ListByProject(dbc, projectID)
}

func (s *projectService) getProject(dbc dbctx.Context, projectID uuid.UUID) (*types.Project, error) {
	rows, err := s.projects.GetByIDs(dbc, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("project not found")
	}
	return rows[0], nil
}
