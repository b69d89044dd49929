package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/chat"
	athenaclient "github.com/junoathena/gateway-backend/internal/clients/athena"
	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/types"
)

const (
	// systemAuthor names the synthetic author of command echo replies.
	systemAuthor = "athena@system"

	athenaReplyTimeout = 30 * time.Second
	athenaErrorText    = "Athena could not answer right now. Your question was recorded."
)

type ChatService interface {
	// Post appends a chat entry. Bodies starting with the command sentinel
	// are classified kind=command; everything else is kind=message. Sequence
	// numbers are allocated under the project-row lock, so they are strictly
	// increasing and gapless per project.
	Post(ctx context.Context, projectID uuid.UUID, body string) (*types.ChatMessage, error)
	// Fetch returns entries with seq greater than sinceSeq in seq order.
	Fetch(ctx context.Context, projectID uuid.UUID, sinceSeq int64, limit int) ([]*types.ChatMessage, error)
	// AskAthena records the question and exactly one assistant reply before
	// returning. A failed generation still records the assistant entry, with
	// status error.
	AskAthena(ctx context.Context, projectID uuid.UUID, text string) (*types.AthenaMessage, *types.AthenaMessage, error)
	ListAthena(ctx context.Context, projectID uuid.UUID, limit int) ([]*types.AthenaMessage, error)
	// AddSupervisorComment is mentor-only. The mentor need not be a group
	// member.
	AddSupervisorComment(ctx context.Context, projectID uuid.UUID, text, explainedText string) (*types.SupervisorComment, error)
	ListSupervisorComments(ctx context.Context, projectID uuid.UUID) ([]*types.SupervisorComment, error)
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	messages    repos.ChatMessageRepo
	athenaMsgs  repos.AthenaMessageRepo
	comments    repos.SupervisorCommentRepo
	projects    repos.ProjectRepo
	memberships repos.MembershipRepo
	athena      athenaclient.Client
	abilitySvc  AbilityService
	audit       AuditService
}

func NewChatService(
	db *gorm.DB,
	baseLog *logger.Logger,
	messageRepo repos.ChatMessageRepo,
	athenaRepo repos.AthenaMessageRepo,
	commentRepo repos.SupervisorCommentRepo,
	projectRepo repos.ProjectRepo,
	membershipRepo repos.MembershipRepo,
	athenaClient athenaclient.Client,
	abilitySvc AbilityService,
	auditSvc AuditService,
) ChatService {
	return &chatService{
		db:          db,
		log:         baseLog.With("service", "ChatService"),
		messages:    messageRepo,
		athenaMsgs:  athenaRepo,
		comments:    commentRepo,
		projects:    projectRepo,
		memberships: membershipRepo,
		athena:      athenaClient,
		abilitySvc:  abilitySvc,
		audit:       auditSvc,
	}
}

func (s *chatService) Post(ctx context.Context, projectID uuid.UUID, body string) (*types.ChatMessage, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apierr.Validation("message body is required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(dbc, s.memberships, project.GroupID, rd.Email, types.RoleEditor); err != nil {
		return nil, err
	}

	kind := types.ChatKindMessage
	var cmd chat.Command
	var parsed bool
	echoBody := ""
	if chat.IsCommand(body) {
		kind = types.ChatKindCommand
		if cmd, parsed = chat.ParseCommand(body); parsed {
			switch {
			case !chat.Known(cmd.Verb):
				echoBody = chat.UnknownVerbEcho(cmd)
			case chat.IsModeration(cmd.Verb):
				allowed, aerr := s.abilitySvc.Can(ctx, rd.Email, abilities.ChatModeration)
				if aerr != nil {
					return nil, aerr
				}
				if !allowed {
					echoBody = chat.DeniedVerbEcho(cmd)
				}
			}
		}
	}

	var msg *types.ChatMessage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, terr := s.projects.LockByID(txc, projectID); terr != nil {
			return terr
		}
		seq, terr := s.messages.NextSeq(txc, projectID)
		if terr != nil {
			return terr
		}
		rows := []*types.ChatMessage{{
			ProjectID:   projectID,
			Seq:         seq,
			AuthorEmail: rd.Email,
			AuthorName:  rd.FullName,
			Kind:        kind,
			Body:        body,
		}}
		if echoBody != "" {
			rows = append(rows, &types.ChatMessage{
				ProjectID:   projectID,
				Seq:         seq + 1,
				AuthorEmail: systemAuthor,
				AuthorName:  "Athena",
				Kind:        types.ChatKindMessage,
				Body:        echoBody,
			})
		}
		created, terr := s.messages.Create(txc, rows)
		if terr != nil {
			return terr
		}
		msg = created[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if kind == types.ChatKindCommand {
		payload := map[string]any{
			"project_id": projectID.String(),
			"seq":        msg.Seq,
		}
		if parsed {
			payload["verb"] = cmd.Verb
			payload["args"] = cmd.Args
			payload["known"] = chat.Known(cmd.Verb)
		}
		s.audit.LogEvent(ctx, rd.Email, types.AuditChatCommand, payload)
	}
	return msg, nil
}

func (s *chatService) Fetch(ctx context.Context, projectID uuid.UUID, sinceSeq int64, limit int) ([]*types.ChatMessage, error) {
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
	return s.messages.ListByProjectSince(dbc, projectID, sinceSeq, limit)
}

func (s *chatService) AskAthena(ctx context.Context, projectID uuid.UUID, text string) (*types.AthenaMessage, *types.AthenaMessage, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, nil, apierr.Auth("no active session")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apierr.Validation("question text is required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, projectID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireRole(dbc, s.memberships, project.GroupID, rd.Email, types.RoleViewer); err != nil {
		return nil, nil, err
	}

	// Generate before touching the database: the user and assistant rows can
	// then land in one transaction, so a user entry is never stored without
	// its assistant counterpart.
	replyStatus := types.AthenaStatusSent
	genCtx, cancel := context.WithTimeout(ctx, athenaReplyTimeout)
	replyText, err := s.athena.GenerateReply(genCtx, text)
	cancel()
	if err != nil {
		s.log.Warn("athena reply generation failed", "project_id", projectID.String(), "error", err)
		replyStatus = types.AthenaStatusError
		replyText = athenaErrorText
	}

	var userMsg, assistantMsg *types.AthenaMessage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		rows, terr := s.athenaMsgs.Create(txc, []*types.AthenaMessage{
			{
				ProjectID:  projectID,
				Role:       types.AthenaRoleUser,
				Status:     types.AthenaStatusSent,
				AuthorName: rd.FullName,
				Text:       text,
			},
			{
				ProjectID:  projectID,
				Role:       types.AthenaRoleAssistant,
				Status:     replyStatus,
				AuthorName: "Athena",
				Text:       replyText,
			},
		})
		if terr != nil {
			return terr
		}
		userMsg, assistantMsg = rows[0], rows[1]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.audit.LogEvent(ctx, rd.Email, types.AuditAthenaUser, map[string]any{
		"project_id": projectID.String(),
	})
	s.audit.LogEvent(ctx, rd.Email, types.AuditAthenaAssistant, map[string]any{
		"project_id": projectID.String(),
		"status":     replyStatus,
	})
	return userMsg, assistantMsg, nil
}

func (s *chatService) ListAthena(ctx context.Context, projectID uuid.UUID, limit int) ([]*types.AthenaMessage, error) {
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
	return s.athenaMsgs.ListByProject(dbc, projectID, limit)
}

func (s *chatService) AddSupervisorComment(ctx context.Context, projectID uuid.UUID, text, explainedText string) (*types.SupervisorComment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	if !rd.Mentor {
		return nil, apierr.Permission("supervisor comments require the mentor role")
	}
	if err := requireWritable(rd.ReadOnly); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.Validation("comment text is required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, projectID)
	if err != nil {
		return nil, err
	}

	rows, err := s.comments.Create(dbc, []*types.SupervisorComment{{
		ProjectID:     project.ID,
		AuthorEmail:   rd.Email,
		Text:          text,
		ExplainedText: strings.TrimSpace(explainedText),
	}})
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, rd.Email, types.AuditSupervisorComment, map[string]any{
		"project_id": project.ID.String(),
		"comment_id": rows[0].ID.String(),
	})
	return rows[0], nil
}

func (s *chatService) ListSupervisorComments(ctx context.Context, projectID uuid.UUID) ([]*types.SupervisorComment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Auth("no active session")
	}
	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.getProject(dbc, projectID)
	if err != nil {
		return nil, err
	}
	// Mentors can read the channel without holding a membership.
	if !rd.Mentor {
		if err := requireRole(dbc, s.memberships, project.GroupID, rd.Email, types.RoleViewer); err != nil {
			return nil, err
		}
	}
	return s.comments.ListByProject(dbc, projectID)
}

func (s *chatService) getProject(dbc dbctx.Context, projectID uuid.UUID) (*types.Project, error) {
	rows, err := s.projects.GetByIDs(dbc, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("project not found")
	}
	return rows[0], nil
}
