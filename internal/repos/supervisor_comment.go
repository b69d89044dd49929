package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type SupervisorCommentRepo interface {
	Create(dbc dbctx.Context, rows []*types.SupervisorComment) ([]*types.SupervisorComment, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.SupervisorComment, error)
}

type supervisorCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupervisorCommentRepo(db *gorm.DB, baseLog *logger.Logger) SupervisorCommentRepo {
	return &supervisorCommentRepo{db: db, log: baseLog.With("repo", "SupervisorCommentRepo")}
}

func (r *supervisorCommentRepo) Create(dbc dbctx.Context, rows []*types.SupervisorComment) ([]*types.SupervisorComment, error) {
	if len(rows) == 0 {
		return []*types.SupervisorComment{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *supervisorCommentRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.SupervisorComment, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("missing project_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.SupervisorComment
	if err := txx.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
