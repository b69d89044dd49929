package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type ChatMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error)
	ListByProjectSince(dbc dbctx.Context, projectID uuid.UUID, sinceSeq int64, limit int) ([]*types.ChatMessage, error)
	NextSeq(dbc dbctx.Context, projectID uuid.UUID) (int64, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) Create(dbc dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	if len(rows) == 0 {
		return []*types.ChatMessage{}, nil
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

func (r *chatMessageRepo) ListByProjectSince(dbc dbctx.Context, projectID uuid.UUID, sinceSeq int64, limit int) ([]*types.ChatMessage, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("missing project_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ChatMessage
	if err := txx.WithContext(dbc.Ctx).
		Where("project_id = ? AND seq > ?", projectID, sinceSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NextSeq returns the next gapless sequence number for a project. Callers
// must hold the project-row lock (ProjectRepo.LockByID) in the same
// transaction, otherwise concurrent posts could read the same maximum.
func (r *chatMessageRepo) NextSeq(dbc dbctx.Context, projectID uuid.UUID) (int64, error) {
	if projectID == uuid.Nil {
		return 0, fmt.Errorf("missing project_id")
	}
	if dbc.Tx == nil {
		return 0, fmt.Errorf("NextSeq requires dbc.Tx")
	}
	var max int64
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Model(&types.ChatMessage{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
