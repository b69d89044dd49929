package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AthenaMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.AthenaMessage) ([]*types.AthenaMessage, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*types.AthenaMessage, error)
}

type athenaMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAthenaMessageRepo(db *gorm.DB, baseLog *logger.Logger) AthenaMessageRepo {
	return &athenaMessageRepo{db: db, log: baseLog.With("repo", "AthenaMessageRepo")}
}

func (r *athenaMessageRepo) Create(dbc dbctx.Context, rows []*types.AthenaMessage) ([]*types.AthenaMessage, error) {
	if len(rows) == 0 {
		return []*types.AthenaMessage{}, nil
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

func (r *athenaMessageRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, limit int) ([]*types.AthenaMessage, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("missing project_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.AthenaMessage
	if err := txx.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
