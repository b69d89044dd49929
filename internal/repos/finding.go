package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

// FindingRepo is append-only: findings are immutable once created.
type FindingRepo interface {
	Create(dbc dbctx.Context, rows []*types.Finding) ([]*types.Finding, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Finding, error)
}

type findingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFindingRepo(db *gorm.DB, baseLog *logger.Logger) FindingRepo {
	return &findingRepo{db: db, log: baseLog.With("repo", "FindingRepo")}
}

func (r *findingRepo) Create(dbc dbctx.Context, rows []*types.Finding) ([]*types.Finding, error) {
	if len(rows) == 0 {
		return []*types.Finding{}, nil
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

func (r *findingRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Finding, error) {
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("missing project_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Finding
	if err := txx.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
