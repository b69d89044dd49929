package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type GroupRepo interface {
	Create(dbc dbctx.Context, rows []*types.Group) ([]*types.Group, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Group, error)
	ListByMember(dbc dbctx.Context, email string) ([]*types.Group, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Group, error)
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) Create(dbc dbctx.Context, rows []*types.Group) ([]*types.Group, error) {
	if len(rows) == 0 {
		return []*types.Group{}, nil
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

func (r *groupRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Group, error) {
	if len(ids) == 0 {
		return []*types.Group{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Group
	if err := txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) ListByMember(dbc dbctx.Context, email string) ([]*types.Group, error) {
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Group
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Group{}).
		Joins(`JOIN "membership" ON "membership".group_id = "group".id`).
		Where(`"membership".email = ?`, email).
		Order(`"group".created_at ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LockByID takes a FOR UPDATE lock on the group row. Requires dbc.Tx:
// membership mutations serialize per group through this lock.
func (r *groupRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Group, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Group
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
