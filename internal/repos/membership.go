package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type MembershipRepo interface {
	Create(dbc dbctx.Context, rows []*types.Membership) ([]*types.Membership, error)
	GetByGroupAndEmail(dbc dbctx.Context, groupID uuid.UUID, email string) (*types.Membership, error)
	ListByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.Membership, error)
	ListByEmail(dbc dbctx.Context, email string) ([]*types.Membership, error)
	CountByGroupAndRole(dbc dbctx.Context, groupID uuid.UUID, role string) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return &membershipRepo{db: db, log: baseLog.With("repo", "MembershipRepo")}
}

func (r *membershipRepo) Create(dbc dbctx.Context, rows []*types.Membership) ([]*types.Membership, error) {
	if len(rows) == 0 {
		return []*types.Membership{}, nil
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

// GetByGroupAndEmail returns (nil, nil) when no membership row exists.
func (r *membershipRepo) GetByGroupAndEmail(dbc dbctx.Context, groupID uuid.UUID, email string) (*types.Membership, error) {
	if groupID == uuid.Nil || email == "" {
		return nil, fmt.Errorf("missing group_id or email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Membership
	if err := txx.WithContext(dbc.Ctx).
		Where("group_id = ? AND email = ?", groupID, email).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *membershipRepo) ListByGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.Membership, error) {
	if groupID == uuid.Nil {
		return nil, fmt.Errorf("missing group_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Membership
	if err := txx.WithContext(dbc.Ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *membershipRepo) ListByEmail(dbc dbctx.Context, email string) ([]*types.Membership, error) {
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Membership
	if err := txx.WithContext(dbc.Ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *membershipRepo) CountByGroupAndRole(dbc dbctx.Context, groupID uuid.UUID, role string) (int64, error) {
	if groupID == uuid.Nil {
		return 0, fmt.Errorf("missing group_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Membership{}).
		Where("group_id = ? AND role = ?", groupID, role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *membershipRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Membership{}).Error
}
