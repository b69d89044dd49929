package repos

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AbilityGrantRepo interface {
	Create(dbc dbctx.Context, rows []*types.AbilityGrant) ([]*types.AbilityGrant, error)
	ListByEmail(dbc dbctx.Context, email string) ([]*types.AbilityGrant, error)
	Exists(dbc dbctx.Context, email, ability string) (bool, error)
}

type abilityGrantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAbilityGrantRepo(db *gorm.DB, baseLog *logger.Logger) AbilityGrantRepo {
	return &abilityGrantRepo{db: db, log: baseLog.With("repo", "AbilityGrantRepo")}
}

func (r *abilityGrantRepo) Create(dbc dbctx.Context, rows []*types.AbilityGrant) ([]*types.AbilityGrant, error) {
	if len(rows) == 0 {
		return []*types.AbilityGrant{}, nil
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

func (r *abilityGrantRepo) ListByEmail(dbc dbctx.Context, email string) ([]*types.AbilityGrant, error) {
	if email == "" {
		return nil, fmt.Errorf("missing email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.AbilityGrant
	if err := txx.WithContext(dbc.Ctx).
		Where("email = ?", email).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *abilityGrantRepo) Exists(dbc dbctx.Context, email, ability string) (bool, error) {
	if email == "" || ability == "" {
		return false, fmt.Errorf("missing email or ability")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.AbilityGrant{}).
		Where("email = ? AND ability = ?", email, ability).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
