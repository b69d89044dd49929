package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, tokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, tokens []string) ([]*types.UserToken, error)
	SetReadOnlyByUserID(dbc dbctx.Context, userID uuid.UUID, readOnly bool) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, rows []*types.UserToken) ([]*types.UserToken, error) {
	if len(rows) == 0 {
		return []*types.UserToken{}, nil
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

func (r *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	if len(userIDs) == 0 {
		return []*types.UserToken{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserToken
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, tokens []string) ([]*types.UserToken, error) {
	if len(tokens) == 0 {
		return []*types.UserToken{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserToken
	if err := txx.WithContext(dbc.Ctx).
		Where("access_token IN ?", tokens).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, tokens []string) ([]*types.UserToken, error) {
	if len(tokens) == 0 {
		return []*types.UserToken{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserToken
	if err := txx.WithContext(dbc.Ctx).
		Where("refresh_token IN ?", tokens).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userTokenRepo) SetReadOnlyByUserID(dbc dbctx.Context, userID uuid.UUID, readOnly bool) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.UserToken{}).
		Where("user_id = ?", userID).
		Update("read_only", readOnly).Error
}

func (r *userTokenRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.UserToken{}).Error
}
