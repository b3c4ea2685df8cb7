package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type UserTokenRepo interface {
  Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) error
  GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.UserToken, error)
  Revoke(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
  RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
  DeleteExpired(ctx context.Context, tx *gorm.DB) error
}

type userTokenRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
  return &userTokenRepo{db: db, log: log.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(token).Error
}

func (r *userTokenRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.UserToken, error) {
  if tx == nil {
    tx = r.db
  }
  var token types.UserToken
  if err := tx.WithContext(ctx).First(&token, "token_hash = ?", hash).Error; err != nil {
    return nil, err
  }
  return &token, nil
}

func (r *userTokenRepo) Revoke(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Model(&types.UserToken{}).
    Where("id = ?", id).
    Update("revoked", true).Error
}

func (r *userTokenRepo) RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Model(&types.UserToken{}).
    Where("user_id = ? AND revoked = false", userID).
    Update("revoked", true).Error
}

func (r *userTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).
    Where("expires_at < ?", time.Now()).
    Delete(&types.UserToken{}).Error
}
