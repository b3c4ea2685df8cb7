package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type UserRepo interface {
  Create(ctx context.Context, tx *gorm.DB, user *types.User) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
  GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
  Update(ctx context.Context, tx *gorm.DB, user *types.User) error
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
  return &userRepo{db: db, log: log.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
  if tx == nil {
    tx = r.db
  }
  var user types.User
  if err := tx.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
    return nil, err
  }
  return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
  if tx == nil {
    tx = r.db
  }
  var user types.User
  if err := tx.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
    return nil, err
  }
  return &user, nil
}

func (r *userRepo) Update(ctx context.Context, tx *gorm.DB, user *types.User) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(user).Error
}
