package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type AICallLogRepo interface {
  Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) error
}

type aiCallLogRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAICallLogRepo(db *gorm.DB, log *logger.Logger) AICallLogRepo {
  return &aiCallLogRepo{db: db, log: log.With("repo", "AICallLogRepo")}
}

func (r *aiCallLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(entry).Error
}
