package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type ShiftLogRepo interface {
  Create(ctx context.Context, tx *gorm.DB, log *types.ShiftLog) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftLog, error)
  ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.ShiftLog, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.ShiftLog, error)
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type shiftLogRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewShiftLogRepo(db *gorm.DB, log *logger.Logger) ShiftLogRepo {
  return &shiftLogRepo{db: db, log: log.With("repo", "ShiftLogRepo")}
}

func (r *shiftLogRepo) Create(ctx context.Context, tx *gorm.DB, log *types.ShiftLog) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(log).Error
}

func (r *shiftLogRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftLog, error) {
  if tx == nil {
    tx = r.db
  }
  var entry types.ShiftLog
  err := tx.WithContext(ctx).
    Preload("Author").
    First(&entry, "id = ?", id).Error
  if err != nil {
    return nil, err
  }
  return &entry, nil
}

func (r *shiftLogRepo) ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.ShiftLog, error) {
  if tx == nil {
    tx = r.db
  }
  var entries []types.ShiftLog
  err := tx.WithContext(ctx).
    Preload("Author").
    Where("restaurant_id = ? AND shift_date = ? AND shift_type = ?", restaurantID, shiftDate, shiftType).
    Order("created_at ASC").
    Find(&entries).Error
  if err != nil {
    return nil, err
  }
  return entries, nil
}

func (r *shiftLogRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.ShiftLog, error) {
  if tx == nil {
    tx = r.db
  }
  if limit <= 0 {
    limit = 50
  }
  var entries []types.ShiftLog
  err := tx.WithContext(ctx).
    Preload("Author").
    Where("restaurant_id = ?", restaurantID).
    Order("created_at DESC").
    Limit(limit).
    Find(&entries).Error
  if err != nil {
    return nil, err
  }
  return entries, nil
}

// Entries are immutable once written; there is deliberately no Update.
func (r *shiftLogRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Delete(&types.ShiftLog{}, "id = ?", id).Error
}
