package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type ShiftSummaryRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftSummary, error)
  GetByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.ShiftSummary, error)
  Update(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error
}

type shiftSummaryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewShiftSummaryRepo(db *gorm.DB, log *logger.Logger) ShiftSummaryRepo {
  return &shiftSummaryRepo{db: db, log: log.With("repo", "ShiftSummaryRepo")}
}

// Upsert writes on the (restaurant_id, shift_date, shift_type) key so a
// regeneration replaces the previous summary in place.
func (r *shiftSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{
        {Name: "restaurant_id"},
        {Name: "shift_date"},
        {Name: "shift_type"},
      },
      DoUpdates: clause.AssignmentColumns([]string{
        "status", "summary_text", "action_items", "pos_metrics",
        "fail_reason", "generated_at", "updated_at",
      }),
    }).
    Create(summary).Error
}

func (r *shiftSummaryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShiftSummary, error) {
  if tx == nil {
    tx = r.db
  }
  var summary types.ShiftSummary
  if err := tx.WithContext(ctx).First(&summary, "id = ?", id).Error; err != nil {
    return nil, err
  }
  return &summary, nil
}

func (r *shiftSummaryRepo) GetByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) (*types.ShiftSummary, error) {
  if tx == nil {
    tx = r.db
  }
  var summary types.ShiftSummary
  err := tx.WithContext(ctx).
    First(&summary, "restaurant_id = ? AND shift_date = ? AND shift_type = ?",
      restaurantID, shiftDate, shiftType).Error
  if err != nil {
    return nil, err
  }
  return &summary, nil
}

func (r *shiftSummaryRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.ShiftSummary, error) {
  if tx == nil {
    tx = r.db
  }
  if limit <= 0 {
    limit = 30
  }
  var summaries []types.ShiftSummary
  err := tx.WithContext(ctx).
    Where("restaurant_id = ?", restaurantID).
    Order("shift_date DESC, shift_type ASC").
    Limit(limit).
    Find(&summaries).Error
  if err != nil {
    return nil, err
  }
  return summaries, nil
}

func (r *shiftSummaryRepo) Update(ctx context.Context, tx *gorm.DB, summary *types.ShiftSummary) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(summary).Error
}
