package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type VoiceMemoRepo interface {
  Create(ctx context.Context, tx *gorm.DB, memo *types.VoiceMemo) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VoiceMemo, error)
  ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.VoiceMemo, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.VoiceMemo, error)
  Update(ctx context.Context, tx *gorm.DB, memo *types.VoiceMemo) error
  ClaimNextPending(ctx context.Context) (*types.VoiceMemo, error)
  ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int64, error)
}

type voiceMemoRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewVoiceMemoRepo(db *gorm.DB, log *logger.Logger) VoiceMemoRepo {
  return &voiceMemoRepo{db: db, log: log.With("repo", "VoiceMemoRepo")}
}

func (r *voiceMemoRepo) Create(ctx context.Context, tx *gorm.DB, memo *types.VoiceMemo) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(memo).Error
}

func (r *voiceMemoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VoiceMemo, error) {
  if tx == nil {
    tx = r.db
  }
  var memo types.VoiceMemo
  err := tx.WithContext(ctx).
    Preload("Author").
    First(&memo, "id = ?", id).Error
  if err != nil {
    return nil, err
  }
  return &memo, nil
}

func (r *voiceMemoRepo) ListByShift(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, shiftDate, shiftType string) ([]types.VoiceMemo, error) {
  if tx == nil {
    tx = r.db
  }
  var memos []types.VoiceMemo
  err := tx.WithContext(ctx).
    Preload("Author").
    Where("restaurant_id = ? AND shift_date = ? AND shift_type = ?", restaurantID, shiftDate, shiftType).
    Order("created_at ASC").
    Find(&memos).Error
  if err != nil {
    return nil, err
  }
  return memos, nil
}

func (r *voiceMemoRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.VoiceMemo, error) {
  if tx == nil {
    tx = r.db
  }
  if limit <= 0 {
    limit = 50
  }
  var memos []types.VoiceMemo
  err := tx.WithContext(ctx).
    Preload("Author").
    Where("restaurant_id = ?", restaurantID).
    Order("created_at DESC").
    Limit(limit).
    Find(&memos).Error
  if err != nil {
    return nil, err
  }
  return memos, nil
}

func (r *voiceMemoRepo) Update(ctx context.Context, tx *gorm.DB, memo *types.VoiceMemo) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(memo).Error
}

// ClaimNextPending atomically flips the oldest pending memo to processing.
// Row locking keeps multiple workers from grabbing the same memo.
func (r *voiceMemoRepo) ClaimNextPending(ctx context.Context) (*types.VoiceMemo, error) {
  var claimed *types.VoiceMemo
  err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var memo types.VoiceMemo
    err := tx.
      Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
      Where("status = ?", types.VoiceMemoStatusPending).
      Order("created_at ASC").
      First(&memo).Error
    if err != nil {
      return err
    }
    now := time.Now()
    memo.Status = types.VoiceMemoStatusProcessing
    memo.ClaimedAt = &now
    memo.Attempts++
    if err := tx.Save(&memo).Error; err != nil {
      return err
    }
    claimed = &memo
    return nil
  })
  if err != nil {
    return nil, err
  }
  return claimed, nil
}

// ReleaseStaleClaims requeues memos whose worker died mid-transcription.
func (r *voiceMemoRepo) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int64, error) {
  cutoff := time.Now().Add(-olderThan)
  res := r.db.WithContext(ctx).Model(&types.VoiceMemo{}).
    Where("status = ? AND claimed_at < ?", types.VoiceMemoStatusProcessing, cutoff).
    Updates(map[string]interface{}{
      "status":     types.VoiceMemoStatusPending,
      "claimed_at": nil,
    })
  return res.RowsAffected, res.Error
}
