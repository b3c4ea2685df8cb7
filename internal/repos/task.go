package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type TaskRepo interface {
  Create(ctx context.Context, tx *gorm.DB, task *types.Task) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Task, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.Task, error)
  Update(ctx context.Context, tx *gorm.DB, task *types.Task) error
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
  MaxPosition(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) (int, error)
  ReorderAll(ctx context.Context, restaurantID uuid.UUID, orderedIDs []uuid.UUID) error
}

type taskRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) TaskRepo {
  return &taskRepo{db: db, log: log.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, task *types.Task) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Task, error) {
  if tx == nil {
    tx = r.db
  }
  var task types.Task
  err := tx.WithContext(ctx).
    Preload("Creator").
    Preload("Assignee").
    First(&task, "id = ?", id).Error
  if err != nil {
    return nil, err
  }
  return &task, nil
}

func (r *taskRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.Task, error) {
  if tx == nil {
    tx = r.db
  }
  var tasks []types.Task
  err := tx.WithContext(ctx).
    Preload("Creator").
    Preload("Assignee").
    Where("restaurant_id = ?", restaurantID).
    Order("position ASC").
    Find(&tasks).Error
  if err != nil {
    return nil, err
  }
  return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, tx *gorm.DB, task *types.Task) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Delete(&types.Task{}, "id = ?", id).Error
}

func (r *taskRepo) MaxPosition(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) (int, error) {
  if tx == nil {
    tx = r.db
  }
  var max *int
  err := tx.WithContext(ctx).Model(&types.Task{}).
    Where("restaurant_id = ?", restaurantID).
    Select("MAX(position)").
    Scan(&max).Error
  if err != nil {
    return 0, err
  }
  if max == nil {
    return -1, nil
  }
  return *max, nil
}

// ReorderAll rewrites positions 0..n-1 in the given order inside a single
// transaction so a concurrent reorder cannot interleave.
func (r *taskRepo) ReorderAll(ctx context.Context, restaurantID uuid.UUID, orderedIDs []uuid.UUID) error {
  return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for i, id := range orderedIDs {
      res := tx.Model(&types.Task{}).
        Where("id = ? AND restaurant_id = ?", id, restaurantID).
        Update("position", i)
      if res.Error != nil {
        return res.Error
      }
      if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
      }
    }
    return nil
  })
}
