package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type RestaurantMemberRepo interface {
  Create(ctx context.Context, tx *gorm.DB, member *types.RestaurantMember) error
  Get(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID) (*types.RestaurantMember, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.RestaurantMember, error)
  Update(ctx context.Context, tx *gorm.DB, member *types.RestaurantMember) error
  Delete(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID) error
}

type restaurantMemberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRestaurantMemberRepo(db *gorm.DB, log *logger.Logger) RestaurantMemberRepo {
  return &restaurantMemberRepo{db: db, log: log.With("repo", "RestaurantMemberRepo")}
}

func (r *restaurantMemberRepo) Create(ctx context.Context, tx *gorm.DB, member *types.RestaurantMember) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(member).Error
}

func (r *restaurantMemberRepo) Get(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID) (*types.RestaurantMember, error) {
  if tx == nil {
    tx = r.db
  }
  var member types.RestaurantMember
  err := tx.WithContext(ctx).
    First(&member, "restaurant_id = ? AND user_id = ?", restaurantID, userID).Error
  if err != nil {
    return nil, err
  }
  return &member, nil
}

func (r *restaurantMemberRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.RestaurantMember, error) {
  if tx == nil {
    tx = r.db
  }
  var members []types.RestaurantMember
  err := tx.WithContext(ctx).
    Preload("User").
    Where("restaurant_id = ?", restaurantID).
    Order("created_at ASC").
    Find(&members).Error
  if err != nil {
    return nil, err
  }
  return members, nil
}

func (r *restaurantMemberRepo) Update(ctx context.Context, tx *gorm.DB, member *types.RestaurantMember) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(member).Error
}

func (r *restaurantMemberRepo) Delete(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).
    Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
    Delete(&types.RestaurantMember{}).Error
}
