package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type RestaurantRepo interface {
  Create(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Restaurant, error)
  Update(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) error
  ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Restaurant, error)
}

type restaurantRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRestaurantRepo(db *gorm.DB, log *logger.Logger) RestaurantRepo {
  return &restaurantRepo{db: db, log: log.With("repo", "RestaurantRepo")}
}

func (r *restaurantRepo) Create(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(restaurant).Error
}

func (r *restaurantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Restaurant, error) {
  if tx == nil {
    tx = r.db
  }
  var restaurant types.Restaurant
  if err := tx.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
    return nil, err
  }
  return &restaurant, nil
}

func (r *restaurantRepo) Update(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(restaurant).Error
}

func (r *restaurantRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Restaurant, error) {
  if tx == nil {
    tx = r.db
  }
  var restaurants []types.Restaurant
  err := tx.WithContext(ctx).
    Joins("JOIN restaurant_members ON restaurant_members.restaurant_id = restaurants.id").
    Where("restaurant_members.user_id = ?", userID).
    Order("restaurants.created_at ASC").
    Find(&restaurants).Error
  if err != nil {
    return nil, err
  }
  return restaurants, nil
}
