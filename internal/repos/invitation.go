package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type InvitationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, invitation *types.Invitation) error
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Invitation, error)
  GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.Invitation, error)
  GetPendingByEmail(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, email string) (*types.Invitation, error)
  ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.Invitation, error)
  Update(ctx context.Context, tx *gorm.DB, invitation *types.Invitation) error
  ExpireStale(ctx context.Context, tx *gorm.DB) (int64, error)
}

type invitationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewInvitationRepo(db *gorm.DB, log *logger.Logger) InvitationRepo {
  return &invitationRepo{db: db, log: log.With("repo", "InvitationRepo")}
}

func (r *invitationRepo) Create(ctx context.Context, tx *gorm.DB, invitation *types.Invitation) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Invitation, error) {
  if tx == nil {
    tx = r.db
  }
  var invitation types.Invitation
  if err := tx.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
    return nil, err
  }
  return &invitation, nil
}

func (r *invitationRepo) GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*types.Invitation, error) {
  if tx == nil {
    tx = r.db
  }
  var invitation types.Invitation
  err := tx.WithContext(ctx).
    Preload("Restaurant").
    First(&invitation, "token_hash = ?", tokenHash).Error
  if err != nil {
    return nil, err
  }
  return &invitation, nil
}

func (r *invitationRepo) GetPendingByEmail(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, email string) (*types.Invitation, error) {
  if tx == nil {
    tx = r.db
  }
  var invitation types.Invitation
  err := tx.WithContext(ctx).
    First(&invitation, "restaurant_id = ? AND email = ? AND status = ?",
      restaurantID, email, types.InvitationStatusPending).Error
  if err != nil {
    return nil, err
  }
  return &invitation, nil
}

func (r *invitationRepo) ListByRestaurant(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID) ([]types.Invitation, error) {
  if tx == nil {
    tx = r.db
  }
  var invitations []types.Invitation
  err := tx.WithContext(ctx).
    Preload("Inviter").
    Where("restaurant_id = ?", restaurantID).
    Order("created_at DESC").
    Find(&invitations).Error
  if err != nil {
    return nil, err
  }
  return invitations, nil
}

func (r *invitationRepo) Update(ctx context.Context, tx *gorm.DB, invitation *types.Invitation) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Save(invitation).Error
}

func (r *invitationRepo) ExpireStale(ctx context.Context, tx *gorm.DB) (int64, error) {
  if tx == nil {
    tx = r.db
  }
  res := tx.WithContext(ctx).Model(&types.Invitation{}).
    Where("status = ? AND expires_at < ?", types.InvitationStatusPending, time.Now()).
    Update("status", types.InvitationStatusExpired)
  return res.RowsAffected, res.Error
}
