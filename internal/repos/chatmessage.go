package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type ChatMessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, msg *types.ChatMessage) error
  ListRecent(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID, limit int) ([]types.ChatMessage, error)
}

type chatMessageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, log *logger.Logger) ChatMessageRepo {
  return &chatMessageRepo{db: db, log: log.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.ChatMessage) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).Create(msg).Error
}

// ListRecent returns the newest messages oldest-first so they can be fed
// straight into a model prompt.
func (r *chatMessageRepo) ListRecent(ctx context.Context, tx *gorm.DB, restaurantID, userID uuid.UUID, limit int) ([]types.ChatMessage, error) {
  if tx == nil {
    tx = r.db
  }
  if limit <= 0 {
    limit = 20
  }
  var msgs []types.ChatMessage
  err := tx.WithContext(ctx).
    Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
    Order("created_at DESC").
    Limit(limit).
    Find(&msgs).Error
  if err != nil {
    return nil, err
  }
  for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
    msgs[i], msgs[j] = msgs[j], msgs[i]
  }
  return msgs, nil
}
