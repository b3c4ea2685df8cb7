package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/types"
)

type EmbeddingChunkRepo interface {
  CreateBatch(ctx context.Context, tx *gorm.DB, chunks []types.EmbeddingChunk) error
  DeleteBySource(ctx context.Context, tx *gorm.DB, sourceType string, sourceID uuid.UUID) error
  GetByRestaurantID(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.EmbeddingChunk, error)
}

type embeddingChunkRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewEmbeddingChunkRepo(db *gorm.DB, log *logger.Logger) EmbeddingChunkRepo {
  return &embeddingChunkRepo{db: db, log: log.With("repo", "EmbeddingChunkRepo")}
}

func (r *embeddingChunkRepo) CreateBatch(ctx context.Context, tx *gorm.DB, chunks []types.EmbeddingChunk) error {
  if tx == nil {
    tx = r.db
  }
  if len(chunks) == 0 {
    return nil
  }
  return tx.WithContext(ctx).CreateInBatches(chunks, 100).Error
}

func (r *embeddingChunkRepo) DeleteBySource(ctx context.Context, tx *gorm.DB, sourceType string, sourceID uuid.UUID) error {
  if tx == nil {
    tx = r.db
  }
  return tx.WithContext(ctx).
    Where("source_type = ? AND source_id = ?", sourceType, sourceID).
    Delete(&types.EmbeddingChunk{}).Error
}

func (r *embeddingChunkRepo) GetByRestaurantID(ctx context.Context, tx *gorm.DB, restaurantID uuid.UUID, limit int) ([]types.EmbeddingChunk, error) {
  if tx == nil {
    tx = r.db
  }
  q := tx.WithContext(ctx).
    Where("restaurant_id = ?", restaurantID).
    Order("created_at DESC")
  if limit > 0 {
    q = q.Limit(limit)
  }
  var chunks []types.EmbeddingChunk
  if err := q.Find(&chunks).Error; err != nil {
    return nil, err
  }
  return chunks, nil
}
