package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  ChunkSourceLog     = "log"
  ChunkSourceMemo    = "memo"
  ChunkSourceSummary = "summary"
)

// EmbeddingChunk is one embedded window of searchable text. Shift logs and
// transcribed memos produce a single chunk each; summaries are windowed.
type EmbeddingChunk struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index;not null" json:"restaurant_id"`

  SourceType string    `gorm:"index:idx_chunk_source;not null" json:"source_type"`
  SourceID   uuid.UUID `gorm:"type:uuid;index:idx_chunk_source;not null" json:"source_id"`
  ChunkIndex int       `gorm:"not null;default:0" json:"chunk_index"`

  ShiftDate string `gorm:"index" json:"shift_date"`
  Text      string `gorm:"type:text;not null" json:"text"`

  // Embedding is the canonical JSONB float array. When pgvector is
  // available the database layer mirrors it into embedding_vec.
  Embedding datatypes.JSON `gorm:"type:jsonb" json:"-"`

  CreatedAt time.Time `json:"created_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EmbeddingChunk) TableName() string {
  return "embedding_chunks"
}
