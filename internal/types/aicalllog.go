package types

import (
  "time"
  "github.com/google/uuid"
)

// AICallLog records every outbound model call for cost accounting.
type AICallLog struct {
  ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID *uuid.UUID `gorm:"type:uuid;index" json:"restaurant_id,omitempty"`

  Kind       string `gorm:"not null" json:"kind"`
  Model      string `gorm:"not null" json:"model"`
  StatusCode int    `json:"status_code"`

  PromptTokens     int `json:"prompt_tokens"`
  CompletionTokens int `json:"completion_tokens"`

  DurationMS int64  `json:"duration_ms"`
  Error      string `json:"error,omitempty"`

  CreatedAt time.Time `json:"created_at"`
}

func (AICallLog) TableName() string {
  return "ai_call_logs"
}
