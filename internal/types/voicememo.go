package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  VoiceMemoStatusPending    = "pending"
  VoiceMemoStatusProcessing = "processing"
  VoiceMemoStatusCompleted  = "completed"
  VoiceMemoStatusFailed     = "failed"
)

type VoiceMemo struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_voicememo_restaurant_date;not null" json:"restaurant_id"`
  AuthorID     uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`

  ShiftDate string `gorm:"index:idx_voicememo_restaurant_date;not null" json:"shift_date"`
  ShiftType string `gorm:"not null" json:"shift_type"`
  Category  string `gorm:"not null;default:'general'" json:"category"`

  // Object path in the audio bucket, never a public URL.
  AudioObjectKey string `gorm:"not null" json:"-"`
  AudioFormat    string `json:"audio_format"`
  DurationSecs   int    `json:"duration_secs"`

  Status     string `gorm:"index;not null;default:'pending'" json:"status"`
  Transcript string `gorm:"type:text" json:"transcript"`
  FailReason string `json:"fail_reason,omitempty"`

  // Attempts counts worker claims, so a memo that keeps crashing the
  // pipeline ends up failed instead of re-pending forever.
  Attempts int `gorm:"not null;default:0" json:"-"`

  ClaimedAt *time.Time `json:"-"`
  CreatedAt time.Time  `json:"created_at"`
  UpdatedAt time.Time  `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  Author     *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (VoiceMemo) TableName() string {
  return "voice_memos"
}
