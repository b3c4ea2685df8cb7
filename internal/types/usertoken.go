package types

import (
  "time"
  "github.com/google/uuid"
)

type UserToken struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
  TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
  ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
  Revoked   bool      `gorm:"default:false" json:"revoked"`
  CreatedAt time.Time `json:"created_at"`

  User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserToken) TableName() string {
  return "user_tokens"
}
