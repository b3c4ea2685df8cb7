package types

import (
  "time"
  "github.com/google/uuid"
)

type User struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  Email        string    `gorm:"uniqueIndex;not null" json:"email"`
  PasswordHash string    `gorm:"not null" json:"-"`
  FirstName    string    `json:"first_name"`
  LastName     string    `json:"last_name"`
  AvatarURL    string    `json:"avatar_url"`
  CreatedAt    time.Time `json:"created_at"`
  UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
  return "users"
}
