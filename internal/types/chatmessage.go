package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  ChatRoleUser      = "user"
  ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_chat_restaurant_user;not null" json:"restaurant_id"`
  UserID       uuid.UUID `gorm:"type:uuid;index:idx_chat_restaurant_user;not null" json:"user_id"`

  Role    string `gorm:"not null" json:"role"`
  Content string `gorm:"type:text;not null" json:"content"`

  // Citations lists the chunk sources the assistant drew on, as a JSON
  // array of {source_type, source_id, shift_date}.
  Citations datatypes.JSON `gorm:"type:jsonb" json:"citations,omitempty"`

  CreatedAt time.Time `json:"created_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatMessage) TableName() string {
  return "chat_messages"
}
