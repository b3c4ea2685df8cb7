package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  InvitationStatusPending  = "pending"
  InvitationStatusAccepted = "accepted"
  InvitationStatusRevoked  = "revoked"
  InvitationStatusExpired  = "expired"
)

type Invitation struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index;not null" json:"restaurant_id"`
  InviterID    uuid.UUID `gorm:"type:uuid;not null" json:"inviter_id"`
  Email        string    `gorm:"index;not null" json:"email"`
  Role         string    `gorm:"not null;default:'staff'" json:"role"`
  TokenHash    string    `gorm:"uniqueIndex;not null" json:"-"`
  Status       string    `gorm:"not null;default:'pending'" json:"status"`
  ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
  CreatedAt    time.Time `json:"created_at"`
  UpdatedAt    time.Time `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  Inviter    *User       `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

func (Invitation) TableName() string {
  return "invitations"
}
