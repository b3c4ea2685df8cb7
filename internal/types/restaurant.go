package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  RoleOwner   = "owner"
  RoleManager = "manager"
  RoleStaff   = "staff"
)

type Restaurant struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  Name      string    `gorm:"not null" json:"name"`
  Timezone  string    `gorm:"default:'America/New_York'" json:"timezone"`
  AvatarURL string    `json:"avatar_url"`

  // Toast credentials are stored per restaurant; empty means POS is not linked.
  ToastRestaurantGUID string `json:"-"`
  ToastClientID       string `json:"-"`
  ToastClientSecret   string `json:"-"`

  CreatedAt time.Time `json:"created_at"`
  UpdatedAt time.Time `json:"updated_at"`
}

func (Restaurant) TableName() string {
  return "restaurants"
}

type RestaurantMember struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_member_restaurant_user;not null" json:"restaurant_id"`
  UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_member_restaurant_user;not null" json:"user_id"`
  Role         string    `gorm:"not null;default:'staff'" json:"role"`

  // Optional 4-6 digit PIN for shared-terminal manager actions.
  PinHash string `json:"-"`

  CreatedAt time.Time `json:"created_at"`
  UpdatedAt time.Time `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (RestaurantMember) TableName() string {
  return "restaurant_members"
}
