package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  ShiftTypeOpening = "opening"
  ShiftTypeMid     = "mid"
  ShiftTypeClosing = "closing"
)

// Categories a manager can file a log or memo under.
const (
  LogCategoryGeneral     = "general"
  LogCategoryStaffing    = "staffing"
  LogCategoryEquipment   = "equipment"
  LogCategoryInventory   = "inventory"
  LogCategoryIncident    = "incident"
  LogCategoryMaintenance = "maintenance"
)

type ShiftLog struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_shiftlog_restaurant_date;not null" json:"restaurant_id"`
  AuthorID     uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`

  // ShiftDate is stored as YYYY-MM-DD text so summary keys never shift
  // across timezones.
  ShiftDate string `gorm:"index:idx_shiftlog_restaurant_date;not null" json:"shift_date"`
  ShiftType string `gorm:"not null" json:"shift_type"`
  Category  string `gorm:"not null;default:'general'" json:"category"`
  Content   string `gorm:"type:text;not null" json:"content"`
  Urgent    bool   `gorm:"default:false" json:"urgent"`

  CreatedAt time.Time `json:"created_at"`
  UpdatedAt time.Time `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  Author     *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (ShiftLog) TableName() string {
  return "shift_logs"
}
