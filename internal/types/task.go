package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  TaskStatusOpen = "open"
  TaskStatusDone = "done"

  TaskUrgencyLow    = "low"
  TaskUrgencyNormal = "normal"
  TaskUrgencyHigh   = "high"
)

type Task struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;index;not null" json:"restaurant_id"`
  CreatorID    uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
  AssigneeID   *uuid.UUID `gorm:"type:uuid" json:"assignee_id,omitempty"`

  Title   string `gorm:"not null" json:"title"`
  Notes   string `gorm:"type:text" json:"notes"`
  Status  string `gorm:"not null;default:'open'" json:"status"`
  Urgency string `gorm:"not null;default:'normal'" json:"urgency"`

  // Position orders the board; contiguous 0..n-1 within a restaurant.
  Position int `gorm:"not null;default:0" json:"position"`

  // Set when a task was created from a summary action item.
  SourceSummaryID *uuid.UUID `gorm:"type:uuid" json:"source_summary_id,omitempty"`

  CompletedAt *time.Time `json:"completed_at,omitempty"`
  CreatedAt   time.Time  `json:"created_at"`
  UpdatedAt   time.Time  `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
  Creator    *User       `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
  Assignee   *User       `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (Task) TableName() string {
  return "tasks"
}
