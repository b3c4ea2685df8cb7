package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  SummaryStatusPending    = "pending"
  SummaryStatusProcessing = "processing"
  SummaryStatusCompleted  = "completed"
  SummaryStatusFailed     = "failed"
)

// ActionItem is one follow-up extracted from a generated summary.
type ActionItem struct {
  Task      string `json:"task"`
  Completed bool   `json:"completed"`
  Urgency   string `json:"urgency"`
}

type ShiftSummary struct {
  ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
  RestaurantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_summary_restaurant_date_type;not null" json:"restaurant_id"`
  ShiftDate    string    `gorm:"uniqueIndex:idx_summary_restaurant_date_type;not null" json:"shift_date"`
  ShiftType    string    `gorm:"uniqueIndex:idx_summary_restaurant_date_type;not null" json:"shift_type"`

  Status      string `gorm:"not null;default:'pending'" json:"status"`
  SummaryText string `gorm:"type:text" json:"summary_text"`

  // ActionItems holds a JSON array of ActionItem.
  ActionItems datatypes.JSON `gorm:"type:jsonb" json:"action_items"`

  // POSMetrics holds the sales/labor snapshot pulled from Toast, or an
  // empty object when the pull failed or POS is not linked.
  POSMetrics datatypes.JSON `gorm:"type:jsonb" json:"pos_metrics"`

  FailReason  string     `json:"fail_reason,omitempty"`
  GeneratedAt *time.Time `json:"generated_at,omitempty"`
  CreatedAt   time.Time  `json:"created_at"`
  UpdatedAt   time.Time  `json:"updated_at"`

  Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShiftSummary) TableName() string {
  return "shift_summaries"
}
