package models

import (
	"gorm.io/datatypes"
)

// TaskActivity is one audit row per task mutation. TaskID is deliberately
// unconstrained so the history survives the task's physical deletion.
type TaskActivity struct {
	BaseModel

	TaskID  uint           `gorm:"not null;index"`
	UserID  uint           `gorm:"not null"`
	Action  string         `gorm:"not null"` // "created", "updated", "status_changed", "deleted"
	Details datatypes.JSON `gorm:"type:jsonb"`
}
