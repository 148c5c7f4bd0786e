package models

import "time"

// BaseModel is gorm.Model without the soft-delete column. Task deletion is
// physical removal, so no table carries a DeletedAt.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
