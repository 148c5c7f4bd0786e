package models

type Task struct {
	BaseModel

	Name       string `gorm:"not null"`
	Date       string
	Notes      string
	Status     string `gorm:"not null"`
	AssignedTo string // free text, not a User reference
	OwnerID    uint   `gorm:"not null;index"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
