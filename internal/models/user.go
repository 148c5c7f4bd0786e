package models

// User is a group account. Everyone who logs into it shares the group's task
// list; Role is the group's current mode and is rewritten on login and on
// role switches.
type User struct {
	BaseModel

	Username            string `gorm:"uniqueIndex;not null"`
	PasswordHash        string `gorm:"not null"`
	Role                string `gorm:"not null"`
	ManagerPasswordHash string `gorm:"not null"`

	// Relationships
	Tasks []Task `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
