package db

import (
	"errors"

	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Task{},
		&models.TaskActivity{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDemoData creates the demo groups and their sample tasks. Existing
// groups are left untouched, so it is safe to run on every startup.
func SeedDemoData() error {
	if err := seedGroup("testuser", "test123", "manager123", []models.Task{
		{
			Name:       "Complete Project",
			Date:       "2024-03-20",
			Notes:      "Finish the todo app project",
			Status:     types.StatusInProgress,
			AssignedTo: "testuser",
		},
		{
			Name:       "Test Database",
			Date:       "2024-03-21",
			Notes:      "Test all database operations",
			Status:     types.StatusNotStarted,
			AssignedTo: "testuser",
		},
	}); err != nil {
		return err
	}

	return seedGroup("assignee", "assignee123", "", nil)
}

func seedGroup(username, password, managerPassword string, tasks []models.Task) error {
	var existing models.User

	err := DB.Where("username = ?", username).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	managerHash, err := bcrypt.GenerateFromPassword([]byte(managerPassword), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Username:            username,
			PasswordHash:        string(passwordHash),
			Role:                types.RoleAssignee,
			ManagerPasswordHash: string(managerHash),
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		for i := range tasks {
			tasks[i].OwnerID = user.ID
		}

		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
