package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/grouptask-dev/grouptask/db"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "grouptask.db")), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())
}

func createGroup(t *testing.T, username, password, managerPassword string) *models.User {
	t.Helper()

	user, err := SignupUser(SignupInput{
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
		ManagerPassword: managerPassword,
	})
	require.NoError(t, err)

	return user
}

func currentRole(t *testing.T, userID uint) string {
	t.Helper()

	var user models.User
	require.NoError(t, db.DB.First(&user, userID).Error)

	return user.Role
}

func userCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Count(&count).Error)

	return count
}

func taskCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.DB.Model(&models.Task{}).Count(&count).Error)

	return count
}

func mustCreateTask(t *testing.T, userID uint, input TaskInput) *models.Task {
	t.Helper()

	task, err := CreateTask(userID, types.RoleManager, input)
	require.NoError(t, err)

	return task
}
