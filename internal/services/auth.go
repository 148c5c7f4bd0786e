package services

import (
	"errors"
	"strings"

	"github.com/grouptask-dev/grouptask/db"
	"github.com/grouptask-dev/grouptask/internal/apperrors"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	ManagerPassword string
}

// SignupUser creates a new group account. The fresh account starts in the
// Manager role so the group can set up its task list right away.
func SignupUser(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)

	if username == "" || input.Password == "" || input.ConfirmPassword == "" || input.ManagerPassword == "" {
		return nil, apperrors.NewValidation("All fields are required.")
	}

	if input.Password != input.ConfirmPassword {
		return nil, apperrors.NewValidation("Passwords do not match.")
	}

	var existing models.User

	err := db.DB.Where("username = ?", username).First(&existing).Error

	if err == nil {
		return nil, apperrors.NewValidation("Username already exists.")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	managerHash, err := bcrypt.GenerateFromPassword([]byte(input.ManagerPassword), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:            username,
		PasswordHash:        string(passwordHash),
		Role:                types.RoleManager,
		ManagerPasswordHash: string(managerHash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// AuthenticateUser checks the group credentials. Every successful login
// resets the role to Assignee; elevation to Manager must be re-confirmed
// each session.
func AuthenticateUser(username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidation("Please enter both username and password.")
	}

	var user models.User

	err := db.DB.Where("username = ?", username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewAuth("Invalid username or password.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewAuth("Invalid username or password.")
	}

	if err := db.DB.Model(&user).Update("role", types.RoleAssignee).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
