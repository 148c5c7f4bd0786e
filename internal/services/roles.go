package services

import (
	"errors"

	"github.com/grouptask-dev/grouptask/db"
	"github.com/grouptask-dev/grouptask/internal/apperrors"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/session"
	"github.com/grouptask-dev/grouptask/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RoleChangeResult struct {
	Role                 string `json:"role"`
	ConfirmationRequired bool   `json:"confirmation_required"`
}

// RequestRoleChange switches the group's role. Dropping to Assignee, or
// re-selecting Manager while already a Manager, applies immediately.
// Elevating to Manager opens a pending confirmation on the session instead
// of touching the database.
func RequestRoleChange(sess *session.Session, userID uint, role string) (*RoleChangeResult, error) {
	if !types.ValidRole(role) {
		return nil, apperrors.NewValidation("Unknown role: " + role)
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}

	if role == types.RoleManager && user.Role != types.RoleManager {
		sess.BeginRoleChange(role)
		return &RoleChangeResult{Role: user.Role, ConfirmationRequired: true}, nil
	}

	if err := db.DB.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}

	return &RoleChangeResult{Role: role}, nil
}

// VerifyRolePassword checks the candidate against the group's manager
// password. A match commits the pending role and closes the confirmation; a
// mismatch leaves the confirmation open for another attempt.
func VerifyRolePassword(sess *session.Session, userID uint, candidate string) (string, error) {
	pending, ok := sess.PendingRole()

	if !ok {
		return "", apperrors.NewNotFound("No role change awaiting confirmation")
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NewNotFound("User not found")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.ManagerPasswordHash), []byte(candidate)); err != nil {
		return "", apperrors.NewAuth("Invalid password for Manager role.")
	}

	if err := db.DB.Model(&user).Update("role", pending).Error; err != nil {
		return "", err
	}

	sess.ClearRoleChange()

	return pending, nil
}

// CancelRoleChange discards the pending confirmation without applying
// anything.
func CancelRoleChange(sess *session.Session) {
	sess.ClearRoleChange()
}
