package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/grouptask-dev/grouptask/db"
	"github.com/grouptask-dev/grouptask/internal/apperrors"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/session"
	"github.com/grouptask-dev/grouptask/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskInput struct {
	Name       string
	Date       string
	Notes      string
	Status     string
	AssignedTo string
}

const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// ListTasks returns the group's tasks in insertion order.
func ListTasks(userID uint) ([]models.Task, error) {
	var tasks []models.Task

	if err := db.DB.Where("owner_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// CreateTask inserts a new task for the group. Manager only.
func CreateTask(userID uint, role string, input TaskInput) (*models.Task, error) {
	if role != types.RoleManager {
		return nil, apperrors.NewAuthorization("Only the Manager role can create tasks")
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("Task name is required.")
	}

	status := input.Status

	if status == "" {
		status = types.StatusNotStarted
	}

	if !types.ValidStatus(status) {
		return nil, apperrors.NewValidation("Unknown task status: " + status)
	}

	task := models.Task{
		Name:       input.Name,
		Date:       input.Date,
		Notes:      input.Notes,
		Status:     status,
		AssignedTo: input.AssignedTo,
		OwnerID:    userID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		return recordActivity(tx, task.ID, userID, ActionCreated, map[string]interface{}{
			"name":        task.Name,
			"status":      task.Status,
			"assigned_to": task.AssignedTo,
		})
	})

	if err != nil {
		return nil, err
	}

	return &task, nil
}

// OpenEdit loads the task into the session's edit draft.
func OpenEdit(sess *session.Session, userID, taskID uint) (*models.Task, error) {
	var task models.Task

	if err := db.DB.Where("id = ? AND owner_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	sess.OpenEdit(task)

	return &task, nil
}

// ApplyEditFields overlays submitted fields onto the open draft. Reports
// false when no draft is open.
func ApplyEditFields(sess *session.Session, fields types.TaskFields) bool {
	if _, ok := sess.EditDraft(); !ok {
		return false
	}

	if fields.Name != nil {
		sess.SetDraftField("name", *fields.Name)
	}
	if fields.Date != nil {
		sess.SetDraftField("date", *fields.Date)
	}
	if fields.Notes != nil {
		sess.SetDraftField("notes", *fields.Notes)
	}
	if fields.Status != nil {
		sess.SetDraftField("status", *fields.Status)
	}
	if fields.AssignedTo != nil {
		sess.SetDraftField("assigned_to", *fields.AssignedTo)
	}

	return true
}

// SubmitEdit commits the open draft under the role's field policy: a
// Manager overwrites every field, an Assignee only the status. The draft is
// discarded whether or not the commit succeeds.
func SubmitEdit(sess *session.Session, userID uint, role string) (*models.Task, error) {
	draft, ok := sess.EditDraft()

	if !ok {
		return nil, apperrors.NewNotFound("No task is open for editing")
	}

	defer sess.CloseEdit()

	if !types.ValidStatus(draft.Status) {
		return nil, apperrors.NewValidation("Unknown task status: " + draft.Status)
	}

	var task models.Task

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", draft.TaskID, userID).First(&task).Error; err != nil {
			return err
		}

		changes := make(map[string]interface{})
		action := ActionStatusChanged

		if task.Status != draft.Status {
			changes["status"] = fieldChange(task.Status, draft.Status)
			task.Status = draft.Status
		}

		if role == types.RoleManager {
			action = ActionUpdated

			if task.Name != draft.Name {
				changes["name"] = fieldChange(task.Name, draft.Name)
				task.Name = draft.Name
			}
			if task.Date != draft.Date {
				changes["date"] = fieldChange(task.Date, draft.Date)
				task.Date = draft.Date
			}
			if task.Notes != draft.Notes {
				changes["notes"] = fieldChange(task.Notes, draft.Notes)
				task.Notes = draft.Notes
			}
			if task.AssignedTo != draft.AssignedTo {
				changes["assigned_to"] = fieldChange(task.AssignedTo, draft.AssignedTo)
				task.AssignedTo = draft.AssignedTo
			}
		}

		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		if len(changes) == 0 {
			return nil
		}

		return recordActivity(tx, task.ID, userID, action, changes)
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	return &task, nil
}

// UpdateTask is the single-request form of the edit flow: open the draft,
// overlay the submitted fields, submit under the role policy.
func UpdateTask(sess *session.Session, userID uint, role string, taskID uint, fields types.TaskFields) (*models.Task, error) {
	if _, err := OpenEdit(sess, userID, taskID); err != nil {
		return nil, err
	}

	ApplyEditFields(sess, fields)

	return SubmitEdit(sess, userID, role)
}

// DeleteTask physically removes the task. Manager only. The deletion is
// recorded in the activity log before the row goes away.
func DeleteTask(userID uint, role string, taskID uint) error {
	if role != types.RoleManager {
		return apperrors.NewAuthorization("Only the Manager role can delete tasks")
	}

	var task models.Task

	if err := db.DB.Where("id = ? AND owner_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Task not found")
		}
		return err
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := recordActivity(tx, task.ID, userID, ActionDeleted, map[string]interface{}{
			"name": task.Name,
		}); err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})
}

// ListTaskActivity returns the audit rows for an owned task, newest first.
func ListTaskActivity(userID, taskID uint) ([]models.TaskActivity, error) {
	var task models.Task

	if err := db.DB.Where("id = ? AND owner_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Task not found")
		}
		return nil, err
	}

	var activities []models.TaskActivity

	if err := db.DB.Where("task_id = ?", taskID).Order("id DESC").Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

func fieldChange(from, to string) map[string]interface{} {
	return map[string]interface{}{"from": from, "to": to}
}

func recordActivity(tx *gorm.DB, taskID, userID uint, action string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)

	if err != nil {
		return err
	}

	return tx.Create(&models.TaskActivity{
		TaskID:  taskID,
		UserID:  userID,
		Action:  action,
		Details: datatypes.JSON(payload),
	}).Error
}
