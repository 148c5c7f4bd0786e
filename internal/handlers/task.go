package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/models"
	"github.com/grouptask-dev/grouptask/internal/services"
	"github.com/grouptask-dev/grouptask/internal/types"
	"github.com/grouptask-dev/grouptask/internal/utils"
)

type CreateTaskRequest struct {
	Name       string `json:"name" binding:"required"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

func CreateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTaskRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := services.CreateTask(currentUser.ID, currentUser.Role, services.TaskInput{
		Name:       req.Name,
		Date:       req.Date,
		Notes:      req.Notes,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadCastRefresh(currentUser.ID)

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

func ListTasks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tasks, err := services.ListTasks(currentUser.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for i := range tasks {
		response = append(response, taskResponse(&tasks[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := taskIDParam(ctx)

	if !ok {
		return
	}

	var fields types.TaskFields

	if err := ctx.BindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := services.UpdateTask(sess, currentUser.ID, currentUser.Role, taskID, fields)

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadCastRefresh(currentUser.ID)

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := taskIDParam(ctx)

	if !ok {
		return
	}

	if err := services.DeleteTask(currentUser.ID, currentUser.Role, taskID); err != nil {
		respondError(ctx, err)
		return
	}

	BroadCastRefresh(currentUser.ID)

	ctx.Status(http.StatusNoContent)
}

func ListTaskActivity(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := taskIDParam(ctx)

	if !ok {
		return
	}

	activities, err := services.ListTaskActivity(currentUser.ID, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.TaskActivityResponse, 0, len(activities))

	for _, activity := range activities {
		var details map[string]interface{}

		if len(activity.Details) > 0 {
			if err := json.Unmarshal(activity.Details, &details); err != nil {
				details = nil
			}
		}

		response = append(response, types.TaskActivityResponse{
			ID:        activity.ID,
			TaskID:    activity.TaskID,
			UserID:    activity.UserID,
			Action:    activity.Action,
			Details:   details,
			CreatedAt: activity.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// OpenTaskEdit copies the task into the session's edit draft, the
// server-side half of the edit modal.
func OpenTaskEdit(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, ok := taskIDParam(ctx)

	if !ok {
		return
	}

	task, err := services.OpenEdit(sess, currentUser.ID, taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task))
}

// SubmitTaskEdit applies the submitted fields to the open draft and commits
// it under the role's field policy. The draft closes either way.
func SubmitTaskEdit(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var fields types.TaskFields

	if err := ctx.BindJSON(&fields); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	services.ApplyEditFields(sess, fields)

	task, err := services.SubmitEdit(sess, currentUser.ID, currentUser.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	BroadCastRefresh(currentUser.ID)

	ctx.JSON(http.StatusOK, taskResponse(task))
}

// CancelTaskEdit discards the draft without applying anything.
func CancelTaskEdit(ctx *gin.Context) {
	sess, err := utils.GetCurrentSession(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess.CloseEdit()

	ctx.Status(http.StatusNoContent)
}

func taskIDParam(ctx *gin.Context) (uint, bool) {
	taskID, err := strconv.ParseUint(ctx.Param("task_id"), 10, 64)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}

	return uint(taskID), true
}

func taskResponse(task *models.Task) types.TaskResponse {
	return types.TaskResponse{
		ID:         task.ID,
		Name:       task.Name,
		Date:       task.Date,
		Notes:      task.Notes,
		Status:     task.Status,
		AssignedTo: task.AssignedTo,
		OwnerID:    task.OwnerID,
	}
}
