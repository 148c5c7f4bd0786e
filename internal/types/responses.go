package types

import "time"

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type TaskResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
	OwnerID    uint   `json:"owner_id"`
}

type TaskActivityResponse struct {
	ID        uint                   `json:"id"`
	TaskID    uint                   `json:"task_id"`
	UserID    uint                   `json:"user_id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// TaskFields carries a partial task update; nil means the field was not
// submitted and keeps its current value.
type TaskFields struct {
	Name       *string `json:"name"`
	Date       *string `json:"date"`
	Notes      *string `json:"notes"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assigned_to"`
}
