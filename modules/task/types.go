package task

import (
	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// CreateTaskRequest is the create-task payload.
type CreateTaskRequest struct {
	UserID string       `json:"user_id"`
	Draft  domain.Draft `json:"draft"`
}

// ListTasksRequest is the list-tasks payload.
type ListTasksRequest struct {
	UserID string              `json:"user_id"`
	Status domain.StatusFilter `json:"status"`
}

// ListTasksResponse carries the ordered task list.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// GetTaskRequest is the get-task payload.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

// UpdateTaskRequest is the update-task payload. Patch uses its wire form, so
// an explicit null due date survives the hop.
type UpdateTaskRequest struct {
	TaskID string       `json:"task_id"`
	UserID string       `json:"user_id"`
	Patch  domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the delete-task payload.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

// DeleteTaskResponse reports a successful delete.
type DeleteTaskResponse struct {
	Success bool `json:"success"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task domain.Task `json:"task"`
}
