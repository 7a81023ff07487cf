package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the port other modules use to reach task functionality.
type TaskPort interface {
	CreateTask(ctx context.Context, owner string, d domain.Draft) (*domain.Task, error)
	ListTasks(ctx context.Context, owner string, status domain.StatusFilter) ([]domain.Task, error)
	GetTask(ctx context.Context, id, owner string) (*domain.Task, error)
	UpdateTask(ctx context.Context, id, owner string, patch domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id, owner string) error
}

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{container: container}
}

func (a *TaskAdapter) CreateTask(ctx context.Context, owner string, d domain.Draft) (*domain.Task, error) {
	req := CreateTaskRequest{UserID: owner, Draft: d}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) ListTasks(ctx context.Context, owner string, status domain.StatusFilter) ([]domain.Task, error) {
	req := ListTasksRequest{UserID: owner, Status: status}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

func (a *TaskAdapter) GetTask(ctx context.Context, id, owner string) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: id, UserID: owner}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) UpdateTask(ctx context.Context, id, owner string, patch domain.Patch) (*domain.Task, error) {
	req := UpdateTaskRequest{TaskID: id, UserID: owner, Patch: patch}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, restoreError(err)
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) DeleteTask(ctx context.Context, id, owner string) error {
	req := DeleteTaskRequest{TaskID: id, UserID: owner}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return restoreError(err)
	}
	return nil
}

// restoreError maps the error text carried over request-reply back to the
// error the service returned.
func restoreError(err error) error {
	msg := err.Error()
	if ve, ok := validation.Parse(msg); ok {
		return ve
	}
	if errors.Is(err, domain.ErrNotFound) || strings.Contains(msg, domain.ErrNotFound.Error()) {
		return domain.ErrNotFound
	}
	return err
}
