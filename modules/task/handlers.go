package task

import (
	"context"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/events"
	"github.com/go-monolith/mono"
	"go.uber.org/zap"
)

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.UserID, req.Draft)
	if err != nil {
		return TaskResponse{}, err
	}

	m.publish("TaskCreated", t.ID, func() error {
		return events.TaskCreatedV1.Publish(m.eventBus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			Priority:  string(t.Priority),
			DueAt:     t.DueAt,
			CreatedAt: t.CreatedAt,
		}, nil)
	})

	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	status, err := domain.ParseStatusFilter(string(req.Status))
	if err != nil {
		return ListTasksResponse{}, err
	}
	tasks, err := m.service.List(ctx, req.UserID, status)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.TaskID, req.UserID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.TaskID, req.UserID, req.Patch)
	if err != nil {
		return TaskResponse{}, err
	}

	m.publish("TaskUpdated", t.ID, func() error {
		return events.TaskUpdatedV1.Publish(m.eventBus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			Fields:    changedFields(req.Patch),
			UpdatedAt: t.UpdatedAt,
		}, nil)
	})
	if req.Patch.Completed != nil && *req.Patch.Completed {
		m.publish("TaskCompleted", t.ID, func() error {
			return events.TaskCompletedV1.Publish(m.eventBus, events.TaskCompletedEvent{
				TaskID:      t.ID,
				UserID:      t.UserID,
				Title:       t.Title,
				CompletedAt: t.UpdatedAt,
			}, nil)
		})
	}

	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.TaskID, req.UserID); err != nil {
		return DeleteTaskResponse{}, err
	}

	m.publish("TaskDeleted", req.TaskID, func() error {
		return events.TaskDeletedV1.Publish(m.eventBus, events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			UserID:    req.UserID,
			DeletedAt: m.service.now().UTC(),
		}, nil)
	})

	return DeleteTaskResponse{Success: true}, nil
}

// publish is best-effort; a failed publish never fails the operation.
func (m *TaskModule) publish(event, taskID string, fn func() error) {
	if m.eventBus == nil {
		return
	}
	if err := fn(); err != nil {
		m.logger.Warn("failed to publish event",
			zap.String("event", event), zap.String("task_id", taskID), zap.Error(err))
	}
}

func changedFields(p domain.Patch) []string {
	fields := []string{}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.DueAt != nil || p.ClearDueAt {
		fields = append(fields, "dueAt")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.Completed != nil {
		fields = append(fields, "completed")
	}
	return fields
}
