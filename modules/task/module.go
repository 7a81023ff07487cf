package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// HealthFunc checks the backing store.
type HealthFunc func(ctx context.Context) error

// TaskModule exposes the task service over request-reply and publishes task
// lifecycle events.
type TaskModule struct {
	service  *Service
	health   HealthFunc
	eventBus mono.EventBus
	logger   *zap.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a TaskModule over repo. health may be nil.
func NewModule(repo domain.Repository, loc *time.Location, health HealthFunc, logger *zap.Logger) *TaskModule {
	return &TaskModule{
		service: NewService(repo, loc),
		health:  health,
		logger:  logger.Named("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info("registered services",
		zap.Strings("services", []string{"create-task", "list-tasks", "get-task", "update-task", "delete-task"}))
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("event bus not set, events will not be published")
	}
	m.logger.Info("module started", zap.String("timezone", m.service.Location().String()))
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("module stopped")
	return nil
}

// Health reports the store's reachability.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.health == nil {
		return mono.HealthStatus{Healthy: true, Message: "operational"}
	}
	if err := m.health(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}
