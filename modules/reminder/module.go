package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	remind "github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// SummaryRequest is the reminder-summary payload.
type SummaryRequest struct {
	UserID string `json:"user_id"`
}

// ReminderModule computes reminder summaries over the task module.
type ReminderModule struct {
	taskPort task.TaskPort
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

var _ mono.Module = (*ReminderModule)(nil)
var _ mono.ServiceProviderModule = (*ReminderModule)(nil)
var _ mono.DependentModule = (*ReminderModule)(nil)

// NewModule creates a ReminderModule evaluating days in loc.
func NewModule(loc *time.Location, logger *zap.Logger) *ReminderModule {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderModule{loc: loc, now: time.Now, logger: logger.Named("reminder")}
}

func (m *ReminderModule) Name() string {
	return "reminder"
}

func (m *ReminderModule) Dependencies() []string {
	return []string{"task"}
}

func (m *ReminderModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskPort = task.NewTaskAdapter(container)
	}
}

func (m *ReminderModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "reminder-summary", json.Unmarshal, json.Marshal, m.summary,
	); err != nil {
		return fmt.Errorf("failed to register reminder-summary service: %w", err)
	}
	m.logger.Info("registered services", zap.Strings("services", []string{"reminder-summary"}))
	return nil
}

func (m *ReminderModule) summary(ctx context.Context, req SummaryRequest, _ *mono.Msg) (remind.Summary, error) {
	return m.Summary(ctx, req.UserID)
}

// Summary fetches the owner's tasks and summarizes them at the current time.
func (m *ReminderModule) Summary(ctx context.Context, owner string) (remind.Summary, error) {
	if m.taskPort == nil {
		return remind.Summary{}, fmt.Errorf("task dependency not set")
	}
	tasks, err := m.taskPort.ListTasks(ctx, owner, domain.StatusAll)
	if err != nil {
		return remind.Summary{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	s := remind.Summarize(tasks, m.now(), m.loc)
	m.logger.Debug("summary computed",
		zap.String("user_id", owner),
		zap.Int("overdue", s.OverdueCount),
		zap.Int("due_today", len(s.DueToday)),
		zap.Int("suggested", len(s.Suggested)))
	return s, nil
}

func (m *ReminderModule) Start(_ context.Context) error {
	m.logger.Info("module started")
	return nil
}

func (m *ReminderModule) Stop(_ context.Context) error {
	m.logger.Info("module stopped")
	return nil
}
