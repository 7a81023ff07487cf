package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/activity"
	"github.com/NathanHodgkiss447/smart-tasks/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// FeedSize is how many entries are kept per user.
const FeedSize = 50

// RecentRequest is the recent-activity payload.
type RecentRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// RecentResponse carries the feed, newest first.
type RecentResponse struct {
	Entries []domain.Entry `json:"entries"`
}

// ActivityModule records task events into an in-memory feed per user.
type ActivityModule struct {
	mu     sync.RWMutex
	feeds  map[string][]domain.Entry
	logger *zap.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

func NewModule(logger *zap.Logger) *ActivityModule {
	return &ActivityModule{
		feeds:  make(map[string][]domain.Entry),
		logger: logger.Named("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("registered event consumers",
		zap.Strings("events", []string{"TaskCreated", "TaskUpdated", "TaskCompleted", "TaskDeleted"}))
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Info("task created", zap.String("task_id", event.TaskID), zap.String("user_id", event.UserID))
	m.record(event.UserID, domain.Entry{
		TaskID:    event.TaskID,
		Type:      "task_created",
		Message:   fmt.Sprintf("Created %q (%s priority)", event.Title, event.Priority),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Debug("task updated", zap.String("task_id", event.TaskID), zap.Strings("fields", event.Fields))
	m.record(event.UserID, domain.Entry{
		TaskID:    event.TaskID,
		Type:      "task_updated",
		Message:   fmt.Sprintf("Updated %q", event.Title),
		Timestamp: event.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.logger.Info("task completed", zap.String("task_id", event.TaskID), zap.String("user_id", event.UserID))
	m.record(event.UserID, domain.Entry{
		TaskID:    event.TaskID,
		Type:      "task_completed",
		Message:   fmt.Sprintf("Completed %q", event.Title),
		Timestamp: event.CompletedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Info("task deleted", zap.String("task_id", event.TaskID), zap.String("user_id", event.UserID))
	m.record(event.UserID, domain.Entry{
		TaskID:    event.TaskID,
		Type:      "task_deleted",
		Message:   "Deleted a task",
		Timestamp: event.DeletedAt,
	})
	return nil
}

func (m *ActivityModule) record(userID string, e domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	feed := append(m.feeds[userID], e)
	if len(feed) > FeedSize {
		feed = feed[len(feed)-FeedSize:]
	}
	m.feeds[userID] = feed
}

func (m *ActivityModule) recent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	return RecentResponse{Entries: m.Recent(req.UserID, req.Limit)}, nil
}

// Recent returns up to limit entries for userID, newest first. A limit of
// zero or less returns the whole feed.
func (m *ActivityModule) Recent(userID string, limit int) []domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feed := m.feeds[userID]
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	out := make([]domain.Entry, 0, limit)
	for i := len(feed) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, feed[i])
	}
	return out
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("module started, listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("module stopped")
	return nil
}
