package reminder

import (
	"context"
	"encoding/json"

	remind "github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ReminderPort is the port other modules use to fetch reminder summaries.
type ReminderPort interface {
	Summary(ctx context.Context, owner string) (*remind.Summary, error)
}

// ReminderAdapter implements ReminderPort using the service container.
type ReminderAdapter struct {
	container mono.ServiceContainer
}

// NewReminderAdapter creates a new ReminderAdapter.
func NewReminderAdapter(container mono.ServiceContainer) *ReminderAdapter {
	return &ReminderAdapter{container: container}
}

func (a *ReminderAdapter) Summary(ctx context.Context, owner string) (*remind.Summary, error) {
	req := SummaryRequest{UserID: owner}
	var resp remind.Summary
	if err := helper.CallRequestReplyService(
		ctx, a.container, "reminder-summary", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}
