package activity

import (
	"context"
	"encoding/json"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/activity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort is the port other modules use to read activity feeds.
type ActivityPort interface {
	Recent(ctx context.Context, userID string, limit int) ([]domain.Entry, error)
}

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) *ActivityAdapter {
	return &ActivityAdapter{container: container}
}

func (a *ActivityAdapter) Recent(ctx context.Context, userID string, limit int) ([]domain.Entry, error) {
	req := RecentRequest{UserID: userID, Limit: limit}
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "recent-activity", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		resp.Entries = []domain.Entry{}
	}
	return resp.Entries, nil
}
