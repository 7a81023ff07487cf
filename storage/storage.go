// Package storage selects and opens the configured persistence backend.
package storage

import (
	"context"
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/config"
	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/storage/gormstore"
	"github.com/NathanHodgkiss447/smart-tasks/storage/mongostore"
)

// Backend bundles the repositories of one opened store.
type Backend struct {
	Tasks task.Repository
	Users user.Repository

	conn connection
}

type connection interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Driver() string
}

// Open connects to the store named by cfg.StoreDriver. An unreachable store
// is an error; callers treat it as fatal.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case "mongo":
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Backend{Tasks: s.Tasks(), Users: s.Users(), conn: s}, nil
	case "sqlite", "mysql":
		s, err := gormstore.Open(cfg.StoreDriver, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("failed to ping %s: %w", cfg.StoreDriver, err)
		}
		return &Backend{Tasks: s.Tasks(), Users: s.Users(), conn: s}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Ping checks the store is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.conn.Ping(ctx)
}

// Close releases the store connection.
func (b *Backend) Close(ctx context.Context) error {
	return b.conn.Close(ctx)
}

// Driver names the backend in use.
func (b *Backend) Driver() string {
	return b.conn.Driver()
}
