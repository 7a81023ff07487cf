package tasklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps in-flight requests per bulk operation.
const DefaultConcurrency = 8

// SetConcurrency changes the bulk fan-out limit. n < 1 is ignored.
func (s *Store) SetConcurrency(n int) {
	if n >= 1 {
		s.mu.Lock()
		s.concurrency = n
		s.mu.Unlock()
	}
}

// ItemResult is one task's outcome in a bulk operation.
type ItemResult struct {
	ID   string
	Task *task.Task
	Err  error
}

// BulkResult collects every item's outcome. Items keep selection order.
// Nothing is rolled back when some items fail.
type BulkResult struct {
	Items []ItemResult
}

// Succeeded counts items the server accepted.
func (r BulkResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts items the server rejected or never saw.
func (r BulkResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// Err summarizes the failures, or returns nil when every item succeeded.
func (r BulkResult) Err() error {
	var errs []error
	for _, it := range r.Items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.ID, it.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d items failed: %w", len(errs), len(r.Items), errors.Join(errs...))
}

// BulkComplete marks every selected task complete.
func (s *Store) BulkComplete(ctx context.Context, sel *Selection) BulkResult {
	done := true
	return s.BulkUpdate(ctx, sel, task.Patch{Completed: &done})
}

// BulkReschedule moves every selected task's due date to due.
func (s *Store) BulkReschedule(ctx context.Context, sel *Selection, due time.Time) BulkResult {
	return s.BulkUpdate(ctx, sel, task.Patch{DueAt: &due})
}

// BulkUpdate sends patch to every selected task and clears the selection.
func (s *Store) BulkUpdate(ctx context.Context, sel *Selection, patch task.Patch) BulkResult {
	res := s.fanOut(ctx, sel.IDs(), func(ctx context.Context, id string) (*task.Task, error) {
		return s.api.UpdateTask(ctx, id, patch)
	})

	s.mu.Lock()
	for _, it := range res.Items {
		if it.Err == nil && it.Task != nil {
			s.replace(*it.Task)
		}
	}
	s.mu.Unlock()

	sel.Clear()
	return res
}

// BulkDelete deletes every selected task and clears the selection.
func (s *Store) BulkDelete(ctx context.Context, sel *Selection) BulkResult {
	res := s.fanOut(ctx, sel.IDs(), func(ctx context.Context, id string) (*task.Task, error) {
		return nil, s.api.DeleteTask(ctx, id)
	})

	s.mu.Lock()
	for _, it := range res.Items {
		if it.Err == nil {
			s.drop(it.ID)
		}
	}
	s.mu.Unlock()

	sel.Clear()
	return res
}

// fanOut runs fn for every id with bounded concurrency and waits for all of
// them. A failing item never cancels the others.
func (s *Store) fanOut(ctx context.Context, ids []string, fn func(context.Context, string) (*task.Task, error)) BulkResult {
	res := BulkResult{Items: make([]ItemResult, len(ids))}

	s.mu.RLock()
	limit := s.concurrency
	s.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			item := ItemResult{ID: id}
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				item.Task, item.Err = fn(ctx, id)
			}
			res.Items[i] = item
			return nil
		})
	}
	_ = g.Wait()
	return res
}
