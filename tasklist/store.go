// Package tasklist holds the client's authoritative copy of the task list
// and the single and bulk mutations applied to it. Local state only changes
// after the server confirms a mutation.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/view"
)

// ErrUnknownTask is returned for ids not in the local list.
var ErrUnknownTask = errors.New("task not in list")

// API is the slice of the REST client the store needs.
type API interface {
	ListTasks(ctx context.Context, status task.StatusFilter) ([]task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Store is the in-memory task list for one status scope.
type Store struct {
	api API

	mu          sync.RWMutex
	concurrency int
	status      task.StatusFilter
	tasks       []task.Task
}

// New creates an empty store over api.
func New(api API) *Store {
	return &Store{api: api, status: task.StatusAll, concurrency: DefaultConcurrency}
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Status is the scope the list was last fetched with.
func (s *Store) Status() task.StatusFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Find returns the local copy of id.
func (s *Store) Find(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return task.Task{}, false
}

// IDs returns the ids in list order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Refresh replaces the list with the server's view of status. On error the
// previous list is kept.
func (s *Store) Refresh(ctx context.Context, status task.StatusFilter) error {
	tasks, err := s.api.ListTasks(ctx, status)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if status == "" {
		status = task.StatusAll
	}
	s.mu.Lock()
	s.status = status
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Create adds a task at the top of the list.
func (s *Store) Create(ctx context.Context, d task.Draft) (*task.Task, error) {
	created, err := s.api.CreateTask(ctx, d)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tasks = append([]task.Task{*created}, s.tasks...)
	s.mu.Unlock()
	return created, nil
}

// Toggle flips a task's completion.
func (s *Store) Toggle(ctx context.Context, id string) (*task.Task, error) {
	current, ok := s.Find(id)
	if !ok {
		return nil, ErrUnknownTask
	}
	done := !current.Completed
	return s.Patch(ctx, id, task.Patch{Completed: &done})
}

// Patch sends a partial update and replaces the local copy with the result.
func (s *Store) Patch(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	updated, err := s.api.UpdateTask(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.replace(*updated)
	s.mu.Unlock()
	return updated, nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.drop(id)
	s.mu.Unlock()
	return nil
}

// ApplySuggestion accepts a reminder's suggested due date for id.
func (s *Store) ApplySuggestion(ctx context.Context, id string, suggestedDueAt time.Time) (*task.Task, error) {
	return s.Patch(ctx, id, task.Patch{DueAt: &suggestedDueAt})
}

// Reorder moves the task at from to position to. The order is local only.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.tasks) || to < 0 || to >= len(s.tasks) {
		return fmt.Errorf("reorder %d -> %d: index out of range [0,%d)", from, to, len(s.tasks))
	}
	s.tasks = view.Move(s.tasks, from, to)
	return nil
}

// replace swaps in t, keeping its position. Callers hold mu.
func (s *Store) replace(t task.Task) {
	if i := s.indexOf(t.ID); i >= 0 {
		s.tasks[i] = t
	}
}

// drop removes id. Callers hold mu.
func (s *Store) drop(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
