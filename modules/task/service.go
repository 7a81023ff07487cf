package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/google/uuid"
)

// Service holds the task business rules on top of a Repository. All reads
// and writes are scoped to the owner passed in.
type Service struct {
	repo domain.Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a Service whose "today" is evaluated in loc.
func NewService(repo domain.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Create validates d and persists a new task for owner.
func (s *Service) Create(ctx context.Context, owner string, d domain.Draft) (*domain.Task, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      owner,
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Completed:   d.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.DueAt != nil {
		due := d.DueAt.UTC()
		t.DueAt = &due
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return t, nil
}

// List returns the owner's tasks for status, due date ascending with
// undated tasks last, newest first among equal due dates. It never returns
// nil.
func (s *Service) List(ctx context.Context, owner string, status domain.StatusFilter) ([]domain.Task, error) {
	now := s.now()
	tasks, err := s.repo.List(ctx, domain.Query{
		Owner:  owner,
		Status: status,
		Now:    now,
		Day:    domain.DayBoundsAt(now, s.loc),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	domain.SortForList(tasks)
	return tasks, nil
}

// Get returns one task or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id, owner string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id, owner)
}

// Update applies a partial update. An empty patch still bumps updatedAt,
// matching a PATCH with an empty body.
func (s *Service) Update(ctx context.Context, id, owner string, patch domain.Patch) (*domain.Task, error) {
	return s.repo.Update(ctx, id, owner, patch, s.now().UTC())
}

// Delete removes a task. A second delete of the same id reports NotFound.
func (s *Service) Delete(ctx context.Context, id, owner string) error {
	return s.repo.Delete(ctx, id, owner)
}

// Location is the zone used for day boundaries.
func (s *Service) Location() *time.Location {
	return s.loc
}
