package task

import (
	"context"
	"sort"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
)

// StatusFilter selects a subset of a user's tasks by completion and due date.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusOverdue   StatusFilter = "overdue"
	StatusToday     StatusFilter = "today"
	StatusUpcoming  StatusFilter = "upcoming"
	StatusCompleted StatusFilter = "completed"
)

// ParseStatusFilter accepts the query-string form. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusOverdue, StatusToday, StatusUpcoming, StatusCompleted:
		return f, nil
	}
	return "", validation.Field("status", "must be one of all, overdue, today, upcoming, completed")
}

// DayBounds is the inclusive span of one local calendar day.
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// DayBoundsAt returns [00:00:00.000, 23:59:59.999] of the day containing now
// in loc.
func DayBoundsAt(now time.Time, loc *time.Location) DayBounds {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return DayBounds{Start: start, End: end}
}

// Contains reports whether ts falls inside the day, both ends inclusive.
func (b DayBounds) Contains(ts time.Time) bool {
	return !ts.Before(b.Start) && !ts.After(b.End)
}

// Matches evaluates the filter against a single task.
func (f StatusFilter) Matches(t *Task, now time.Time, day DayBounds) bool {
	switch f {
	case StatusOverdue:
		return t.IsOverdue(now)
	case StatusToday:
		return !t.Completed && t.DueAt != nil && day.Contains(*t.DueAt)
	case StatusUpcoming:
		return !t.Completed && t.DueAt != nil && t.DueAt.After(day.End)
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// SortForList orders tasks by due date ascending with undated tasks last,
// breaking ties by newest creation first.
func SortForList(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.DueAt == nil && b.DueAt != nil:
			return false
		case a.DueAt != nil && b.DueAt == nil:
			return true
		case a.DueAt != nil && b.DueAt != nil && !a.DueAt.Equal(*b.DueAt):
			return a.DueAt.Before(*b.DueAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Query is a resolved list request.
type Query struct {
	Owner  string
	Status StatusFilter
	Now    time.Time
	Day    DayBounds
}

// Repository is the Task Store port. Every method is scoped to one owner;
// a task owned by someone else behaves exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id, owner string) (*Task, error)
	List(ctx context.Context, q Query) ([]Task, error)
	Update(ctx context.Context, id, owner string, patch Patch, now time.Time) (*Task, error)
	Delete(ctx context.Context, id, owner string) error
}
