package view

import (
	"strings"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// Search keeps tasks whose title or description contains q, ignoring case.
// A blank query keeps everything.
func Search(tasks []task.Task, q string) []task.Task {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return clone(tasks)
	}
	return keep(tasks, func(t *task.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	})
}

// FilterPriority keeps tasks with exactly priority p, or all of them for
// PriorityAll and "".
func FilterPriority(tasks []task.Task, p PriorityFilter) []task.Task {
	if p == "" || p == PriorityAll {
		return clone(tasks)
	}
	return keep(tasks, func(t *task.Task) bool { return string(t.Priority) == string(p) })
}

// ApplyFocus drops every task matched by an enabled hide predicate.
// Completed tasks never count as overdue.
func ApplyFocus(tasks []task.Task, f Focus, now time.Time) []task.Task {
	if !f.Enabled {
		return clone(tasks)
	}
	s := f.Settings
	return keep(tasks, func(t *task.Task) bool {
		switch {
		case s.HideCompleted && t.Completed:
			return false
		case s.HideOverdue && t.IsOverdue(now):
			return false
		case s.HideNoDate && t.DueAt == nil:
			return false
		case s.HideLowPriority && t.Priority == task.PriorityLow:
			return false
		}
		return true
	})
}

// MatchesStatus mirrors the server's status filter over a local list.
func MatchesStatus(tasks []task.Task, status task.StatusFilter, now time.Time, loc *time.Location) []task.Task {
	if status == "" || status == task.StatusAll {
		return clone(tasks)
	}
	day := task.DayBoundsAt(now, loc)
	return keep(tasks, func(t *task.Task) bool { return status.Matches(t, now, day) })
}

func keep(tasks []task.Task, pred func(*task.Task) bool) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if pred(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func clone(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}
