package view

import (
	"math"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// Statistics summarizes a task list.
type Statistics struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completionRate"`
	CompletedToday int `json:"completedToday"`
	Overdue        int `json:"overdue"`
	Pending        int `json:"pending"`
}

// Stats counts tasks. CompletionRate is a percentage rounded half away from
// zero; CompletedToday uses updatedAt as the completion time.
func Stats(tasks []task.Task, now time.Time, loc *time.Location) Statistics {
	day := task.DayBoundsAt(now, loc)
	var s Statistics
	s.Total = len(tasks)
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			s.Completed++
			if day.Contains(t.UpdatedAt) {
				s.CompletedToday++
			}
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) * 100 / float64(s.Total)))
	}
	return s
}
