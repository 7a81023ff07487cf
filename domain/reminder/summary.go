package reminder

import (
	"sort"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// StaleAfter is the age past which an undated task is suggested regardless
// of priority.
const StaleAfter = 7 * 24 * time.Hour

// SuggestedHour is the local hour a suggested due date lands on.
const SuggestedHour = 9

// Suggestion proposes a due date for an undated task.
type Suggestion struct {
	TaskID         string    `json:"taskId"`
	SuggestedDueAt time.Time `json:"suggestedDueAt"`
}

// Summary is the reminder view of one owner's tasks.
type Summary struct {
	OverdueCount int          `json:"overdueCount"`
	DueToday     []task.Task  `json:"dueToday"`
	Suggested    []Suggestion `json:"suggested"`
}

// Summarize computes the summary from tasks at now. It is pure: the same
// inputs always give the same summary.
func Summarize(tasks []task.Task, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	day := task.DayBoundsAt(now, loc)
	suggestAt := NextBusinessDay(now, loc)

	s := Summary{
		DueToday:  []task.Task{},
		Suggested: []Suggestion{},
	}
	var stale []task.Task

	for i := range tasks {
		t := tasks[i]
		if t.Completed {
			continue
		}
		switch {
		case t.DueAt == nil:
			if t.Priority == task.PriorityHigh || now.Sub(t.CreatedAt) > StaleAfter {
				stale = append(stale, t)
			}
		default:
			if t.DueAt.Before(now) {
				s.OverdueCount++
			}
			if day.Contains(*t.DueAt) {
				s.DueToday = append(s.DueToday, t)
			}
		}
	}

	sort.SliceStable(s.DueToday, func(i, j int) bool {
		return s.DueToday[i].DueAt.Before(*s.DueToday[j].DueAt)
	})
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].CreatedAt.Before(stale[j].CreatedAt)
	})
	for _, t := range stale {
		s.Suggested = append(s.Suggested, Suggestion{TaskID: t.ID, SuggestedDueAt: suggestAt})
	}
	return s
}

// NextBusinessDay returns 09:00 local on the business day after now. Friday
// and Saturday roll to Monday.
func NextBusinessDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	days := 1
	switch local.Weekday() {
	case time.Friday:
		days = 3
	case time.Saturday:
		days = 2
	}
	return time.Date(local.Year(), local.Month(), local.Day()+days, SuggestedHour, 0, 0, 0, loc)
}
