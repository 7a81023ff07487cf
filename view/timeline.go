package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// Span is a timeline group's coarse category, used for styling.
type Span string

const (
	SpanOverdue  Span = "overdue"
	SpanToday    Span = "today"
	SpanUpcoming Span = "upcoming"
	SpanFuture   Span = "future"
	SpanNoDate   Span = "nodate"
)

// TimelineGroup holds the tasks due on one calendar day, or the undated ones.
type TimelineGroup struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Span  Span        `json:"span"`
	Tasks []task.Task `json:"tasks"`

	days int
}

// Timeline groups tasks by due day relative to now, earliest day first and
// undated tasks last. Only non-empty days appear.
func Timeline(tasks []task.Task, now time.Time, loc *time.Location) []TimelineGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []TimelineGroup
	index := map[string]int{}
	for _, t := range tasks {
		g := timelineSlot(t.DueAt, now, loc)
		i, ok := index[g.Key]
		if !ok {
			i = len(groups)
			index[g.Key] = i
			g.Tasks = []task.Task{}
			groups = append(groups, g)
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if (a.Span == SpanNoDate) != (b.Span == SpanNoDate) {
			return b.Span == SpanNoDate
		}
		return a.days < b.days
	})
	if groups == nil {
		groups = []TimelineGroup{}
	}
	return groups
}

func timelineSlot(due *time.Time, now time.Time, loc *time.Location) TimelineGroup {
	if due == nil {
		return TimelineGroup{Key: "no-date", Label: "No Due Date", Span: SpanNoDate}
	}
	d := DayDiff(now, *due, loc)
	local := due.In(loc)
	g := TimelineGroup{days: d}
	switch {
	case d < -1:
		g.Key, g.Label, g.Span = fmt.Sprintf("overdue-%d", -d), fmt.Sprintf("Overdue by %d days", -d), SpanOverdue
	case d == -1:
		g.Key, g.Label, g.Span = "yesterday", "Yesterday", SpanOverdue
	case d == 0:
		g.Key, g.Label, g.Span = "today", "Today", SpanToday
	case d == 1:
		g.Key, g.Label, g.Span = "tomorrow", "Tomorrow", SpanUpcoming
	case d <= 7:
		g.Key, g.Label, g.Span = fmt.Sprintf("week-%d", d), local.Format("Monday, Jan 2"), SpanUpcoming
	case d <= 30:
		g.Key, g.Label, g.Span = fmt.Sprintf("month-%d", d), local.Format("Jan 2"), SpanFuture
	default:
		g.Key, g.Label, g.Span = fmt.Sprintf("future-%d", d), local.Format("Jan 2, 2006"), SpanFuture
	}
	return g
}
