package view

import (
	"sort"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// Group is one named bucket of tasks. Tasks keep their input order.
type Group struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Tasks []task.Task `json:"tasks"`
}

type bucket struct{ key, label string }

var buckets = map[GroupBy][]bucket{
	GroupNone:      {{"all", "All Tasks"}},
	GroupPriority:  {{"high", "High Priority"}, {"med", "Med Priority"}, {"low", "Low Priority"}},
	GroupStatus:    {{"active", "Active"}, {"completed", "Completed"}},
	GroupDueDate:   {{"overdue", "Overdue"}, {"today", "Today"}, {"week", "This Week"}, {"later", "Later"}, {"no-date", "No Due Date"}},
	GroupCompleted: {{"todo", "To Do"}, {"done", "Completed Tasks"}},
}

var bucketRank = map[string]int{
	"overdue":   1,
	"today":     2,
	"high":      3,
	"active":    4,
	"week":      5,
	"med":       6,
	"upcoming":  7,
	"low":       8,
	"later":     9,
	"future":    10,
	"done":      11,
	"completed": 12,
	"no-date":   13,
	"nodate":    14,
	"all":       15,
}

// BucketOrder is the display rank of a group key. Unknown keys sort last.
func BucketOrder(key string) int {
	if r, ok := bucketRank[key]; ok {
		return r
	}
	return 999
}

// GroupTasks partitions tasks by mode. Every bucket of the mode is returned,
// empty or not, sorted by BucketOrder.
func GroupTasks(tasks []task.Task, by GroupBy, now time.Time, loc *time.Location) []Group {
	defs, ok := buckets[by]
	if !ok {
		by, defs = GroupNone, buckets[GroupNone]
	}
	groups := make([]Group, len(defs))
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		groups[i] = Group{Key: d.key, Label: d.label, Tasks: []task.Task{}}
		index[d.key] = i
	}
	for _, t := range tasks {
		i := index[groupKey(&t, by, now, loc)]
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return BucketOrder(groups[i].Key) < BucketOrder(groups[j].Key)
	})
	return groups
}

func groupKey(t *task.Task, by GroupBy, now time.Time, loc *time.Location) string {
	switch by {
	case GroupPriority:
		switch t.Priority {
		case task.PriorityHigh, task.PriorityLow:
			return string(t.Priority)
		}
		return string(task.PriorityMed)
	case GroupStatus:
		if t.Completed {
			return "completed"
		}
		return "active"
	case GroupDueDate:
		if t.DueAt == nil {
			return "no-date"
		}
		switch d := DayDiff(now, *t.DueAt, loc); {
		case d < 0:
			return "overdue"
		case d == 0:
			return "today"
		case d <= 7:
			return "week"
		default:
			return "later"
		}
	case GroupCompleted:
		if t.Completed {
			return "done"
		}
		return "todo"
	}
	return "all"
}

// DayDiff is the number of calendar days from now to ts in loc. It is
// negative when ts falls on an earlier day.
func DayDiff(now, ts time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return int(civilDay(ts, loc).Sub(civilDay(now, loc)).Hours() / 24)
}

// civilDay maps t to midnight UTC of its local date so DST never skews a
// day count.
func civilDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}
