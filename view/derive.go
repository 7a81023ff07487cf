package view

import (
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// View is the rendered state for one set of controls. Exactly one of Groups,
// Lanes and Timeline is set, chosen by Mode: list and grid use Groups.
type View struct {
	Mode     Mode            `json:"mode"`
	Density  Density         `json:"density"`
	Tasks    []task.Task     `json:"tasks"`
	Groups   []Group         `json:"groups,omitempty"`
	Lanes    []Lane          `json:"lanes,omitempty"`
	Timeline []TimelineGroup `json:"timeline,omitempty"`
	Stats    Statistics      `json:"stats"`
	Minimize bool            `json:"minimizeActions"`
	Reduce   bool            `json:"reduceAnimations"`
}

// Derive runs search, then the priority filter, then focus mode, then
// grouping, then the mode layout. The status filter is assumed to have been
// applied when the list was fetched. Stats cover the input list.
func Derive(tasks []task.Task, c Controls, now time.Time, loc *time.Location) View {
	visible := Search(tasks, c.Search)
	visible = FilterPriority(visible, c.Priority)
	visible = ApplyFocus(visible, c.Focus, now)

	v := View{
		Mode:    c.Mode,
		Density: c.Density,
		Tasks:   visible,
		Stats:   Stats(tasks, now, loc),
	}
	if v.Mode == "" {
		v.Mode = ModeList
	}
	if v.Density == "" {
		v.Density = DensityComfortable
	}
	if c.Focus.Enabled {
		v.Minimize = c.Focus.Settings.MinimizeActions
		v.Reduce = c.Focus.Settings.ReduceAnimations
	}

	switch v.Mode {
	case ModeKanban:
		v.Lanes = Kanban(visible)
	case ModeTimeline:
		v.Timeline = Timeline(visible, now, loc)
	default:
		by := c.GroupBy
		if by == "" {
			by = GroupNone
		}
		v.Groups = GroupTasks(visible, by, now, loc)
	}
	return v
}

// Move returns s with the element at from moved to index to, shifting the
// elements in between. s is not modified. Out-of-range indexes return a copy
// of s unchanged.
func Move[T any](s []T, from, to int) []T {
	out := make([]T, len(s))
	copy(out, s)
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) || from == to {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}
