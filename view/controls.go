// Package view turns an already-fetched task list into what a client shows:
// search and priority filtering, focus mode, grouping and the list, grid,
// kanban and timeline layouts. Everything here is pure and deterministic for
// a given (tasks, controls, now).
package view

import (
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
)

// PriorityFilter is task.Priority plus "all".
type PriorityFilter string

const PriorityAll PriorityFilter = "all"

// GroupBy selects how the filtered list is partitioned.
type GroupBy string

const (
	GroupNone      GroupBy = "none"
	GroupPriority  GroupBy = "priority"
	GroupStatus    GroupBy = "status"
	GroupDueDate   GroupBy = "dueDate"
	GroupCompleted GroupBy = "completed"
)

// Density controls how much of each task is rendered.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
	DensityMinimal     Density = "minimal"
)

// Mode is the layout the filtered list is presented in.
type Mode string

const (
	ModeList     Mode = "list"
	ModeGrid     Mode = "grid"
	ModeKanban   Mode = "kanban"
	ModeTimeline Mode = "timeline"
)

// FocusSettings are the independent hide predicates of focus mode, plus two
// presentation hints.
type FocusSettings struct {
	HideCompleted    bool `json:"hideCompleted" yaml:"hideCompleted"`
	HideOverdue      bool `json:"hideOverdue" yaml:"hideOverdue"`
	HideNoDate       bool `json:"hideNoDate" yaml:"hideNoDate"`
	HideLowPriority  bool `json:"hideLowPriority" yaml:"hideLowPriority"`
	MinimizeActions  bool `json:"minimizeActions" yaml:"minimizeActions"`
	ReduceAnimations bool `json:"reduceAnimations" yaml:"reduceAnimations"`
}

// DefaultFocus only hides completed tasks.
func DefaultFocus() FocusSettings {
	return FocusSettings{HideCompleted: true}
}

var presets = map[string]FocusSettings{
	"minimal":  {HideCompleted: true, MinimizeActions: true, ReduceAnimations: true},
	"work":     {HideCompleted: true, HideNoDate: true, HideLowPriority: true},
	"today":    {HideCompleted: true, HideOverdue: true, HideNoDate: true},
	"priority": {HideLowPriority: true, MinimizeActions: true, ReduceAnimations: true},
}

// PresetNames lists the built-in focus presets.
var PresetNames = []string{"minimal", "work", "today", "priority"}

// Preset returns a built-in focus preset by name.
func Preset(name string) (FocusSettings, error) {
	s, ok := presets[name]
	if !ok {
		return FocusSettings{}, fmt.Errorf("unknown focus preset %q", name)
	}
	return s, nil
}

// Focus is focus mode's on/off switch with its settings.
type Focus struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Settings FocusSettings `json:"settings" yaml:"settings"`
}

// Controls is every user-chosen input of the derived view.
type Controls struct {
	Status   task.StatusFilter `json:"status" yaml:"status"`
	Priority PriorityFilter    `json:"priority" yaml:"priority"`
	Search   string            `json:"search" yaml:"search"`
	GroupBy  GroupBy           `json:"groupBy" yaml:"groupBy"`
	Density  Density           `json:"density" yaml:"density"`
	Mode     Mode              `json:"mode" yaml:"mode"`
	Focus    Focus             `json:"focus" yaml:"focus"`
}

// DefaultControls is the view a fresh client starts with.
func DefaultControls() Controls {
	return Controls{
		Status:   task.StatusAll,
		Priority: PriorityAll,
		GroupBy:  GroupNone,
		Density:  DensityComfortable,
		Mode:     ModeList,
		Focus:    Focus{Settings: DefaultFocus()},
	}
}

// Validate rejects values outside the known sets. Empty fields are accepted
// and treated as their defaults.
func (c Controls) Validate() error {
	if c.Status != "" {
		if _, err := task.ParseStatusFilter(string(c.Status)); err != nil {
			return err
		}
	}
	switch c.Priority {
	case "", PriorityAll, PriorityFilter(task.PriorityHigh), PriorityFilter(task.PriorityMed), PriorityFilter(task.PriorityLow):
	default:
		return fmt.Errorf("unknown priority filter %q", c.Priority)
	}
	switch c.GroupBy {
	case "", GroupNone, GroupPriority, GroupStatus, GroupDueDate, GroupCompleted:
	default:
		return fmt.Errorf("unknown grouping %q", c.GroupBy)
	}
	switch c.Density {
	case "", DensityComfortable, DensityCompact, DensityMinimal:
	default:
		return fmt.Errorf("unknown density %q", c.Density)
	}
	switch c.Mode {
	case "", ModeList, ModeGrid, ModeKanban, ModeTimeline:
	default:
		return fmt.Errorf("unknown view mode %q", c.Mode)
	}
	return nil
}
