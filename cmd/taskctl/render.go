package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/activity"
	"github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/tasklist"
	"github.com/NathanHodgkiss447/smart-tasks/view"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorHigh  = lipgloss.Color("#e53935")
	colorMed   = lipgloss.Color("#FFC107")
	colorLow   = lipgloss.Color("#8BC34A")
	colorMuted = lipgloss.Color("#8a8f98")
	colorInfo  = lipgloss.Color("#2196F3")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(colorMuted)
	overdueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
)

func priorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.PriorityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
	case task.PriorityLow:
		return lipgloss.NewStyle().Foreground(colorLow)
	}
	return lipgloss.NewStyle().Foreground(colorMed)
}

// renderer draws a derived view for one density and focus state.
type renderer struct {
	density  view.Density
	minimize bool
	reduce   bool
	now      time.Time
	loc      *time.Location
}

func newRenderer(v view.View, now time.Time, loc *time.Location) renderer {
	return renderer{density: v.Density, minimize: v.Minimize, reduce: v.Reduce, now: now, loc: loc}
}

func (r renderer) View(v view.View) string {
	switch v.Mode {
	case view.ModeKanban:
		return r.kanban(v.Lanes)
	case view.ModeTimeline:
		return r.timeline(v.Timeline)
	case view.ModeGrid:
		return r.grid(v.Groups)
	}
	return r.list(v.Groups)
}

func (r renderer) list(groups []view.Group) string {
	var b strings.Builder
	single := len(groups) == 1
	for _, g := range groups {
		if !single {
			fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(g.Label), mutedStyle.Render(fmt.Sprintf("(%d)", len(g.Tasks))))
		}
		if len(g.Tasks) == 0 && !single {
			b.WriteString(mutedStyle.Render("  no tasks") + "\n")
		}
		for _, t := range g.Tasks {
			b.WriteString(r.task(t) + "\n")
		}
		if !single {
			b.WriteString("\n")
		}
	}
	if single && len(groups[0].Tasks) == 0 {
		b.WriteString(mutedStyle.Render("No tasks.") + "\n")
	}
	return b.String()
}

func (r renderer) grid(groups []view.Group) string {
	var b strings.Builder
	for _, g := range groups {
		if len(groups) > 1 {
			b.WriteString(headerStyle.Render(g.Label) + "\n")
		}
		cards := make([]string, 0, len(g.Tasks))
		for _, t := range g.Tasks {
			cards = append(cards, r.card(t, 28))
		}
		for len(cards) > 0 {
			n := min(3, len(cards))
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[:n]...) + "\n")
			cards = cards[n:]
		}
	}
	return b.String()
}

func (r renderer) kanban(lanes []view.Lane) string {
	cols := make([]string, 0, len(lanes))
	for _, l := range lanes {
		var b strings.Builder
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", l.Title, len(l.Tasks))) + "\n")
		for _, t := range l.Tasks {
			b.WriteString(r.card(t, 26) + "\n")
		}
		cols = append(cols, lipgloss.NewStyle().Width(30).MarginRight(1).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n"
}

func (r renderer) timeline(groups []view.TimelineGroup) string {
	if len(groups) == 0 {
		return mutedStyle.Render("No tasks.") + "\n"
	}
	var b strings.Builder
	for _, g := range groups {
		label := headerStyle.Render(g.Label)
		if g.Span == view.SpanOverdue {
			label = overdueStyle.Render(g.Label)
		}
		b.WriteString(label + "\n")
		for _, t := range g.Tasks {
			b.WriteString(r.task(t) + "\n")
		}
	}
	return b.String()
}

func (r renderer) card(t task.Task, width int) string {
	style := lipgloss.NewStyle().Width(width).Padding(0, 1)
	if !r.reduce {
		style = style.Border(lipgloss.RoundedBorder()).BorderForeground(priorityStyle(t.Priority).GetForeground())
	}
	lines := []string{r.title(t)}
	if r.density != view.DensityMinimal {
		lines = append(lines, priorityStyle(t.Priority).Render(string(t.Priority))+" "+r.due(t))
	}
	if r.density == view.DensityComfortable && t.Description != "" {
		lines = append(lines, mutedStyle.Render(t.Description))
	}
	if !r.minimize {
		lines = append(lines, mutedStyle.Render(t.ID))
	}
	return style.Render(strings.Join(lines, "\n"))
}

// task renders one list row.
func (r renderer) task(t task.Task) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	parts := []string{check, r.title(t)}
	if r.density != view.DensityMinimal {
		parts = append(parts, priorityStyle(t.Priority).Render(string(t.Priority)))
		if due := r.due(t); due != "" {
			parts = append(parts, due)
		}
	}
	if !r.minimize {
		parts = append(parts, mutedStyle.Render("#"+t.ID))
	}
	line := strings.Join(parts, " ")
	if r.density == view.DensityComfortable && t.Description != "" {
		line += "\n    " + mutedStyle.Render(t.Description)
	}
	return line
}

func (r renderer) title(t task.Task) string {
	if t.Completed {
		return doneStyle.Render(t.Title)
	}
	return t.Title
}

func (r renderer) due(t task.Task) string {
	if t.DueAt == nil {
		return ""
	}
	s := formatDue(*t.DueAt, r.now, r.loc)
	if t.IsOverdue(r.now) {
		return overdueStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

func formatDue(due, now time.Time, loc *time.Location) string {
	local := due.In(loc)
	switch view.DayDiff(now, due, loc) {
	case -1:
		return "yesterday " + local.Format("15:04")
	case 0:
		return "today " + local.Format("15:04")
	case 1:
		return "tomorrow " + local.Format("15:04")
	}
	return local.Format("Mon Jan 2 15:04")
}

func renderTaskDetail(t task.Task, now time.Time, loc *time.Location) string {
	r := renderer{density: view.DensityComfortable, now: now, loc: loc}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(t.Title))
	fmt.Fprintf(&b, "id:        %s\n", t.ID)
	fmt.Fprintf(&b, "priority:  %s\n", priorityStyle(t.Priority).Render(string(t.Priority)))
	fmt.Fprintf(&b, "completed: %t\n", t.Completed)
	due := r.due(t)
	if due == "" {
		due = mutedStyle.Render("none")
	}
	fmt.Fprintf(&b, "due:       %s\n", due)
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	return b.String()
}

func renderSummary(s *reminder.Summary, now time.Time, loc *time.Location) string {
	r := renderer{density: view.DensityCompact, now: now, loc: loc}
	var b strings.Builder
	overdue := fmt.Sprintf("%d overdue", s.OverdueCount)
	if s.OverdueCount > 0 {
		overdue = overdueStyle.Render(overdue)
	}
	b.WriteString(overdue + "\n")

	b.WriteString(headerStyle.Render("Due today") + "\n")
	if len(s.DueToday) == 0 {
		b.WriteString(mutedStyle.Render("  nothing due today") + "\n")
	}
	for _, t := range s.DueToday {
		b.WriteString("  " + r.task(t) + "\n")
	}

	b.WriteString(headerStyle.Render("Suggested due dates") + "\n")
	if len(s.Suggested) == 0 {
		b.WriteString(mutedStyle.Render("  no suggestions") + "\n")
	}
	for _, sg := range s.Suggested {
		fmt.Fprintf(&b, "  #%s -> %s\n", sg.TaskID, sg.SuggestedDueAt.In(loc).Format("Mon Jan 2 15:04"))
	}
	return b.String()
}

func renderStats(s view.Statistics) string {
	rows := [][2]string{
		{"total", fmt.Sprint(s.Total)},
		{"completed", fmt.Sprint(s.Completed)},
		{"completion rate", fmt.Sprintf("%d%%", s.CompletionRate)},
		{"completed today", fmt.Sprint(s.CompletedToday)},
		{"overdue", fmt.Sprint(s.Overdue)},
		{"pending", fmt.Sprint(s.Pending)},
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-16s %s\n", mutedStyle.Render(row[0]), row[1])
	}
	return b.String()
}

func renderActivity(entries []activity.Entry, loc *time.Location) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No recent activity.") + "\n"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render(e.Timestamp.In(loc).Format("Jan 2 15:04:05")), e.Message)
	}
	return b.String()
}

func renderBulk(op string, res tasklist.BulkResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d succeeded, %d failed\n", op, res.Succeeded(), res.Failed())
	for _, it := range res.Items {
		if it.Err != nil {
			fmt.Fprintf(&b, "  %s %s\n", overdueStyle.Render("#"+it.ID), it.Err)
		}
	}
	return b.String()
}
