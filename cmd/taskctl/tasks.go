package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/view"
	"github.com/spf13/cobra"
)

func lsCmd(c *cli) *cobra.Command {
	var (
		status, priority, search, group, mode, density, preset string
		focus                                                  bool
		fs                                                     view.FocusSettings
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			ctrl := view.Controls{
				Status:   task.StatusFilter(status),
				Priority: view.PriorityFilter(priority),
				Search:   search,
				GroupBy:  view.GroupBy(group),
				Density:  view.Density(density),
				Mode:     view.Mode(mode),
				Focus:    view.Focus{Enabled: focus, Settings: fs},
			}
			if preset != "" {
				s, err := view.Preset(preset)
				if err != nil {
					return err
				}
				ctrl.Focus = view.Focus{Enabled: true, Settings: s}
			} else if focus && !anyChanged(cmd, "hide-completed", "hide-overdue", "hide-no-date", "hide-low", "minimize-actions", "reduce-animations") {
				ctrl.Focus.Settings = view.DefaultFocus()
			}
			if err := ctrl.Validate(); err != nil {
				return err
			}

			if err := c.store.Refresh(cmd.Context(), ctrl.Status); err != nil {
				return err
			}
			now := c.now()
			v := view.Derive(c.store.Tasks(), ctrl, now, c.loc)
			fmt.Fprint(out(cmd), newRenderer(v, now, c.loc).View(v))
			if v.Density != view.DensityMinimal {
				fmt.Fprintln(out(cmd), mutedStyle.Render(fmt.Sprintf("%d of %d shown", len(v.Tasks), v.Stats.Total)))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "all", "all, overdue, today, upcoming or completed")
	f.StringVarP(&priority, "priority", "p", "all", "all, high, med or low")
	f.StringVarP(&search, "search", "q", "", "Case-insensitive text in title or description")
	f.StringVarP(&group, "group", "g", "none", "none, priority, status, dueDate or completed")
	f.StringVarP(&mode, "mode", "m", "list", "list, grid, kanban or timeline")
	f.StringVarP(&density, "density", "d", "comfortable", "comfortable, compact or minimal")
	f.BoolVarP(&focus, "focus", "f", false, "Enable focus mode (hides completed unless toggles say otherwise)")
	f.StringVar(&preset, "preset", "", "Focus preset: "+strings.Join(view.PresetNames, ", "))
	f.BoolVar(&fs.HideCompleted, "hide-completed", false, "Focus: hide completed tasks")
	f.BoolVar(&fs.HideOverdue, "hide-overdue", false, "Focus: hide overdue tasks")
	f.BoolVar(&fs.HideNoDate, "hide-no-date", false, "Focus: hide tasks without a due date")
	f.BoolVar(&fs.HideLowPriority, "hide-low", false, "Focus: hide low priority tasks")
	f.BoolVar(&fs.MinimizeActions, "minimize-actions", false, "Focus: hide ids and action hints")
	f.BoolVar(&fs.ReduceAnimations, "reduce-animations", false, "Focus: drop borders and decorations")
	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func addCmd(c *cli) *cobra.Command {
	var desc, due, priority string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			d := task.Draft{Title: strings.Join(args, " "), Description: desc}
			if priority != "" {
				p, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				d.Priority = p
			}
			if due != "" {
				at, err := parseDue(due, c.now(), c.loc)
				if err != nil {
					return err
				}
				d.DueAt = &at
			}
			created, err := c.store.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created #%s %s\n", created.ID, created.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&due, "due", "", "Due date: RFC3339, YYYY-MM-DD[ HH:MM], tomorrow or next-business-day")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high, med or low (default med)")
	return cmd
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			t, err := c.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderTaskDetail(*t, c.now(), c.loc))
			return nil
		},
	}
}

func editCmd(c *cli) *cobra.Command {
	var title, desc, due, priority string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			var p task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("desc") {
				p.Description = &desc
			}
			if flags.Changed("priority") {
				pr, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			switch {
			case clearDue && flags.Changed("due"):
				return fmt.Errorf("--due and --clear-due are mutually exclusive")
			case clearDue:
				p.ClearDueAt = true
			case flags.Changed("due"):
				at, err := parseDue(due, c.now(), c.loc)
				if err != nil {
					return err
				}
				p.DueAt = &at
			}
			if p.IsEmpty() {
				return fmt.Errorf("nothing to change")
			}
			updated, err := c.store.Patch(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderTaskDetail(*updated, c.now(), c.loc))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high, med or low")
	return cmd
}

// doneCmd builds "done" or, with completed false, "undo".
func doneCmd(c *cli, completed bool) *cobra.Command {
	use, short, op := "done", "Mark tasks complete", "done"
	if !completed {
		use, short, op = "undo", "Mark tasks not complete", "undo"
	}
	return &cobra.Command{
		Use:   use + " <id...>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			res := c.store.BulkUpdate(cmd.Context(), selectionOf(args), task.Patch{Completed: &completed})
			fmt.Fprint(out(cmd), renderBulk(op, res))
			return res.Err()
		},
	}
}

func rmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id...>",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			res := c.store.BulkDelete(cmd.Context(), selectionOf(args))
			fmt.Fprint(out(cmd), renderBulk("rm", res))
			return res.Err()
		},
	}
}

func moveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <todo|in-progress|completed>",
		Short: "Move a task to a kanban column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			col, err := view.ParseColumn(args[1])
			if err != nil {
				return err
			}
			t, err := c.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, moved := view.MoveTo(t, col)
			if !moved {
				fmt.Fprintf(out(cmd), "#%s is already in %s\n", t.ID, col)
				return nil
			}
			if _, err := c.client.UpdateTask(cmd.Context(), t.ID, p); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Moved #%s to %s\n", t.ID, col)
			return nil
		},
	}
}

// parseDue accepts RFC3339, "YYYY-MM-DD HH:MM" and "YYYY-MM-DD" in loc (the
// latter at reminder.SuggestedHour), "tomorrow" and "next-business-day".
func parseDue(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "tomorrow":
		l := now.In(loc)
		return time.Date(l.Year(), l.Month(), l.Day()+1, reminder.SuggestedHour, 0, 0, 0, loc), nil
	case "next-business-day", "nbd":
		return reminder.NextBusinessDay(now, loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), reminder.SuggestedHour, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse due date %q", s)
}
