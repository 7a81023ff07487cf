package main

import (
	"errors"
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/tasklist"
	"github.com/NathanHodgkiss447/smart-tasks/view"
	"github.com/spf13/cobra"
)

func selectionOf(ids []string) *tasklist.Selection {
	sel := tasklist.NewSelection()
	sel.SelectAll(ids)
	return sel
}

func bulkCmd(c *cli) *cobra.Command {
	var (
		all         bool
		status      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply one change to many tasks",
	}
	cmd.PersistentFlags().BoolVar(&all, "all", false, "Select every task in --status instead of listing ids")
	cmd.PersistentFlags().StringVarP(&status, "status", "s", "all", "Scope for --all")
	cmd.PersistentFlags().IntVar(&concurrency, "concurrency", tasklist.DefaultConcurrency, "Requests in flight")

	// pick resolves the selection from ids or --all.
	pick := func(cmd *cobra.Command, ids []string) (*tasklist.Selection, error) {
		if err := c.requireLogin(); err != nil {
			return nil, err
		}
		c.store.SetConcurrency(concurrency)
		if all == (len(ids) > 0) {
			return nil, errors.New("pass task ids or --all, not both")
		}
		if !all {
			return selectionOf(ids), nil
		}
		st, err := task.ParseStatusFilter(status)
		if err != nil {
			return nil, err
		}
		if err := c.store.Refresh(cmd.Context(), st); err != nil {
			return nil, err
		}
		sel := tasklist.NewSelection()
		sel.ToggleAll(c.store.IDs())
		return sel, nil
	}

	run := func(op string, fn func(cmd *cobra.Command, sel *tasklist.Selection) (tasklist.BulkResult, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			sel, err := pick(cmd, args)
			if err != nil {
				return err
			}
			if sel.Len() == 0 {
				fmt.Fprintln(out(cmd), "Nothing selected")
				return nil
			}
			res, err := fn(cmd, sel)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderBulk(op, res))
			return res.Err()
		}
	}

	complete := &cobra.Command{
		Use:   "complete [id...]",
		Short: "Mark tasks complete",
		RunE: run("complete", func(cmd *cobra.Command, sel *tasklist.Selection) (tasklist.BulkResult, error) {
			return c.store.BulkComplete(cmd.Context(), sel), nil
		}),
	}
	del := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete tasks",
		RunE: run("delete", func(cmd *cobra.Command, sel *tasklist.Selection) (tasklist.BulkResult, error) {
			return c.store.BulkDelete(cmd.Context(), sel), nil
		}),
	}
	var due string
	reschedule := &cobra.Command{
		Use:   "reschedule --due <date> [id...]",
		Short: "Set one due date on many tasks",
		RunE: run("reschedule", func(cmd *cobra.Command, sel *tasklist.Selection) (tasklist.BulkResult, error) {
			at, err := parseDue(due, c.now(), c.loc)
			if err != nil {
				return tasklist.BulkResult{}, err
			}
			return c.store.BulkReschedule(cmd.Context(), sel, at), nil
		}),
	}
	reschedule.Flags().StringVar(&due, "due", "", "New due date")
	_ = reschedule.MarkFlagRequired("due")

	cmd.AddCommand(complete, del, reschedule)
	return cmd
}

func remindCmd(c *cli) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Show overdue, due-today and suggested due dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			s, err := c.client.Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderSummary(s, c.now(), c.loc))
			if !apply {
				return nil
			}
			var errs []error
			for _, sg := range s.Suggested {
				if _, err := c.store.ApplySuggestion(cmd.Context(), sg.TaskID, sg.SuggestedDueAt); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", sg.TaskID, err))
					continue
				}
				fmt.Fprintf(out(cmd), "Scheduled #%s\n", sg.TaskID)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Accept every suggested due date")
	return cmd
}

func statsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if err := c.store.Refresh(cmd.Context(), task.StatusAll); err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderStats(view.Stats(c.store.Tasks(), c.now(), c.loc)))
			return nil
		},
	}
}

func activityCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes to your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			entries, err := c.client.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), renderActivity(entries, c.loc))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries")
	return cmd
}
