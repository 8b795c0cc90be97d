package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"prism-tracker/domain"
	"prism-tracker/tracker"
)

func newTaskCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "todo"},
		Short:   "Manage tasks",
	}

	var priority string
	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.tracker.AddTask(cmd.Context(), strings.Join(args, " "), priority)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added task %d\n", task.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")

	var filter string
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.tracker.Filter()
			if filter != "" {
				var err error
				if f, err = domain.ParseFilter(filter); err != nil {
					return err
				}
			}
			printTasks(cmd, domain.FilterTasks(a.tracker.Tasks(), f))
			s := a.tracker.TaskStats()
			fmt.Fprintf(cmd.OutOrStdout(), "%d total, %d active, %d completed\n", s.Total, s.Active, s.Completed)
			return nil
		},
	}
	ls.Flags().StringVarP(&filter, "filter", "f", "", "all, active or completed")

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.tracker.ToggleTask(cmd.Context(), id)
			return report(cmd, "task", id, "toggled", found, err)
		},
	}

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.tracker.DeleteTask(cmd.Context(), id)
			return report(cmd, "task", id, "deleted", found, err)
		},
	}

	clear := newClearCommand(a, "Delete every completed task", "completed tasks", (*tracker.Tracker).ClearCompletedTasks)

	cmd.AddCommand(add, ls, toggle, rm, clear)
	return cmd
}

func printTasks(cmd *cobra.Command, tasks []domain.Task) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tTEXT\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Completed), t.Priority, t.Text, domain.FormatDate(t.CreatedAt, time.Local))
	}
	_ = w.Flush()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
