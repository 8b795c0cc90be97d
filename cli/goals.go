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

func newGoalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Manage goals",
	}

	var deadline, category string
	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := a.tracker.AddGoal(cmd.Context(), strings.Join(args, " "), deadline, category)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added goal %d\n", goal.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline as YYYY-MM-DD")
	add.Flags().StringVarP(&category, "category", "c", "", "personal, work, health, learning or finance (default personal)")

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List goals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := a.tracker.View(time.Now())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tCATEGORY\tDEADLINE\tTEXT")
			for _, g := range view.Goals {
				due := g.DeadlineText
				if g.Overdue {
					due += " (overdue)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.ID, checkbox(g.Completed), g.Category, due, g.Text)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printGoalStats(cmd, view.GoalStats)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a goal between open and achieved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.tracker.ToggleGoal(cmd.Context(), id)
			return report(cmd, "goal", id, "toggled", found, err)
		},
	}

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.tracker.DeleteGoal(cmd.Context(), id)
			return report(cmd, "goal", id, "deleted", found, err)
		},
	}

	clear := newClearCommand(a, "Delete every achieved goal", "completed goals", (*tracker.Tracker).ClearCompletedGoals)

	cmd.AddCommand(add, ls, toggle, rm, clear)
	return cmd
}

func printGoalStats(cmd *cobra.Command, s domain.GoalStats) {
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d goals completed (%d%%)\n", s.Completed, s.Total, s.Percentage)
}
