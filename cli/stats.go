package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize tasks and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := a.tracker.TaskStats()
			fmt.Fprintf(cmd.OutOrStdout(), "tasks: %d total, %d active, %d completed\n", ts.Total, ts.Active, ts.Completed)
			fmt.Fprintf(cmd.OutOrStdout(), "notes: %d\n", len(a.tracker.Notes()))
			printGoalStats(cmd, a.tracker.GoalStats())
			return nil
		},
	}
}
