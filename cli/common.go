package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prism-tracker/tracker"
)

type clearFunc func(t *tracker.Tracker, ctx context.Context, confirmed bool) (int, error)

// newClearCommand builds a destructive bulk delete that does nothing unless
// --yes is given.
func newClearCommand(a *app, short, what string, clear clearFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing cleared; pass --yes to delete %s\n", what)
				return nil
			}
			n, err := clear(a.tracker, cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d %s\n", n, what)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func report(cmd *cobra.Command, entity string, id int64, verb string, found bool, err error) error {
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s %d not found", entity, id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", verb, entity, id)
	return nil
}
