package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"prism-tracker/domain"
	"prism-tracker/tracker"
)

func newNoteCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage notes",
	}

	add := &cobra.Command{
		Use:   "add TITLE CONTENT",
		Short: "Add a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.tracker.AddNote(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added note %d\n", note.ID)
			return nil
		},
	}

	var full bool
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := a.tracker.Notes()
			if full {
				for _, n := range notes {
					fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%s)\n%s\n\n", n.ID, n.Title, domain.FormatDate(n.CreatedAt, time.Local), n.Content)
				}
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCHARS\tCREATED")
			for _, n := range notes {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", n.ID, n.Title, domain.CharCount(n.Content), domain.FormatDate(n.CreatedAt, time.Local))
			}
			return w.Flush()
		},
	}
	ls.Flags().BoolVar(&full, "full", false, "print note contents")

	var title, content string
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			draft, ok := a.tracker.BeginEditNote(id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			if cmd.Flags().Changed("title") {
				draft.Title = title
			}
			if cmd.Flags().Changed("content") {
				draft.Content = content
			}
			if _, err := a.tracker.CommitEditNote(cmd.Context(), draft.Title, draft.Content); err != nil {
				a.tracker.CancelEditNote()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated note %d\n", id)
			return nil
		},
	}
	edit.Flags().StringVarP(&title, "title", "t", "", "new title")
	edit.Flags().StringVarP(&content, "content", "c", "", "new content")

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := a.tracker.DeleteNote(cmd.Context(), id)
			return report(cmd, "note", id, "deleted", found, err)
		},
	}

	clear := newClearCommand(a, "Delete every note", "notes", (*tracker.Tracker).ClearAllNotes)

	cmd.AddCommand(add, ls, edit, rm, clear)
	return cmd
}
