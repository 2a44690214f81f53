package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/store"
)

var rmCmd = &cobra.Command{
	Use:     "rm <task_id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.Get(id)
		if err != nil {
			return err
		}
		if err := s.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task #%d: %s\n", task.ID, task.Text)
		return nil
	}),
}

var mvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Move a task to another position",
	Long: `Move the task at one position to another. Positions are 1-based, as
shown in the # column of 'todo ls'.`,
	Args: cobra.ExactArgs(2),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		from, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		to, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		if err := s.Reorder(from, to); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved task from position %d to %d\n", from+1, to+1)
		return nil
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		out := cmd.OutOrStdout()
		n := s.Len()
		if n == 0 {
			fmt.Fprintln(out, "Nothing to clear.")
			return nil
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(out, "Delete all %d tasks? [y/N] ", n)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := s.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared %d tasks.\n", n)
		return nil
	}),
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
