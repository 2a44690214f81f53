package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/store"
)

var doneCmd = &cobra.Command{
	Use:   "done <task_id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.SetCompleted(id, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked task #%d as done: %s\n", task.ID, task.Text)
		return nil
	}),
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task_id>",
	Short: "Mark a completed task back to pending",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.SetCompleted(id, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "↩️  Marked task #%d as pending: %s\n", task.ID, task.Text)
		return nil
	}),
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <task_id>",
	Short: "Flip a task between done and pending",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.Toggle(id)
		if err != nil {
			return err
		}
		state := "pending"
		if task.Completed {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s: %s\n", task.ID, state, task.Text)
		return nil
	}),
}
