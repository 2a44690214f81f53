package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/export"
	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/store"
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage subtasks",
	Long: `Manage the checklist under a task. Subtasks are addressed by their
1-based number, as shown by 'todo ls'.`,
}

var subAddCmd = &cobra.Command{
	Use:   "add <task_id> <text>",
	Short: "Append a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.AddSubtask(id, joinArgs(args[1:]))
		if err != nil {
			return err
		}
		printSubtasks(cmd, task)
		return nil
	}),
}

func subCompletion(value bool) func(*cobra.Command, *store.Store, []string) error {
	return func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		index, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		task, err := s.SetSubtaskCompleted(id, index, value)
		if err != nil {
			return err
		}
		printSubtasks(cmd, task)
		return nil
	}
}

var subDoneCmd = &cobra.Command{
	Use:   "done <task_id> <n>",
	Short: "Mark a subtask as completed",
	Args:  cobra.ExactArgs(2),
	RunE:  withStore(subCompletion(true)),
}

var subUndoneCmd = &cobra.Command{
	Use:   "undone <task_id> <n>",
	Short: "Mark a subtask as pending",
	Args:  cobra.ExactArgs(2),
	RunE:  withStore(subCompletion(false)),
}

var subRmCmd = &cobra.Command{
	Use:   "rm <task_id> <n>",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		index, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		task, err := s.DeleteSubtask(id, index)
		if err != nil {
			return err
		}
		printSubtasks(cmd, task)
		return nil
	}),
}

var subMvCmd = &cobra.Command{
	Use:   "mv <task_id> <from> <to>",
	Short: "Move a subtask to another position",
	Args:  cobra.ExactArgs(3),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		from, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		to, err := parsePosition(args[2])
		if err != nil {
			return err
		}
		task, err := s.ReorderSubtask(id, from, to)
		if err != nil {
			return err
		}
		printSubtasks(cmd, task)
		return nil
	}),
}

func printSubtasks(cmd *cobra.Command, task models.Task) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "#%d %s (%d/%d subtasks done)\n", task.ID, task.Text, task.SubtasksDone(), len(task.Subtasks))
	for i, sub := range task.Subtasks {
		fmt.Fprintf(out, "  %d. %s\n", i+1, export.SubtaskLine(sub))
	}
}

func init() {
	subCmd.AddCommand(subAddCmd)
	subCmd.AddCommand(subDoneCmd)
	subCmd.AddCommand(subUndoneCmd)
	subCmd.AddCommand(subRmCmd)
	subCmd.AddCommand(subMvCmd)
}
