package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/parser"
	"github.com/balkashynov/todo/internal/store"
)

var editCmd = &cobra.Command{
	Use:   "edit <task_id> <new text>",
	Short: "Change the text of a task",
	Long: `Replace a task's text. Blank text is rejected and the task is left unchanged.

Usage:
  todo edit 1733000000000 Buy oat milk`,
	Args: cobra.MinimumNArgs(2),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := s.Edit(id, joinArgs(args[1:]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated task #%d: %s\n", task.ID, task.Text)
		return nil
	}),
}

var setCmd = &cobra.Command{
	Use:   "set <task_id>",
	Short: "Set priority, due date or category of a task",
	Long: `Set task details. Only the flags you pass are changed; pass an empty
value (--due "") to clear a field.

Usage:
  todo set 1733000000000 --priority high --due "3 days" --category work`,
	Args: cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var in store.DetailsInput
		flags := cmd.Flags()
		if flags.Changed("priority") {
			raw, _ := flags.GetString("priority")
			p, ok := models.ParsePriority(raw)
			if !ok {
				return invalidf("invalid priority '%s': use low, medium or high", raw)
			}
			in.Priority = &p
		}
		if flags.Changed("due") {
			raw, _ := flags.GetString("due")
			due, err := parser.ParseDueDate(raw, time.Now())
			if err != nil {
				return invalidf("invalid due date: %v", err)
			}
			in.DueDate = &due
		}
		if flags.Changed("category") {
			raw, _ := flags.GetString("category")
			category := strings.TrimSpace(raw)
			in.Category = &category
		}
		if in.Priority == nil && in.DueDate == nil && in.Category == nil {
			return invalidf("nothing to set: use --priority, --due or --category")
		}

		task, err := s.SetDetails(id, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated task #%d: %s\n", task.ID, describe(task))
		return nil
	}),
}

// describe renders a task with its metadata on one line
func describe(t models.Task) string {
	var parts []string
	if t.Priority != models.PriorityNone {
		parts = append(parts, "priority "+string(t.Priority))
	}
	if t.DueDate != "" {
		parts = append(parts, "due "+t.DueDate)
	}
	if t.Category != "" {
		parts = append(parts, "category "+t.Category)
	}
	if len(parts) == 0 {
		return t.Text
	}
	return fmt.Sprintf("%s (%s)", t.Text, strings.Join(parts, ", "))
}

func init() {
	setCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, or empty to clear")
	setCmd.Flags().StringP("due", "d", "", "Due date, or empty to clear")
	setCmd.Flags().StringP("category", "c", "", "Category, or empty to clear")
}
