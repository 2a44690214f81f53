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

var addCmd = &cobra.Command{
	Use:   "add <task text>",
	Short: "Add a new task",
	Long: `Add a new task to the end of the list, with optional metadata.

Smart parsing syntax:
  #category   - Category (first one wins)
  +priority   - Priority (low/medium/high or 1/2/3)
  due:3days   - Due date (yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, X weeks)

Flags override anything parsed from the text.

Example:
  todo add "Buy milk #home +high due:tomorrow"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withStore(runAdd),
}

func runAdd(cmd *cobra.Command, s *store.Store, args []string) error {
	now := time.Now()
	parsed := parser.ParseTitle(joinArgs(args), now)
	if len(parsed.Errors) > 0 {
		return invalidf("%s", strings.Join(parsed.Errors, ", "))
	}

	// Explicit flags take precedence
	if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
		p, ok := models.ParsePriority(raw)
		if !ok {
			return invalidf("invalid priority '%s': use low, medium or high", raw)
		}
		parsed.Priority = p
	}
	if raw, _ := cmd.Flags().GetString("due"); raw != "" {
		due, err := parser.ParseDueDate(raw, now)
		if err != nil {
			return invalidf("invalid due date: %v", err)
		}
		parsed.DueDate = due
	}
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		parsed.Category = strings.TrimSpace(category)
	}

	task, err := s.Add(store.AddInput{
		Text:     parsed.Text,
		Priority: parsed.Priority,
		DueDate:  parsed.DueDate,
		Category: parsed.Category,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task #%d: %s\n", task.ID, task.Text)
	if task.Category != "" {
		fmt.Fprintf(out, "  Category: %s\n", task.Category)
	}
	if task.Priority != models.PriorityNone {
		fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
	}
	if task.DueDate != "" {
		fmt.Fprintf(out, "  %s\n", parser.FormatDueDate(task.DueDate, now))
	}
	return nil
}

func init() {
	addCmd.Flags().StringP("priority", "p", "", "Priority: low, medium, high, or 1-3")
	addCmd.Flags().StringP("due", "d", "", "Due date: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days, X weeks")
	addCmd.Flags().StringP("category", "c", "", "Category")
}
