package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/export"
	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/parser"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

// row is a task together with its 1-based position in the list
type row struct {
	pos  int
	task models.Task
}

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long:    "List tasks in order with their subtasks, optionally filtered by status or category",
	Args:    cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		pending, _ := cmd.Flags().GetBool("pending")
		done, _ := cmd.Flags().GetBool("done")
		category, _ := cmd.Flags().GetString("category")
		if pending && done {
			return invalidf("--pending and --done cannot be combined")
		}

		tasks := s.Snapshot()
		var rows []row
		for i, t := range tasks {
			if pending && t.Completed || done && !t.Completed {
				continue
			}
			if category != "" && !strings.EqualFold(t.Category, category) {
				continue
			}
			rows = append(rows, row{pos: i + 1, task: t})
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return export.Write(cmd.OutOrStdout(), export.FormatJSON, rowTasks(rows))
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found. Use 'todo add \"task description\"' to create your first task.")
			return nil
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No tasks match these filters.")
		} else {
			renderTable(out, rows, time.Now())
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, progress.Compute(tasks, cfg.Policy()).String())
		return nil
	}),
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show how much of the list is done",
	Long: `Show completion progress.

Policies:
  tasks     - each task counts once (default)
  subtasks  - tasks and subtasks each count once
  rollup    - a task also counts as done when all its subtasks are`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		policy := cfg.Policy()
		if raw, _ := cmd.Flags().GetString("policy"); raw != "" {
			if policy, err = progress.ParsePolicy(raw); err != nil {
				return invalidf("%v", err)
			}
		}

		p := progress.Compute(s.Snapshot(), policy)
		bar := bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40))
		fmt.Fprintln(cmd.OutOrStdout(), bar.ViewAs(p.Ratio()))
		fmt.Fprintln(cmd.OutOrStdout(), p.String())
		return nil
	}),
}

func rowTasks(rows []row) []models.Task {
	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task)
	}
	return tasks
}

// renderTable prints tasks with their subtasks nested underneath
func renderTable(out io.Writer, rows []row, now time.Time) {
	fmt.Fprintf(out, "%-3s %-14s %-4s %-36s %-6s %-11s %s\n", "#", "ID", "DONE", "TEXT", "PRIO", "DUE", "CATEGORY")
	fmt.Fprintln(out, strings.Repeat("-", 90))

	for _, r := range rows {
		t := r.task
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		due := t.DueDate
		if due != "" && !t.Completed && parser.IsOverdue(due, now) {
			due += "!"
		}

		fmt.Fprintf(out, "%-3d %-14d %-4s %-36s %-6s %-11s %s\n",
			r.pos,
			t.ID,
			status,
			truncate(t.Text, 36),
			t.Priority,
			due,
			truncate(t.Category, 16))

		for i, sub := range t.Subtasks {
			fmt.Fprintf(out, "%23s%d. %s\n", "", i+1, truncate(export.SubtaskLine(sub), 50))
		}
	}
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	listCmd.Flags().Bool("json", false, "Output as JSON")
	listCmd.Flags().Bool("pending", false, "Show only pending tasks")
	listCmd.Flags().Bool("done", false, "Show only completed tasks")
	listCmd.Flags().StringP("category", "c", "", "Filter by category")

	progressCmd.Flags().String("policy", "", "Counting policy: tasks, subtasks or rollup")
}
