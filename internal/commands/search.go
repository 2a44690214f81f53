package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/store"
)

const (
	matchNone = iota
	matchContains
	matchSuffix
	matchPrefix
	matchExact
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tasks across text, category and subtasks",
	Long: `Search tasks with ranked matching:
- Exact match (highest priority)
- Prefix match
- Suffix match
- Contains (lowest priority)

Search is case insensitive and looks at the task text, its category, its
priority and its subtasks. Ties keep list order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		query := joinArgs(args)
		limit, _ := cmd.Flags().GetInt("limit")

		rows := searchTasks(s.Snapshot(), query)
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return renderSearchJSON(cmd, rows, query)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Search results for '%s' (%d found):\n", query, len(rows))
		if len(rows) == 0 {
			fmt.Fprintln(out, "No tasks found matching your search.")
			return nil
		}
		fmt.Fprintln(out)
		renderTable(out, rows, time.Now())
		return nil
	}),
}

// searchTasks returns matching tasks, best matches first
func searchTasks(tasks []models.Task, query string) []row {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type hit struct {
		row  row
		rank int
	}
	var hits []hit
	for i, t := range tasks {
		fields := []string{t.Text, t.Category, string(t.Priority)}
		for _, sub := range t.Subtasks {
			fields = append(fields, sub.Text)
		}

		best := matchNone
		for _, f := range fields {
			best = max(best, matchRank(strings.ToLower(f), q))
		}
		if best != matchNone {
			hits = append(hits, hit{row: row{pos: i + 1, task: t}, rank: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].rank > hits[j].rank
	})

	rows := make([]row, len(hits))
	for i, h := range hits {
		rows[i] = h.row
	}
	return rows
}

func matchRank(field, q string) int {
	switch {
	case field == "":
		return matchNone
	case field == q:
		return matchExact
	case strings.HasPrefix(field, q):
		return matchPrefix
	case strings.HasSuffix(field, q):
		return matchSuffix
	case strings.Contains(field, q):
		return matchContains
	}
	return matchNone
}

// renderSearchJSON outputs search results as JSON
func renderSearchJSON(cmd *cobra.Command, rows []row, query string) error {
	type searchResult struct {
		Query string        `json:"query"`
		Count int           `json:"count"`
		Tasks []models.Task `json:"tasks"`
	}

	jsonBytes, err := json.MarshalIndent(searchResult{
		Query: query,
		Count: len(rows),
		Tasks: rowTasks(rows),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}

func init() {
	searchCmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	searchCmd.Flags().Bool("json", false, "Output as JSON")
}
