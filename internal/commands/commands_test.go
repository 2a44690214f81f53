package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/balkashynov/todo/internal/models"
)

type cli struct {
	t       *testing.T
	db      string
	config  string
	backend string
}

func newCLI(t *testing.T, backend string) *cli {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("progress:\n  policy: tasks\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	name := "records.json"
	if backend == "sqlite" {
		name = "todo.db"
	}
	return &cli{t: t, db: filepath.Join(dir, name), config: cfgPath, backend: backend}
}

// resetFlags puts every flag back to its default between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (c *cli) runWithInput(stdin string, args ...string) string {
	c.t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", c.config, "--backend", c.backend, "--db", c.db}, args...))

	if err := Execute(); err != nil {
		c.t.Fatalf("todo %s failed: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	return c.runWithInput("", args...)
}

func (c *cli) tasks() []models.Task {
	c.t.Helper()
	var tasks []models.Task
	out := c.run("ls", "--json")
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		c.t.Fatalf("failed to decode ls --json output: %v\n%s", err, out)
	}
	return tasks
}

func (c *cli) id(i int) string {
	c.t.Helper()
	tasks := c.tasks()
	if i >= len(tasks) {
		c.t.Fatalf("no task at index %d", i)
	}
	return itoa(tasks[i].ID)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestAddAndList(t *testing.T) {
	c := newCLI(t, "file")

	out := c.run("ls")
	if !strings.Contains(out, "No tasks found") {
		t.Errorf("expected empty-list hint, got:\n%s", out)
	}

	out = c.run("add", "Buy milk #home +high due:2030-01-02")
	if !strings.Contains(out, "Created task #") || !strings.Contains(out, "Category: home") {
		t.Errorf("unexpected add output:\n%s", out)
	}
	c.run("add", "Walk", "dog", "--priority", "low", "--category", "pets")

	tasks := c.tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	first := tasks[0]
	if first.Text != "Buy milk" || first.Category != "home" || first.Priority != models.PriorityHigh || first.DueDate != "2030-01-02" {
		t.Errorf("unexpected parsed task %+v", first)
	}
	if tasks[1].Text != "Walk dog" || tasks[1].Priority != models.PriorityLow || tasks[1].Category != "pets" {
		t.Errorf("flags not applied: %+v", tasks[1])
	}

	out = c.run("ls")
	for _, want := range []string{"Buy milk", "Walk dog", "2030-01-02", "home", "0 / 2 tasks completed (0%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	c := newCLI(t, "file")

	cases := [][]string{
		{"add", "Task +urgent"},
		{"add", "Task", "--due", "someday"},
		{"add", "   "},
	}
	for _, args := range cases {
		out := c.run(args...)
		if !strings.HasPrefix(out, "Error: ") {
			t.Errorf("todo %v: expected an error notice, got %q", args, out)
		}
	}
	if n := len(c.tasks()); n != 0 {
		t.Errorf("rejected adds must not create tasks, got %d", n)
	}
}

func TestCompletionCommands(t *testing.T) {
	c := newCLI(t, "sqlite")
	c.run("add", "One")
	c.run("add", "Two")
	id := c.id(0)

	c.run("done", id)
	if !c.tasks()[0].Completed {
		t.Fatal("done did not complete the task")
	}
	if out := c.run("progress"); !strings.Contains(out, "1 / 2 tasks completed (50%)") {
		t.Errorf("unexpected progress output:\n%s", out)
	}

	c.run("undone", id)
	if c.tasks()[0].Completed {
		t.Fatal("undone did not reopen the task")
	}

	out := c.run("toggle", id)
	if !strings.Contains(out, "now done") {
		t.Errorf("unexpected toggle output %q", out)
	}

	if out := c.run("done", "abc"); !strings.Contains(out, "Error: invalid task ID 'abc'") {
		t.Errorf("unexpected output for bad id %q", out)
	}
	if out := c.run("done", "12345"); !strings.Contains(out, "task not found") {
		t.Errorf("unexpected output for unknown id %q", out)
	}
}

func TestEditSetRemove(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "Buy milk")
	id := c.id(0)

	c.run("edit", id, "Buy", "oat", "milk")
	c.run("set", id, "--priority", "medium", "--due", "2030-05-06", "--category", "shop")
	task := c.tasks()[0]
	if task.Text != "Buy oat milk" || task.Priority != models.PriorityMedium || task.DueDate != "2030-05-06" || task.Category != "shop" {
		t.Errorf("unexpected task after edit/set %+v", task)
	}

	c.run("set", id, "--due", "")
	if task := c.tasks()[0]; task.DueDate != "" || task.Category != "shop" {
		t.Errorf("clearing due should leave other fields: %+v", task)
	}

	if out := c.run("set", id); !strings.HasPrefix(out, "Error: ") {
		t.Errorf("set without flags should be rejected, got %q", out)
	}

	out := c.run("rm", id)
	if !strings.Contains(out, "Deleted task") {
		t.Errorf("unexpected rm output %q", out)
	}
	if n := len(c.tasks()); n != 0 {
		t.Errorf("expected empty list, got %d", n)
	}
}

func TestMoveAndSubtasks(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "A")
	c.run("add", "B")
	c.run("add", "C")

	c.run("mv", "3", "1")
	var order []string
	for _, task := range c.tasks() {
		order = append(order, task.Text)
	}
	if strings.Join(order, "") != "CAB" {
		t.Errorf("expected CAB, got %v", order)
	}
	if out := c.run("mv", "1", "9"); !strings.Contains(out, "index out of range") {
		t.Errorf("unexpected output for bad move %q", out)
	}

	id := c.id(0)
	c.run("sub", "add", id, "first")
	c.run("sub", "add", id, "second")
	c.run("sub", "done", id, "2")
	c.run("sub", "mv", id, "2", "1")

	subs := c.tasks()[0].Subtasks
	if len(subs) != 2 || subs[0].Text != "second" || !subs[0].Completed || subs[1].Completed {
		t.Fatalf("unexpected subtasks %+v", subs)
	}

	out := c.run("ls")
	if !strings.Contains(out, "1. [x] second") || !strings.Contains(out, "2. [ ] first") {
		t.Errorf("subtasks not nested in ls:\n%s", out)
	}

	c.run("sub", "undone", id, "1")
	c.run("sub", "rm", id, "2")
	subs = c.tasks()[0].Subtasks
	if len(subs) != 1 || subs[0].Text != "second" || subs[0].Completed {
		t.Errorf("unexpected subtasks after rm %+v", subs)
	}
	if out := c.run("sub", "rm", id, "5"); !strings.Contains(out, "index out of range") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestClearConfirmation(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "A")
	c.run("add", "B")

	out := c.runWithInput("n\n", "clear")
	if !strings.Contains(out, "Delete all 2 tasks? [y/N]") || !strings.Contains(out, "Cancelled.") {
		t.Errorf("unexpected clear output %q", out)
	}
	if n := len(c.tasks()); n != 2 {
		t.Fatalf("cancelled clear removed tasks, %d left", n)
	}

	c.runWithInput("y\n", "clear")
	if n := len(c.tasks()); n != 0 {
		t.Fatalf("expected empty list, got %d", n)
	}

	c.run("add", "C")
	c.run("clear", "--yes")
	if n := len(c.tasks()); n != 0 {
		t.Fatalf("clear --yes left %d tasks", n)
	}
}

func TestListFilters(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "Buy milk #home")
	c.run("add", "Write report #work")
	c.run("done", c.id(1))

	out := c.run("ls", "--pending")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Write report") {
		t.Errorf("unexpected --pending output:\n%s", out)
	}
	out = c.run("ls", "--category", "WORK")
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "Write report") {
		t.Errorf("unexpected --category output:\n%s", out)
	}
	if out := c.run("ls", "--pending", "--done"); !strings.HasPrefix(out, "Error: ") {
		t.Errorf("combined filters should be rejected, got %q", out)
	}
}

func TestSearchRanking(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "Buy milk")
	c.run("add", "milkshake")
	c.run("add", "milk")
	c.run("add", "Walk dog")

	var result struct {
		Count int           `json:"count"`
		Tasks []models.Task `json:"tasks"`
	}
	out := c.run("search", "MILK", "--json")
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to decode search output: %v\n%s", err, out)
	}
	if result.Count != 3 {
		t.Fatalf("expected 3 matches, got %d", result.Count)
	}
	got := []string{result.Tasks[0].Text, result.Tasks[1].Text, result.Tasks[2].Text}
	want := []string{"milk", "milkshake", "Buy milk"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExportImport(t *testing.T) {
	c := newCLI(t, "file")
	c.run("add", "Buy milk +high")
	c.run("sub", "add", c.id(0), "check fridge")

	path := filepath.Join(t.TempDir(), "backup.json")
	out := c.run("export", "json", "-o", path)
	if !strings.Contains(out, "Exported 1 tasks") {
		t.Errorf("unexpected export output %q", out)
	}

	c.run("clear", "--yes")
	out = c.run("import", path)
	if !strings.Contains(out, "Imported 1 tasks") {
		t.Errorf("unexpected import output %q", out)
	}
	tasks := c.tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" || len(tasks[0].Subtasks) != 1 {
		t.Errorf("unexpected tasks after import %+v", tasks)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"not": "a list"}`), 0644)
	if out := c.run("import", bad); !strings.HasPrefix(out, "Error: invalid task data") {
		t.Errorf("unexpected output for bad import %q", out)
	}
	if n := len(c.tasks()); n != 1 {
		t.Errorf("failed import must keep the list, got %d tasks", n)
	}

	if out := c.run("export", "yaml", "-o", "-"); !strings.Contains(out, "text: Buy milk") {
		t.Errorf("unexpected yaml export:\n%s", out)
	}
	if out := c.run("export", "csv"); !strings.HasPrefix(out, "Error: ") {
		t.Errorf("unknown format should be rejected, got %q", out)
	}
}

func TestProfileAndAssistant(t *testing.T) {
	c := newCLI(t, "file")

	if out := c.run("name"); !strings.Contains(out, "No name set") {
		t.Errorf("unexpected output %q", out)
	}
	c.run("name", "Ada")
	if out := c.run("name"); strings.TrimSpace(out) != "Ada" {
		t.Errorf("expected Ada, got %q", out)
	}

	if out := c.run("theme"); strings.TrimSpace(out) != "light" {
		t.Errorf("expected default light theme, got %q", out)
	}
	c.run("theme", "dark")
	if out := c.run("theme"); strings.TrimSpace(out) != "dark" {
		t.Errorf("expected dark theme, got %q", out)
	}
	if out := c.run("theme", "blue"); !strings.Contains(out, "Error: theme must be light or dark") {
		t.Errorf("unexpected output %q", out)
	}

	if out := c.run("ask", "how", "do", "I", "delete", "a", "task?"); !strings.Contains(out, "todo rm") {
		t.Errorf("unexpected answer %q", out)
	}
}

func TestHelpListsAssistantTopics(t *testing.T) {
	c := newCLI(t, "file")
	out := c.run("help")
	for _, want := range []string{"ASSISTANT TOPICS", "subtask      subtask, sub-task, checklist", "greeting     hello, hi, hey", "GLOBAL FLAGS"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q:\n%s", want, out)
		}
	}
}

func TestExportCompletesFormats(t *testing.T) {
	want := []string{"json", "yaml", "pdf", "word"}
	if got := exportCmd.ValidArgs; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected export formats %v, got %v", want, got)
	}
}

func TestConfigCommand(t *testing.T) {
	c := newCLI(t, "file")
	out := c.run("config")
	for _, want := range []string{"backend: file", "policy: tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}
