package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/storage"
	"github.com/balkashynov/todo/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// harness drives a ListModel the way tea.Program would: commands run to
// completion, store notifications are delivered before the command's result.
type harness struct {
	t       *testing.T
	store   *store.Store
	model   ListModel
	pending []tea.Msg
}

func newHarness(t *testing.T, username string) *harness {
	t.Helper()

	tick := testNow
	s, err := store.New(storage.NewMemory(), store.WithClock(func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if username != "" {
		if err := s.SetUsername(username); err != nil {
			t.Fatalf("SetUsername: %v", err)
		}
	}

	m, err := NewListModel(s, progress.PolicyTasks)
	if err != nil {
		t.Fatalf("NewListModel: %v", err)
	}
	m.now = func() time.Time { return testNow }

	h := &harness{t: t, store: s, model: m}
	cancel := Watch(s, func(msg tea.Msg) { h.pending = append(h.pending, msg) })
	t.Cleanup(cancel)

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(ListModel)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	h.flush()
	if _, quit := msg.(tea.QuitMsg); quit || msg == nil {
		return
	}
	h.send(msg)
}

// flush delivers queued store notifications
func (h *harness) flush() {
	pending := h.pending
	h.pending = nil
	for _, msg := range pending {
		h.send(msg)
	}
}

func (h *harness) key(k string) {
	h.t.Helper()
	switch k {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "space":
		h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	case "ctrl+u":
		h.send(tea.KeyMsg{Type: tea.KeyCtrlU})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) seed(texts ...string) {
	h.t.Helper()
	for _, text := range texts {
		if _, err := h.store.Add(store.AddInput{Text: text}); err != nil {
			h.t.Fatalf("Add: %v", err)
		}
	}
	h.flush()
}

func TestUsernamePrompt(t *testing.T) {
	h := newHarness(t, "")
	if h.model.mode != ModeUsername {
		t.Fatalf("expected username prompt, got mode %d", h.model.mode)
	}

	h.key("enter")
	if h.model.mode != ModeUsername {
		t.Fatal("blank name should keep the prompt open")
	}

	h.typeText("Ada")
	h.key("enter")

	name, ok, err := h.store.Username()
	if err != nil || !ok || name != "Ada" {
		t.Fatalf("expected stored name Ada, got %q %v %v", name, ok, err)
	}
	if h.model.mode != ModeList {
		t.Errorf("expected list mode after naming, got %d", h.model.mode)
	}
	if !strings.Contains(h.model.View(), "Hello, Ada!") {
		t.Error("greeting should use the stored name")
	}
}

func TestUsernamePromptSkipped(t *testing.T) {
	h := newHarness(t, "")
	h.key("esc")

	if h.model.mode != ModeList {
		t.Fatalf("expected list mode, got %d", h.model.mode)
	}
	if _, ok, _ := h.store.Username(); ok {
		t.Error("skipping the prompt should not store a name")
	}
	if !strings.Contains(h.model.View(), "Hello!") {
		t.Error("expected generic greeting")
	}
}

func TestAddTask(t *testing.T) {
	h := newHarness(t, "Ada")

	h.key("a")
	if h.model.mode != ModeAdd {
		t.Fatalf("expected add mode, got %d", h.model.mode)
	}
	h.typeText("Buy milk +high #home due:2days")
	h.key("enter")

	tasks := h.store.Snapshot()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Text != "Buy milk" || got.Priority != models.PriorityHigh || got.Category != "home" || got.DueDate != "2025-03-12" {
		t.Errorf("unexpected task %+v", got)
	}
	if len(h.model.tasks) != 1 {
		t.Errorf("view did not receive the change notification")
	}
	if h.model.status != "Added: Buy milk" {
		t.Errorf("unexpected status %q", h.model.status)
	}

	view := h.model.View()
	for _, want := range []string{"Buy milk", "!high", "#home", "0 / 1 tasks completed (0%)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestAddBlankTask(t *testing.T) {
	h := newHarness(t, "Ada")

	h.key("a")
	h.typeText("   ")
	h.key("enter")

	if h.store.Len() != 0 {
		t.Fatalf("blank input must not create a task, got %d", h.store.Len())
	}
	if !h.model.isErr {
		t.Error("expected an error notice")
	}
}

func TestAddInvalidSyntaxKeepsInput(t *testing.T) {
	h := newHarness(t, "Ada")

	h.key("a")
	h.typeText("Plan trip +urgent")
	h.key("enter")

	if h.store.Len() != 0 {
		t.Fatal("invalid priority should not create a task")
	}
	if h.model.mode != ModeAdd || h.model.input.Value() != "Plan trip +urgent" {
		t.Errorf("expected the input to stay open with the text, got mode %d %q", h.model.mode, h.model.input.Value())
	}
}

func TestToggleAndProgress(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("A", "B", "C")

	h.key("j")
	h.key("space")

	tasks := h.store.Snapshot()
	if !tasks[1].Completed || tasks[0].Completed || tasks[2].Completed {
		t.Fatalf("expected only B completed, got %+v", tasks)
	}
	if !strings.Contains(h.model.View(), "1 / 3 tasks completed (33%)") {
		t.Error("expected progress line in view")
	}

	h.key("space")
	if h.store.Snapshot()[1].Completed {
		t.Error("second toggle should reopen the task")
	}
}

func TestEditTask(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("Buy milk")

	h.key("e")
	if h.model.input.Value() != "Buy milk" {
		t.Fatalf("edit input should be prefilled, got %q", h.model.input.Value())
	}
	h.key("ctrl+u")
	h.typeText("Buy oat milk")
	h.key("enter")

	if got := h.store.Snapshot()[0].Text; got != "Buy oat milk" {
		t.Errorf("expected edited text, got %q", got)
	}

	// An emptied edit keeps the old text
	h.key("e")
	h.key("ctrl+u")
	h.key("enter")
	if got := h.store.Snapshot()[0].Text; got != "Buy oat milk" {
		t.Errorf("blank edit changed text to %q", got)
	}
}

func TestDeleteTask(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("A", "B")

	h.key("j")
	h.key("d")

	tasks := h.store.Snapshot()
	if len(tasks) != 1 || tasks[0].Text != "A" {
		t.Fatalf("expected only A left, got %+v", tasks)
	}
	if h.model.selected != 0 {
		t.Errorf("selection should be clamped, got %d", h.model.selected)
	}
}

func TestReorderKeys(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("A", "B", "C")

	h.key("J")
	if got := texts(h.store.Snapshot()); got != "B,A,C" {
		t.Fatalf("expected B,A,C, got %s", got)
	}
	if h.model.selected != 1 {
		t.Errorf("selection should follow the moved task, got %d", h.model.selected)
	}

	h.key("J")
	h.key("J") // already last: no-op
	if got := texts(h.store.Snapshot()); got != "B,C,A" {
		t.Fatalf("expected B,C,A, got %s", got)
	}

	h.key("K")
	if got := texts(h.store.Snapshot()); got != "B,A,C" {
		t.Errorf("expected B,A,C, got %s", got)
	}
}

func TestSubtaskKeys(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("Trip")

	h.key("s")
	h.typeText("Book hotel")
	h.key("enter")

	task := h.store.Snapshot()[0]
	if len(task.Subtasks) != 1 || task.Subtasks[0].Text != "Book hotel" {
		t.Fatalf("expected subtask, got %+v", task.Subtasks)
	}

	h.key("1")
	if !h.store.Snapshot()[0].Subtasks[0].Completed {
		t.Error("'1' should toggle the first subtask")
	}
	h.key("2") // no second subtask
	if !strings.Contains(h.model.View(), "1. [x]") {
		t.Error("expected completed subtask row in view")
	}
}

func TestClearAll(t *testing.T) {
	h := newHarness(t, "Ada")
	h.seed("A", "B")

	h.key("c")
	h.key("n")
	if h.store.Len() != 2 {
		t.Fatal("declined confirmation must not clear")
	}

	h.key("c")
	if h.model.mode != ModeConfirmClear {
		t.Fatalf("expected confirmation mode, got %d", h.model.mode)
	}
	h.key("y")
	if h.store.Len() != 0 || len(h.model.tasks) != 0 {
		t.Fatal("expected all tasks cleared")
	}
	if !strings.Contains(h.model.View(), "No tasks yet") {
		t.Error("expected empty state")
	}
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t, "Ada")
	if h.model.theme != store.ThemeLight {
		t.Fatalf("expected light default, got %s", h.model.theme)
	}

	h.key("t")
	if h.store.Theme() != store.ThemeDark || h.model.palette.Name != store.ThemeDark {
		t.Errorf("expected dark theme saved and applied, got %s / %s", h.store.Theme(), h.model.palette.Name)
	}

	h.key("t")
	if h.store.Theme() != store.ThemeLight {
		t.Errorf("expected light theme, got %s", h.store.Theme())
	}
}

func TestExternalChangesRerender(t *testing.T) {
	h := newHarness(t, "Ada")

	// A mutation from another surface reaches the view through the subscription
	if _, err := h.store.Add(store.AddInput{Text: "From the API"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	h.flush()

	if len(h.model.tasks) != 1 || !strings.Contains(h.model.View(), "From the API") {
		t.Error("expected the view to pick up the new task")
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, "Ada")

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewBeforeResize(t *testing.T) {
	s, _ := store.New(storage.NewMemory())
	m, err := NewListModel(s, progress.PolicyTasks)
	if err != nil {
		t.Fatalf("NewListModel: %v", err)
	}
	if m.View() != "Loading..." {
		t.Errorf("unexpected view %q", m.View())
	}
}

func texts(tasks []models.Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return strings.Join(out, ",")
}
