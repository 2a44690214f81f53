package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/parser"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

// Mode represents what the list view does with key input
type Mode int

const (
	ModeList Mode = iota
	ModeAdd
	ModeEdit
	ModeSubtask
	ModeConfirmClear
	ModeUsername
)

var inputPrompts = map[Mode]struct{ label, placeholder string }{
	ModeAdd:      {"New task", "Buy milk +high #home due:2days"},
	ModeEdit:     {"Edit task", "New text (empty keeps the old one)"},
	ModeSubtask:  {"New subtask", "Subtask text"},
	ModeUsername: {"What's your name?", "Your name"},
}

// TasksChangedMsg carries a fresh snapshot after a store mutation
type TasksChangedMsg struct {
	Tasks []models.Task
}

// opResultMsg reports the outcome of a store operation run as a tea.Cmd
type opResultMsg struct {
	notice  string
	err     error
	focusID int64
}

type usernameSavedMsg struct {
	name string
	err  error
}

type themeSavedMsg struct {
	theme string
	err   error
}

// Watch forwards store change notifications to send, normally tea.Program.Send.
// Store operations must then run inside tea.Cmds, never directly in Update.
func Watch(s *store.Store, send func(tea.Msg)) (cancel func()) {
	return s.Subscribe(func(tasks []models.Task) {
		send(TasksChangedMsg{Tasks: tasks})
	})
}

// ListModel represents the interactive task list
type ListModel struct {
	store  *store.Store
	policy progress.Policy
	now    func() time.Time

	width  int
	height int

	// Task data, replaced wholesale on every TasksChangedMsg
	tasks    []models.Task
	selected int

	// UI state
	mode     Mode
	targetID int64 // task being edited or receiving a subtask
	input    textinput.Model
	bar      bprogress.Model
	status   string
	isErr    bool

	username string
	theme    string
	palette  Palette
}

// NewListModel creates the list view over s. It prompts for a name when none is stored.
func NewListModel(s *store.Store, policy progress.Policy) (ListModel, error) {
	name, ok, err := s.Username()
	if err != nil {
		return ListModel{}, err
	}

	theme := s.Theme()
	m := ListModel{
		store:    s,
		policy:   policy,
		now:      time.Now,
		tasks:    s.Snapshot(),
		username: name,
		theme:    theme,
		palette:  PaletteFor(theme),
	}
	m.input = newInput(m.palette)
	m.bar = newBar(m.palette, 0)

	if !ok {
		m, _ = m.startInput(ModeUsername, "")
	}
	return m, nil
}

func newInput(p Palette) textinput.Model {
	in := textinput.New()
	in.CharLimit = 200
	in.Width = 60
	in.Prompt = "> "
	// Static cursor: no blink timers
	in.Cursor.SetMode(cursor.CursorStatic)
	styleInput(&in, p)
	return in
}

func styleInput(in *textinput.Model, p Palette) {
	in.TextStyle = p.fg(p.PrimaryText)
	in.PlaceholderStyle = p.fg(p.SecondaryText)
	in.PromptStyle = p.fg(p.AccentBright)
	in.Cursor.Style = p.fg(p.AccentBright)
}

func newBar(p Palette, width int) bprogress.Model {
	bar := bprogress.New(
		bprogress.WithGradient(p.AccentMain, p.AccentBright),
		bprogress.WithoutPercentage(),
	)
	if width > 0 {
		bar.Width = width
	}
	return bar
}

// Init initializes the model
func (m ListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width/3, 10)
		m.input.Width = max(msg.Width-24, 10)
		return m, nil

	case TasksChangedMsg:
		m.tasks = msg.Tasks
		m.clampSelection()
		return m, nil

	case opResultMsg:
		m.setStatus(msg.notice, msg.err)
		if msg.focusID != 0 {
			m.focus(msg.focusID)
		}
		return m, nil

	case usernameSavedMsg:
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m.startInput(ModeUsername, "")
		}
		m.username = msg.name
		m.setStatus("Welcome, "+msg.name+"!", nil)
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		m.theme = msg.theme
		m.palette = PaletteFor(msg.theme)
		m.bar = newBar(m.palette, m.bar.Width)
		styleInput(&m.input, m.palette)
		m.setStatus("Switched to "+msg.theme+" theme", nil)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeList:
			return m.handleListKeys(msg)
		case ModeConfirmClear:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleInputKeys(msg)
		}
	}

	return m, nil
}

// handleListKeys handles key input while browsing
func (m ListModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.tasks)-1 {
			m.selected++
		}
		return m, nil

	case "a":
		return m.startInput(ModeAdd, "")

	case "c":
		if len(m.tasks) > 0 {
			m.mode = ModeConfirmClear
		}
		return m, nil

	case "t":
		next := OtherTheme(m.theme)
		s := m.store
		return m, func() tea.Msg {
			return themeSavedMsg{theme: next, err: s.SetTheme(next)}
		}
	}

	t, ok := m.current()
	if !ok {
		return m, nil
	}
	id := t.ID

	switch key {
	case " ", "space":
		return m, m.op(func(s *store.Store) opResultMsg {
			t, err := s.Toggle(id)
			if err != nil {
				return opResultMsg{err: err}
			}
			if t.Completed {
				return opResultMsg{notice: "Completed: " + t.Text}
			}
			return opResultMsg{notice: "Reopened: " + t.Text}
		})

	case "e":
		m.targetID = id
		return m.startInput(ModeEdit, t.Text)

	case "s":
		m.targetID = id
		return m.startInput(ModeSubtask, "")

	case "d":
		text := t.Text
		return m, m.op(func(s *store.Store) opResultMsg {
			if err := s.Delete(id); err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{notice: "Deleted: " + text}
		})

	case "K", "J":
		to := m.selected - 1
		if key == "J" {
			to = m.selected + 1
		}
		if to < 0 || to >= len(m.tasks) {
			return m, nil
		}
		from := m.selected
		return m, m.op(func(s *store.Store) opResultMsg {
			if err := s.Reorder(from, to); err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{focusID: id}
		})

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		index := int(key[0] - '1')
		if index >= len(t.Subtasks) {
			return m, nil
		}
		value := !t.Subtasks[index].Completed
		return m, m.op(func(s *store.Store) opResultMsg {
			if _, err := s.SetSubtaskCompleted(id, index, value); err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{}
		})
	}

	return m, nil
}

// handleConfirmKeys handles the clear-all confirmation
func (m ListModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeList
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus("Clear cancelled", nil)
		return m, nil
	}
	return m, m.op(func(s *store.Store) opResultMsg {
		if err := s.ClearAll(); err != nil {
			return opResultMsg{err: err}
		}
		return opResultMsg{notice: "All tasks cleared"}
	})
}

// handleInputKeys handles key input while a text field is open
func (m ListModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == ModeUsername {
			m.setStatus("You can set your name later with: todo name <name>", nil)
		}
		m.mode = ModeList
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ListModel) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	mode := m.mode
	id := m.targetID
	m.mode = ModeList
	m.input.Blur()

	switch mode {
	case ModeAdd:
		parsed := parser.ParseTitle(value, m.now())
		if len(parsed.Errors) > 0 {
			m.setStatus("", errors.New(parsed.Errors[0]))
			return m.startInput(ModeAdd, value)
		}
		in := store.AddInput{
			Text:     parsed.Text,
			Priority: parsed.Priority,
			DueDate:  parsed.DueDate,
			Category: parsed.Category,
		}
		return m, m.op(func(s *store.Store) opResultMsg {
			t, err := s.Add(in)
			if err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{notice: "Added: " + t.Text, focusID: t.ID}
		})

	case ModeEdit:
		return m, m.op(func(s *store.Store) opResultMsg {
			t, err := s.Edit(id, value)
			if err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{notice: "Updated: " + t.Text}
		})

	case ModeSubtask:
		return m, m.op(func(s *store.Store) opResultMsg {
			t, err := s.AddSubtask(id, value)
			if err != nil {
				return opResultMsg{err: err}
			}
			return opResultMsg{notice: fmt.Sprintf("Subtask added to %q", t.Text)}
		})

	case ModeUsername:
		name := strings.TrimSpace(value)
		if name == "" {
			m.setStatus("Please enter a name, or press esc to skip", nil)
			return m.startInput(ModeUsername, "")
		}
		s := m.store
		return m, func() tea.Msg {
			return usernameSavedMsg{name: name, err: s.SetUsername(name)}
		}
	}

	return m, nil
}

// op runs fn against the store off the update loop
func (m ListModel) op(fn func(s *store.Store) opResultMsg) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return fn(s)
	}
}

func (m ListModel) startInput(mode Mode, value string) (ListModel, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = inputPrompts[mode].placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m ListModel) current() (models.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.selected], true
}

func (m *ListModel) clampSelection() {
	if m.selected >= len(m.tasks) {
		m.selected = len(m.tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *ListModel) focus(id int64) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.selected = i
			return
		}
	}
}

func (m *ListModel) setStatus(notice string, err error) {
	if err == nil {
		m.status = notice
		m.isErr = false
		return
	}
	m.isErr = true
	switch {
	case errors.Is(err, store.ErrEmptyText):
		m.status = "Text can't be empty"
	case errors.Is(err, store.ErrNotFound):
		m.status = "That task no longer exists"
	default:
		m.status = "Error: " + err.Error()
	}
}

// View renders the TUI
func (m ListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	p := m.palette
	var b strings.Builder

	// Greeting
	greeting := "Hello!"
	if m.username != "" {
		greeting = "Hello, " + m.username + "!"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.AccentMain)).Render(greeting))
	b.WriteString("  ")
	b.WriteString(p.fg(p.HelpText).Render("To-Do List · " + m.theme + " theme"))
	b.WriteString("\n\n")

	// Progress
	prog := progress.Compute(m.tasks, m.policy)
	b.WriteString(m.bar.ViewAs(prog.Ratio()))
	b.WriteString(" ")
	b.WriteString(p.fg(p.SecondaryText).Render(prog.String()))
	b.WriteString("\n\n")

	b.WriteString(m.renderTasks())

	switch m.mode {
	case ModeList:
	case ModeConfirmClear:
		b.WriteString("\n")
		b.WriteString(p.fg(p.Warning).Bold(true).Render("Clear all tasks? This cannot be undone. (y/N)"))
	default:
		b.WriteString("\n")
		b.WriteString(p.fg(p.AccentBright).Bold(true).Render(inputPrompts[m.mode].label))
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	if m.status != "" {
		color := p.Success
		if m.isErr {
			color = p.Error
		}
		b.WriteString("\n\n")
		b.WriteString(p.fg(color).Render(m.status))
	}

	outerBorderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Border)).
		Padding(0, 1).
		Width(max(m.width-2, 20))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		outerBorderStyle.Render(b.String()),
		m.renderHelpBar(),
	)
}

// renderTasks renders one row per task with its subtasks nested below
func (m ListModel) renderTasks() string {
	p := m.palette
	if len(m.tasks) == 0 {
		return p.fg(p.SecondaryText).Italic(true).Render("No tasks yet. Press 'a' to add one.") + "\n"
	}

	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		isSelected := i == m.selected && m.mode != ModeUsername

		cursorMark := "  "
		if isSelected {
			cursorMark = p.fg(p.AccentMain).Bold(true).Render("› ")
		}

		check := "[ ]"
		textStyle := p.fg(p.PrimaryText)
		if t.Completed {
			check = p.fg(p.Success).Render("[x]")
			textStyle = p.fg(p.DisabledText).Strikethrough(true)
		}
		if isSelected {
			textStyle = textStyle.Bold(true)
		}

		b.WriteString(cursorMark + check + " " + textStyle.Render(t.Text))

		if t.Priority != models.PriorityNone {
			color := p.SecondaryText
			switch t.Priority {
			case models.PriorityHigh:
				color = p.Error
			case models.PriorityMedium:
				color = p.Warning
			}
			b.WriteString("  " + p.fg(color).Render("!"+string(t.Priority)))
		}
		if t.DueDate != "" {
			color := p.SecondaryText
			if !t.Completed && parser.IsOverdue(t.DueDate, now) {
				color = p.Error
			}
			b.WriteString("  " + p.fg(color).Render(parser.FormatDueDate(t.DueDate, now)))
		}
		if t.Category != "" {
			b.WriteString("  " + p.fg(p.AccentBright).Render("#"+t.Category))
		}
		b.WriteString("\n")

		for j, sub := range t.Subtasks {
			subCheck := "[ ]"
			subStyle := p.fg(p.SecondaryText)
			if sub.Completed {
				subCheck = "[x]"
				subStyle = p.fg(p.DisabledText).Strikethrough(true)
			}
			b.WriteString(fmt.Sprintf("      %d. %s %s\n", j+1, subCheck, subStyle.Render(sub.Text)))
		}
	}
	return b.String()
}

// renderHelpBar renders the help bar with hotkey hints
func (m ListModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.HelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	var helpText string
	switch m.mode {
	case ModeList:
		helpText = "↑/↓ move · space toggle · 1-9 subtask · a add · e edit · s subtask · d delete · K/J reorder · t theme · c clear · q quit"
	case ModeConfirmClear:
		helpText = "y confirm · any other key cancels"
	default:
		helpText = "enter save · esc cancel"
	}
	return helpStyle.Render(helpText)
}
