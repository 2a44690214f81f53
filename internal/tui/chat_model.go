package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/todo/internal/chatbot"
)

type chatLine struct {
	fromUser bool
	text     string
}

// ChatModel is a scrollback of questions and canned answers
type ChatModel struct {
	respond func(string) string
	palette Palette

	width  int
	height int

	lines []chatLine
	input textinput.Model
	view  viewport.Model
}

// NewChatModel creates the assistant view
func NewChatModel(username string, palette Palette) ChatModel {
	greeting := "Hi! Ask me how to use your to-do list."
	if username != "" {
		greeting = "Hi " + username + "! Ask me how to use your to-do list."
	}

	input := newInput(palette)
	input.Placeholder = "How do I add a task?"
	input.Focus()

	return ChatModel{
		respond: chatbot.Respond,
		palette: palette,
		lines:   []chatLine{{text: greeting}},
		input:   input,
		view:    viewport.New(0, 0),
	}
}

// Init initializes the model
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = max(msg.Width-2, 10)
		m.view.Height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.lines = append(m.lines,
				chatLine{fromUser: true, text: question},
				chatLine{text: m.respond(question)},
			)
			m.input.Reset()
			m.refresh()
			return m, nil

		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-renders the scrollback and sticks to the newest message
func (m *ChatModel) refresh() {
	if m.width == 0 {
		return
	}
	m.view.SetContent(m.renderLines())
	m.view.GotoBottom()
}

func (m ChatModel) renderLines() string {
	p := m.palette
	bubbleWidth := max(m.width*2/3, 20)

	var rendered []string
	for _, line := range m.lines {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
		if line.fromUser {
			style = style.
				BorderForeground(lipgloss.Color(p.AccentMain)).
				Foreground(lipgloss.Color(p.PrimaryText))
		} else {
			style = style.
				BorderForeground(lipgloss.Color(p.Border)).
				Foreground(lipgloss.Color(p.SecondaryText))
		}
		if lipgloss.Width(line.text)+4 > bubbleWidth {
			style = style.Width(bubbleWidth)
		}

		bubble := style.Render(line.text)
		if line.fromUser {
			bubble = lipgloss.PlaceHorizontal(m.view.Width, lipgloss.Right, bubble)
		}
		rendered = append(rendered, bubble)
	}
	return strings.Join(rendered, "\n")
}

// View renders the TUI
func (m ChatModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	p := m.palette
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.AccentMain)).Render("To-Do Assistant")
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.HelpText)).
		Italic(true).
		Render("enter send · ↑/↓ pgup/pgdn scroll · esc quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.view.View(),
		m.input.View(),
		help,
	)
}
