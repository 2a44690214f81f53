package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

// RunListTUI starts the interactive task list over s
func RunListTUI(s *store.Store, policy progress.Policy) error {
	model, err := NewListModel(s, policy)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	cancel := Watch(s, p.Send)
	defer cancel()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Handle exit messages after TUI closes
	if m, ok := finalModel.(ListModel); ok {
		prog := progress.Compute(m.tasks, m.policy)
		fmt.Printf("👋 Bye%s! %s\n", nameSuffix(m.username), prog)
	}
	return nil
}

// RunChatTUI starts the assistant REPL
func RunChatTUI(username string, theme string) error {
	p := tea.NewProgram(NewChatModel(username, PaletteFor(theme)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func nameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return ", " + name
}
