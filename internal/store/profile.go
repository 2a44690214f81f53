package store

import (
	"fmt"
	"strings"

	"github.com/balkashynov/todo/internal/storage"
)

// Username returns the stored display name, if one was ever set
func (s *Store) Username() (string, bool, error) {
	name, ok, err := s.backend.Get(storage.KeyUsername)
	if err != nil {
		return "", false, fmt.Errorf("failed to load username: %w", err)
	}
	name = strings.TrimSpace(name)
	return name, ok && name != "", nil
}

// SetUsername stores the display name used in greetings
func (s *Store) SetUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyText
	}
	if err := s.backend.Set(storage.KeyUsername, name); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}

// Theme returns the saved theme, light when unset or unreadable
func (s *Store) Theme() string {
	theme, ok, err := s.backend.Get(storage.KeyTheme)
	if err != nil || !ok {
		return ThemeLight
	}
	if theme != ThemeDark {
		return ThemeLight
	}
	return theme
}

// SetTheme saves light or dark
func (s *Store) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return ErrInvalidTheme
	}
	if err := s.backend.Set(storage.KeyTheme, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
