package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todo/internal/chatbot"
	"github.com/balkashynov/todo/internal/store"
	"github.com/balkashynov/todo/internal/tui"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the built-in assistant a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), chatbot.Respond(joinArgs(args)))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the built-in assistant",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		name, _, err := s.Username()
		if err != nil {
			return err
		}
		return tui.RunChatTUI(name, s.Theme())
	}),
}

var nameCmd = &cobra.Command{
	Use:   "name [name]",
	Short: "Show or set the name used in greetings",
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			name, ok, err := s.Username()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "No name set. Use 'todo name <name>' to set one.")
				return nil
			}
			fmt.Fprintln(out, name)
			return nil
		}

		if err := s.SetUsername(joinArgs(args)); err != nil {
			return err
		}
		fmt.Fprintf(out, "👋 Hello, %s!\n", joinArgs(args))
		return nil
	}),
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{store.ThemeLight, store.ThemeDark},
	RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), s.Theme())
			return nil
		}
		if err := s.SetTheme(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", s.Theme())
		return nil
	}),
}
