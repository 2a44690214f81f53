// Package chatbot answers how-do-I questions about the to-do list with canned replies.
package chatbot

import (
	"strings"
	"unicode"
)

// Rule maps trigger substrings to a reply
type Rule struct {
	Name     string
	Triggers []string
	Reply    string

	// WholeWord matches triggers against single words only, so "hi" stays out of "sushi"
	WholeWord bool
}

// Fallback is returned when no rule matches
const Fallback = "I can guide you: ask me how to add, edit, delete or complete tasks, add subtasks, " +
	"switch the theme, check your progress, or export and import your list."

// rules are checked in order; the first match wins, so the more specific
// ones (subtask before add, etc.) come first.
var rules = []Rule{
	{
		Name:      "greeting",
		Triggers:  []string{"hello", "hi", "hey"},
		Reply:     "Hi! Ask me how to add, edit, complete or export tasks.",
		WholeWord: true,
	},
	{
		Name:     "subtask",
		Triggers: []string{"subtask", "sub-task", "checklist"},
		Reply:    "Select a task and press 's' to add a subtask, or run: todo sub add <id> \"text\". Mark one done with: todo sub done <id> <n>.",
	},
	{
		Name:     "add",
		Triggers: []string{"add", "create", "new task"},
		Reply:    "Type your task into the input and press Enter: press 'a' in the list view, or run: todo add \"Buy milk +high #home due:2days\".",
	},
	{
		Name:     "edit",
		Triggers: []string{"edit", "rename", "change"},
		Reply:    "Select a task and press 'e' to edit its text, or run: todo edit <id> \"new text\". An empty edit keeps the old text.",
	},
	{
		Name:     "delete",
		Triggers: []string{"delete", "remove"},
		Reply:    "Select a task and press 'd' to delete it, or run: todo rm <id>.",
	},
	{
		Name:     "clear",
		Triggers: []string{"clear", "wipe"},
		Reply:    "Press 'c' in the list view and confirm with 'y', or run: todo clear. This removes every task.",
	},
	{
		Name:     "theme",
		Triggers: []string{"theme", "dark", "light"},
		Reply:    "Press 't' in the list view to switch between light and dark, or run: todo theme dark.",
	},
	{
		Name:     "progress",
		Triggers: []string{"progress", "completed", "complete", "done", "finish"},
		Reply:    "Press space on a task to mark it completed, or run: todo done <id>. The progress bar shows how many tasks are completed; see it any time with: todo progress.",
	},
	{
		Name:     "export",
		Triggers: []string{"export", "download", "pdf", "word", "backup"},
		Reply:    "Run: todo export json|yaml|pdf|word -o <file> to save your list.",
	},
	{
		Name:     "import",
		Triggers: []string{"import", "restore", "load"},
		Reply:    "Run: todo import <file.json> to replace your list with a JSON export. A broken file leaves your tasks untouched.",
	},
	{
		Name:     "due",
		Triggers: []string{"due", "date", "deadline"},
		Reply:    "Give a task a due date with due:YYYY-MM-DD or due:3days when adding it, or run: todo set <id> --due 2025-12-24.",
	},
	{
		Name:     "priority",
		Triggers: []string{"priority", "important", "urgent"},
		Reply:    "Add +low, +medium or +high when creating a task, or run: todo set <id> --priority high.",
	},
	{
		Name:     "help",
		Triggers: []string{"help", "what can you do", "commands"},
		Reply:    Fallback,
	},
}

// Rules returns the rule table in match order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Respond returns the reply of the first rule with a trigger contained in utterance
func Respond(utterance string) string {
	msg := strings.ToLower(strings.TrimSpace(utterance))
	if msg == "" {
		return Fallback
	}
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, r := range rules {
		for _, trigger := range r.Triggers {
			if r.WholeWord && words[trigger] || !r.WholeWord && strings.Contains(msg, trigger) {
				return r.Reply
			}
		}
	}
	return Fallback
}
