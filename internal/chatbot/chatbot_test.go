package chatbot

import (
	"strings"
	"testing"
)

func reply(t *testing.T, name string) string {
	t.Helper()
	for _, r := range Rules() {
		if r.Name == name {
			return r.Reply
		}
	}
	t.Fatalf("no rule named %q", name)
	return ""
}

func TestRespondAddQuestion(t *testing.T) {
	got := Respond("how do I add a task?")
	if got != reply(t, "add") {
		t.Fatalf("expected add reply, got %q", got)
	}
	if !strings.Contains(got, "input") {
		t.Errorf("add reply should mention the input, got %q", got)
	}
	if got == reply(t, "delete") || got == reply(t, "theme") {
		t.Error("add question answered with the wrong rule")
	}
}

func TestRespondRules(t *testing.T) {
	tests := []struct {
		utterance string
		rule      string
	}{
		{"HOW DO I ADD A TASK", "add"},
		{"can I edit something?", "edit"},
		{"delete this", "delete"},
		{"remove a task", "delete"},
		{"switch to dark mode", "theme"},
		{"change the theme", "edit"}, // "change" is an edit trigger and edit is checked first
		{"where is my progress", "progress"},
		{"how many are completed", "progress"},
		{"add a subtask", "subtask"},
		{"export to pdf", "export"},
		{"import my backup file", "export"}, // "backup" wins: export is checked before import
		{"import a file", "import"},
		{"set a deadline", "due"},
		{"hi", "greeting"},
		{"hello there", "greeting"},
		{"hey!", "greeting"},
		{"can they delete a task?", "delete"},
		{"my sushi task, how to delete it", "delete"},
		{"which theme is on", "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			if got := Respond(tt.utterance); got != reply(t, tt.rule) {
				t.Errorf("Respond(%q) = %q, want %s rule", tt.utterance, got, tt.rule)
			}
		})
	}
}

func TestRespondFallback(t *testing.T) {
	for _, in := range []string{"", "   ", "what is the weather", "xyz"} {
		got := Respond(in)
		if got != Fallback {
			t.Errorf("Respond(%q) = %q, want fallback", in, got)
		}
		if !strings.HasPrefix(got, "I can guide you:") {
			t.Errorf("fallback should start with guidance, got %q", got)
		}
	}
}

func TestRespondIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Respond("export") != reply(t, "export") {
			t.Fatal("responses changed between calls")
		}
	}
}
