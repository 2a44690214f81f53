package models

import (
	"strings"
)

// Priority is the string-valued importance of a task. The zero value means unset.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts user input to a Priority.
// Accepts low/medium/med/high or 1/2/3, case-insensitive; empty input means no priority.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityNone, true
	case "low", "1":
		return PriorityLow, true
	case "medium", "med", "2":
		return PriorityMedium, true
	case "high", "3":
		return PriorityHigh, true
	default:
		return PriorityNone, false
	}
}

// Rank orders priorities for display: high=3, medium=2, low=1, unset=0
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Subtask is a nested checklist item owned by exactly one Task
type Subtask struct {
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Task represents one to-do entry
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Completed bool      `json:"completed" yaml:"completed"`
	Priority  Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate   string    `json:"dueDate,omitempty" yaml:"dueDate,omitempty"` // YYYY-MM-DD
	Category  string    `json:"category,omitempty" yaml:"category,omitempty"`
	Subtasks  []Subtask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// Clone returns a copy that shares no memory with t
func (t Task) Clone() Task {
	c := t
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	return c
}

// SubtasksDone reports how many subtasks are completed
func (t Task) SubtasksDone() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			n++
		}
	}
	return n
}

// CloneTasks deep-copies a task slice. A nil input yields an empty, non-nil slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
