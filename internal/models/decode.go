package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports an import document that is not a sequence of task-shaped records.
// The collection it was meant to replace is never touched.
type ParseError struct {
	Index  int // offending record, -1 for the document itself
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "invalid task data"
	if e.Index >= 0 {
		msg = fmt.Sprintf("invalid task at position %d", e.Index+1)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// wireTask mirrors Task with pointer fields so missing and mistyped values can be told apart.
// Older exports used "tag" instead of "category".
type wireTask struct {
	ID        json.RawMessage `json:"id"`
	Text      *string         `json:"text"`
	Completed *bool           `json:"completed"`
	Priority  *string         `json:"priority"`
	DueDate   *string         `json:"dueDate"`
	Category  *string         `json:"category"`
	Tag       *string         `json:"tag"`
	Subtasks  []Subtask       `json:"subtasks"`
}

// DecodeTasks parses a JSON array of task records.
// Absent optional fields take their defaults; an unknown priority is dropped.
func DecodeTasks(data []byte) ([]Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Index: -1, Reason: "expected a JSON array of tasks"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}

	tasks := make([]Task, 0, len(raw))
	for i, item := range raw {
		task, err := decodeTask(i, item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := ValidateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func decodeTask(i int, item json.RawMessage) (Task, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return Task{}, &ParseError{Index: i, Reason: "not an object"}
	}

	var w wireTask
	if err := json.Unmarshal(item, &w); err != nil {
		return Task{}, &ParseError{Index: i, Err: err}
	}

	if len(w.ID) == 0 || string(w.ID) == "null" {
		return Task{}, &ParseError{Index: i, Reason: "missing id"}
	}
	id, err := strconv.ParseInt(string(w.ID), 10, 64)
	if err != nil {
		return Task{}, &ParseError{Index: i, Reason: "id must be an integer"}
	}
	if w.Text == nil {
		return Task{}, &ParseError{Index: i, Reason: "missing text"}
	}

	task := Task{
		ID:       id,
		Text:     *w.Text,
		Subtasks: w.Subtasks,
	}
	if w.Completed != nil {
		task.Completed = *w.Completed
	}
	if w.Priority != nil {
		if p, ok := ParsePriority(*w.Priority); ok {
			task.Priority = p
		}
	}
	if w.DueDate != nil {
		task.DueDate = strings.TrimSpace(*w.DueDate)
	}
	switch {
	case w.Category != nil:
		task.Category = strings.TrimSpace(*w.Category)
	case w.Tag != nil:
		task.Category = strings.TrimSpace(*w.Tag)
	}
	return task, nil
}

// ValidateTasks checks the collection-level invariants: non-blank text and unique ids.
func ValidateTasks(tasks []Task) error {
	seen := make(map[int64]bool, len(tasks))
	for i, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			return &ParseError{Index: i, Reason: "text is empty"}
		}
		if seen[t.ID] {
			return &ParseError{Index: i, Reason: fmt.Sprintf("duplicate id %d", t.ID)}
		}
		seen[t.ID] = true
	}
	return nil
}
