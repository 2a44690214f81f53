package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/todo/internal/models"
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Text     string
	Category string
	Priority models.Priority
	DueDate  string // YYYY-MM-DD
	Errors   []string
}

var (
	categoryRegex = regexp.MustCompile(`(^|\s)#([\p{L}0-9_-]+)`)
	priorityRegex = regexp.MustCompile(`(^|\s)\+([a-zA-Z0-9]+)`)
	dueRegex      = regexp.MustCompile(`(^|\s)due:([^\s]+)`)
)

// ParseTitle extracts metadata from a task text using natural syntax
// Syntax: "Task text #category +priority due:3days"
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Text:   input,
		Errors: []string{},
	}

	// Extract category (#home); the first one wins
	if m := categoryRegex.FindStringSubmatch(input); m != nil {
		result.Category = m[2]
		input = categoryRegex.ReplaceAllString(input, "$1")
	}

	// Extract priority (+high, +3, +medium, etc.)
	if m := priorityRegex.FindStringSubmatch(input); m != nil {
		if p, ok := models.ParsePriority(m[2]); ok {
			result.Priority = p
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[2]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, "$1")
	}

	// Extract due date (due:3days, due:2025-12-24, due:24/12/2025)
	if m := dueRegex.FindStringSubmatch(input); m != nil {
		dueDate, err := ParseDueDate(m[2], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[2]+"': "+err.Error())
		} else {
			result.DueDate = dueDate
		}
		input = dueRegex.ReplaceAllString(input, "$1")
	}

	// Clean up the text (remove extra spaces)
	result.Text = strings.Join(strings.Fields(input), " ")

	return result
}
