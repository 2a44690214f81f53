package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the stored due date format
const DateLayout = "2006-01-02"

var (
	isoDateRegex      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dayFirstDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex     = regexp.MustCompile(`^(\d+)\s*(d|day|days|w|week|weeks)$`)
)

// ParseDueDate parses various due date formats relative to now and returns YYYY-MM-DD.
// Supported formats:
// - yyyy-mm-dd (e.g., "2025-12-24")
// - dd/mm/yyyy (e.g., "24/12/2025")
// - today, tomorrow
// - X days (e.g., "3 days", "3days", "1 day")
// - X weeks (e.g., "2 weeks", "1w")
//
// Empty input means no due date.
func ParseDueDate(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", nil
	}

	if m := isoDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := dayFirstDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[3], m[2], m[1])
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch input {
	case "today":
		return today.Format(DateLayout), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout), nil
	}

	if dueDate, err := parseRelativeTime(input, today); err == nil {
		return dueDate, nil
	} else if relativeRegex.MatchString(input) {
		return "", err
	}

	return "", fmt.Errorf("invalid date format. Use: yyyy-mm-dd, dd/mm/yyyy, today, tomorrow, X days or X weeks")
}

func buildDate(y, m, d string) (string, error) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)

	// Validate date ranges
	if day < 1 || day > 31 {
		return "", fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month must be between 1 and 12")
	}
	if year < 1970 || year > 2100 {
		return "", fmt.Errorf("year must be between 1970 and 2100")
	}

	dueDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// Check if date is valid (handles leap years, etc.)
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) {
		return "", fmt.Errorf("invalid date")
	}

	return dueDate.Format(DateLayout), nil
}

// parseRelativeTime parses relative formats like "3 days" or "2w" counted from today
func parseRelativeTime(input string, today time.Time) (string, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return "", fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return "", fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "d", "day", "days":
		if amount < 0 || amount > 365 {
			return "", fmt.Errorf("days must be between 0 and 365")
		}
		return today.AddDate(0, 0, amount).Format(DateLayout), nil

	case "w", "week", "weeks":
		if amount < 1 || amount > 52 {
			return "", fmt.Errorf("weeks must be between 1 and 52")
		}
		return today.AddDate(0, 0, amount*7).Format(DateLayout), nil

	default:
		return "", fmt.Errorf("unsupported time unit")
	}
}

// FormatDueDate formats a stored YYYY-MM-DD due date for display relative to now
func FormatDueDate(dueDate string, now time.Time) string {
	if dueDate == "" {
		return ""
	}

	due, err := time.Parse(DateLayout, dueDate)
	if err != nil {
		// Imported data may carry anything; show it as is.
		return "Due " + dueDate
	}

	// Calendar days difference, computed in UTC so DST shifts don't matter
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysDiff := int(due.Sub(today).Hours() / 24)

	// Always show the actual date to avoid confusion
	dateStr := due.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}

// IsOverdue reports whether an incomplete task with dueDate is past due
func IsOverdue(dueDate string, now time.Time) bool {
	due, err := time.Parse(DateLayout, dueDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
