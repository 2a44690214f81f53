package progress

import (
	"fmt"
	"math"
	"strings"

	"github.com/balkashynov/todo/internal/models"
)

// Policy decides what counts as a unit of work
type Policy string

const (
	// PolicyTasks counts top-level tasks only
	PolicyTasks Policy = "tasks"
	// PolicySubtasks counts every task and every subtask as one unit
	PolicySubtasks Policy = "subtasks"
	// PolicyRollup counts top-level tasks; a task with subtasks is done when
	// its own flag is set or all of its subtasks are done
	PolicyRollup Policy = "rollup"
)

// Policies lists the accepted policy names
var Policies = []Policy{PolicyTasks, PolicySubtasks, PolicyRollup}

// ParsePolicy converts a config or flag value; empty means PolicyTasks
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyTasks, nil
	case PolicyTasks, PolicySubtasks, PolicyRollup:
		return p, nil
	default:
		return "", fmt.Errorf("unknown progress policy %q (use tasks, subtasks or rollup)", s)
	}
}

// Progress is a completed/total pair
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Compute derives progress from the current tasks
func Compute(tasks []models.Task, policy Policy) Progress {
	var p Progress
	for _, t := range tasks {
		switch policy {
		case PolicySubtasks:
			p.Total += 1 + len(t.Subtasks)
			if t.Completed {
				p.Completed++
			}
			p.Completed += t.SubtasksDone()
		case PolicyRollup:
			p.Total++
			if t.Completed || (len(t.Subtasks) > 0 && t.SubtasksDone() == len(t.Subtasks)) {
				p.Completed++
			}
		default:
			p.Total++
			if t.Completed {
				p.Completed++
			}
		}
	}
	return p
}

// Ratio is completed/total in [0,1], 0 when there is nothing to do
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Percent is the ratio as a whole percentage, rounded half away from zero
func (p Progress) Percent() int {
	return int(math.Round(p.Ratio() * 100))
}

func (p Progress) String() string {
	return fmt.Sprintf("%d / %d tasks completed (%d%%)", p.Completed, p.Total, p.Percent())
}
