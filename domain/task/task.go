// Package task defines the task entity, input validation, and the pure
// filter/sort/derive pipeline the rest of the application is built on.
package task

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates. Due dates
// carry no time component.
const DateLayout = "2006-01-02"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three defined priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the sort weight of the priority: high=3, medium=2, low=1.
// Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is one user-owned to-do item. DueDate is a YYYY-MM-DD string;
// empty means no deadline. Overdue and due-today status are never stored,
// they are derived from the current date (see OverdueAt and DueTodayAt).
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"dueDate,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New builds a task from user input, applying the creation defaults:
// completed=false, createdAt=now, priority medium when not supplied.
// The input is assumed to have passed Validate.
func New(id string, in Input, now time.Time) Task {
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     strings.TrimSpace(in.DueDate),
		Completed:   false,
		CreatedAt:   now,
	}
}

// dueOn parses the task's due date. The second return is false when the
// task has no due date or the stored value does not parse.
func (t Task) dueOn() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// OverdueAt reports whether the task's due date falls strictly before the
// day of now and the task is not completed.
func (t Task) OverdueAt(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.dueOn()
	if !ok {
		return false
	}
	return due.Before(startOfDay(now))
}

// DueTodayAt reports whether the task's due date falls on the day of now
// and the task is not completed.
func (t Task) DueTodayAt(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.dueOn()
	if !ok {
		return false
	}
	return due.Equal(startOfDay(now))
}

// startOfDay truncates a timestamp to midnight UTC of its calendar day.
// Due dates parse to midnight UTC, so comparisons stay day-granular.
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
