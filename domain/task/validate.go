package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// TitleMinLen is the minimum title length after trimming.
	TitleMinLen = 3
	// TitleMaxLen is the maximum title length after trimming.
	TitleMaxLen = 100
	// DescriptionMaxLen is the maximum description length after trimming.
	DescriptionMaxLen = 500
)

// Input is the raw user-supplied payload for a create or edit request.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
}

// FieldErrors maps a field name to its validation message. A nil map
// means the input passed every check.
type FieldErrors map[string]string

// Validate checks raw user input before a create. It is a pure check
// with no side effects; the caller is responsible for surfacing the
// messages and blocking submission until all fields pass.
func Validate(in Input, now time.Time) FieldErrors {
	errs := FieldErrors{}

	checkTitle(in.Title, errs)
	checkDescription(in.Description, errs)
	if in.Priority != "" && !in.Priority.Valid() {
		errs["priority"] = "priority must be high, medium or low"
	}
	checkDueDate(in.DueDate, now, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateUpdate checks the supplied fields of a partial edit against the
// same rules a create goes through. Nil fields are skipped. Unlike a
// create, an explicit priority may not be empty, and an empty due date is
// allowed because it clears the date.
func ValidateUpdate(title, description *string, priority *Priority, dueDate *string, now time.Time) FieldErrors {
	errs := FieldErrors{}

	if title != nil {
		checkTitle(*title, errs)
	}
	if description != nil {
		checkDescription(*description, errs)
	}
	if priority != nil && !priority.Valid() {
		errs["priority"] = "priority must be high, medium or low"
	}
	if dueDate != nil {
		checkDueDate(*dueDate, now, errs)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkTitle(title string, errs FieldErrors) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		errs["title"] = "title is required"
	case utf8.RuneCountInString(title) < TitleMinLen:
		errs["title"] = "title is too short"
	case utf8.RuneCountInString(title) > TitleMaxLen:
		errs["title"] = "title must be at most 100 characters"
	}
}

func checkDescription(description string, errs FieldErrors) {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > DescriptionMaxLen {
		errs["description"] = "description must be at most 500 characters"
	}
}

func checkDueDate(dueDate string, now time.Time, errs FieldErrors) {
	due := strings.TrimSpace(dueDate)
	if due == "" {
		return
	}
	d, err := time.Parse(DateLayout, due)
	switch {
	case err != nil:
		errs["dueDate"] = "invalid date"
	case d.Before(startOfDay(now)):
		errs["dueDate"] = "due date must not be in the past"
	}
}
