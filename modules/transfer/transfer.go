// Package transfer implements the task list export/import round trip:
// export produces a pretty-printed JSON dump of every task, import parses
// such a file back, validating each entry independently.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/task-manager/domain/task"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrUnreadable is returned when the file is not a JSON task array at
	// all.
	ErrUnreadable = errors.New("invalid file format or corrupted data")
	// ErrNoValidTasks is returned when the file parsed but every entry
	// failed validation.
	ErrNoValidTasks = errors.New("no valid tasks found in file")
)

// entrySchemaJSON describes one acceptable import entry: id, title,
// priority, createdAt and a boolean completed are required; priority must
// be one of the three defined values.
const entrySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "title", "priority", "createdAt", "completed"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "description": {"type": ["string", "null"]},
    "priority": {"enum": ["high", "medium", "low"]},
    "dueDate": {"type": ["string", "null"]},
    "completed": {"type": "boolean"},
    "createdAt": {"type": "string", "minLength": 1}
  }
}`

var entrySchema = jsonschema.MustCompileString("task-entry.json", entrySchemaJSON)

// Export serializes the complete task list, unfiltered, and returns the
// file content together with its date-stamped download name.
func Export(tasks []task.Task, now time.Time) ([]byte, string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize tasks: %w", err)
	}
	filename := fmt.Sprintf("tasks-export-%s.json", now.Format(task.DateLayout))
	return data, filename, nil
}

// ParseImport parses an uploaded export file. Entries failing validation
// are dropped silently; the survivors come back sanitized (title and
// description trimmed, blank due date normalized to empty). The two
// failure classes are distinct: ErrUnreadable when the content is not a
// JSON array, ErrNoValidTasks when it is but nothing in it passed.
func ParseImport(data []byte) ([]task.Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrUnreadable
	}

	valid := make([]task.Task, 0, len(raw))
	for _, entry := range raw {
		var obj any
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		if err := entrySchema.Validate(obj); err != nil {
			continue
		}

		var t task.Task
		if err := json.Unmarshal(entry, &t); err != nil {
			// Schema passed but Go types did not (unparseable createdAt).
			continue
		}
		if strings.TrimSpace(t.Title) == "" {
			continue
		}

		valid = append(valid, sanitize(t))
	}

	if len(valid) == 0 {
		return nil, ErrNoValidTasks
	}
	return valid, nil
}

func sanitize(t task.Task) task.Task {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.DueDate = strings.TrimSpace(t.DueDate)
	return t
}
