package transfer

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func sampleTask(id, title string) task.Task {
	return task.Task{
		ID:        id,
		Title:     title,
		Priority:  task.PriorityMedium,
		CreatedAt: exportNow,
	}
}

func TestExport_Filename(t *testing.T) {
	_, filename, err := Export(nil, exportNow)
	require.NoError(t, err)
	assert.Equal(t, "tasks-export-2026-03-15.json", filename)
}

func TestExport_RoundTrip(t *testing.T) {
	tasks := []task.Task{
		sampleTask("a", "buy milk"),
		{
			ID:          "b",
			Title:       "write report",
			Description: "quarterly numbers",
			Priority:    task.PriorityHigh,
			DueDate:     "2026-04-01",
			Completed:   true,
			CreatedAt:   exportNow,
		},
	}

	data, _, err := Export(tasks, exportNow)
	require.NoError(t, err)

	parsed, err := ParseImport(data)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "buy milk", parsed[0].Title)
	assert.Equal(t, "write report", parsed[1].Title)
	assert.Equal(t, "2026-04-01", parsed[1].DueDate)
	assert.True(t, parsed[1].Completed)
}

func TestParseImport_NotJSON(t *testing.T) {
	_, err := ParseImport([]byte("this is not json"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestParseImport_NotAnArray(t *testing.T) {
	_, err := ParseImport([]byte(`{"id": "a"}`))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestParseImport_DropsInvalidEntries(t *testing.T) {
	good, err := json.Marshal(sampleTask("a", "keep me"))
	require.NoError(t, err)

	entries := []string{
		string(good),
		`{"title": "missing id", "priority": "low", "createdAt": "2026-01-01T00:00:00Z", "completed": false}`,
		`{"id": "c", "title": "bad priority", "priority": "urgent", "createdAt": "2026-01-01T00:00:00Z", "completed": false}`,
		`{"id": "d", "title": "string completed", "priority": "low", "createdAt": "2026-01-01T00:00:00Z", "completed": "yes"}`,
		`{"id": "e", "title": "   ", "priority": "low", "createdAt": "2026-01-01T00:00:00Z", "completed": false}`,
		`{"id": "f", "title": "bad timestamp", "priority": "low", "createdAt": "not-a-time", "completed": false}`,
		`"just a string"`,
	}
	data := []byte(fmt.Sprintf("[%s]", joinEntries(entries)))

	parsed, err := ParseImport(data)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "keep me", parsed[0].Title)
}

func TestParseImport_AllInvalid(t *testing.T) {
	_, err := ParseImport([]byte(`[{"id": "a"}, {"title": "no id"}]`))
	assert.ErrorIs(t, err, ErrNoValidTasks)
}

func TestParseImport_EmptyArray(t *testing.T) {
	_, err := ParseImport([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNoValidTasks)
}

func TestParseImport_Sanitizes(t *testing.T) {
	data := []byte(`[{
		"id": "a",
		"title": "  padded title  ",
		"description": "  padded description  ",
		"priority": "low",
		"dueDate": "   ",
		"completed": false,
		"createdAt": "2026-01-01T00:00:00Z"
	}]`)

	parsed, err := ParseImport(data)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "padded title", parsed[0].Title)
	assert.Equal(t, "padded description", parsed[0].Description)
	assert.Empty(t, parsed[0].DueDate)
}

func joinEntries(entries []string) string {
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += e
	}
	return out
}
