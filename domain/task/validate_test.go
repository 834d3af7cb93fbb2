package task

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_Title(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		title   string
		wantErr string
	}{
		{"valid title", "Buy groceries", ""},
		{"minimum length", "abc", ""},
		{"empty", "", "title is required"},
		{"whitespace only", "   \t ", "title is required"},
		{"too short", "ab", "title is too short"},
		{"too short after trimming", "  ab  ", "title is too short"},
		{"exactly max length", strings.Repeat("x", 100), ""},
		{"over max length", strings.Repeat("x", 101), "title must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(Input{Title: tt.title}, now)
			got := errs["title"]
			if got != tt.wantErr {
				t.Errorf("title error = %q, want %q", got, tt.wantErr)
			}
			if tt.wantErr == "" && errs != nil {
				t.Errorf("expected no errors, got %v", errs)
			}
		})
	}
}

func TestValidate_DueDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate string
		wantErr string
	}{
		{"absent", "", ""},
		{"today is allowed despite late hour", "2026-03-15", ""},
		{"future", "2026-03-16", ""},
		{"yesterday", "2026-03-14", "due date must not be in the past"},
		{"garbage", "not-a-date", "invalid date"},
		{"impossible calendar date", "2026-02-30", "invalid date"},
		{"wrong format", "15/03/2026", "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(Input{Title: "valid title", DueDate: tt.dueDate}, now)
			if got := errs["dueDate"]; got != tt.wantErr {
				t.Errorf("dueDate error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestValidate_PriorityAndDescription(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	if errs := Validate(Input{Title: "valid title", Priority: "urgent"}, now); errs["priority"] == "" {
		t.Error("unknown priority should fail validation")
	}
	if errs := Validate(Input{Title: "valid title", Priority: PriorityHigh}, now); errs != nil {
		t.Errorf("valid priority should pass, got %v", errs)
	}
	// Priority not supplied is fine, New defaults it to medium.
	if errs := Validate(Input{Title: "valid title"}, now); errs != nil {
		t.Errorf("missing priority should pass, got %v", errs)
	}

	long := strings.Repeat("d", 501)
	if errs := Validate(Input{Title: "valid title", Description: long}, now); errs["description"] == "" {
		t.Error("over-long description should fail validation")
	}
}

func TestValidate_CollectsAllFieldErrors(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	errs := Validate(Input{Title: "", Priority: "urgent", DueDate: "bogus"}, now)
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(errs), errs)
	}
}

func TestNew_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	got := New("id-1", Input{Title: "  Buy groceries  ", Description: " milk ", DueDate: " "}, now)

	if got.Title != "Buy groceries" {
		t.Errorf("title = %q, want trimmed", got.Title)
	}
	if got.Description != "milk" {
		t.Errorf("description = %q, want trimmed", got.Description)
	}
	if got.Priority != PriorityMedium {
		t.Errorf("priority = %q, want default medium", got.Priority)
	}
	if got.DueDate != "" {
		t.Errorf("dueDate = %q, want blank normalized to empty", got.DueDate)
	}
	if got.Completed {
		t.Error("new task must not be completed")
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestValidateUpdate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	str := func(s string) *string { return &s }
	prio := func(p Priority) *Priority { return &p }

	tests := []struct {
		name        string
		title       *string
		description *string
		priority    *Priority
		dueDate     *string
		wantField   string
		wantErr     string
	}{
		{"all fields nil", nil, nil, nil, nil, "", ""},
		{"valid title", str("Renamed task"), nil, nil, nil, "", ""},
		{"whitespace title", str("   "), nil, nil, nil, "title", "title is required"},
		{"too short title", str("ab"), nil, nil, nil, "title", "title is too short"},
		{"over-length title", str(strings.Repeat("x", 101)), nil, nil, nil, "title", "title must be at most 100 characters"},
		{"over-length description", nil, str(strings.Repeat("x", 501)), nil, nil, "description", "description must be at most 500 characters"},
		{"valid priority", nil, nil, prio(PriorityLow), nil, "", ""},
		{"unknown priority", nil, nil, prio("urgent"), nil, "priority", "priority must be high, medium or low"},
		{"empty priority", nil, nil, prio(""), nil, "priority", "priority must be high, medium or low"},
		{"future due date", nil, nil, nil, str("2026-04-01"), "", ""},
		{"clearing due date", nil, nil, nil, str(""), "", ""},
		{"past due date", nil, nil, nil, str("2026-03-14"), "dueDate", "due date must not be in the past"},
		{"unparseable due date", nil, nil, nil, str("not-a-date"), "dueDate", "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateUpdate(tt.title, tt.description, tt.priority, tt.dueDate, now)
			if tt.wantErr == "" {
				if errs != nil {
					t.Errorf("expected no errors, got %v", errs)
				}
				return
			}
			if got := errs[tt.wantField]; got != tt.wantErr {
				t.Errorf("%s error = %q, want %q", tt.wantField, got, tt.wantErr)
			}
		})
	}
}
