package tasks

import (
	"time"

	"github.com/example/task-manager/domain/task"
)

// defaultCategory is written to every row; the category column exists in
// the table but is not exposed through the API.
const defaultCategory = "general"

// Record is the storage row for a task. Column names follow the tasks
// table schema: the due date is stored in the deadline column.
type Record struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;not null;size:36"`
	Title       string `gorm:"size:100;not null"`
	Description string `gorm:"size:500"`
	Priority    string `gorm:"size:10;not null;default:medium"`
	Deadline    string `gorm:"size:10"`
	Completed   bool   `gorm:"not null"`
	Category    string `gorm:"size:50;not null;default:general"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for the Record entity.
func (Record) TableName() string {
	return "tasks"
}

// toTask maps a storage row to the task entity shape.
func (r *Record) toTask() task.Task {
	return task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		DueDate:     r.Deadline,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
	}
}

// newRecord maps a task entity to a storage row owned by userID.
func newRecord(userID string, t task.Task) *Record {
	return &Record{
		ID:          t.ID,
		UserID:      userID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Deadline:    t.DueDate,
		Completed:   t.Completed,
		Category:    defaultCategory,
		CreatedAt:   t.CreatedAt,
	}
}
