package tasks

import (
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/task"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches both the task id and the
// owning user id.
var ErrNotFound = errors.New("task not found")

// Repository provides access to the per-user task table. Every query
// carries an equality filter on the owning user id, so one user can never
// observe or mutate another's rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindAllByUser returns every task owned by userID, newest-created first.
func (r *Repository) FindAllByUser(userID string) ([]task.Task, error) {
	var records []Record
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(records))
	for i := range records {
		tasks = append(tasks, records[i].toTask())
	}
	return tasks, nil
}

// Create inserts one row owned by userID and returns the persisted task.
func (r *Repository) Create(userID string, t task.Task) (task.Task, error) {
	rec := newRecord(userID, t)
	if err := r.db.Create(rec).Error; err != nil {
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return rec.toTask(), nil
}

// Update patches only the supplied columns on the row matching both the
// task id and the owning user id, and returns the updated task.
func (r *Repository) Update(userID, id string, fields map[string]any) (task.Task, error) {
	result := r.db.Model(&Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return task.Task{}, ErrNotFound
	}

	var rec Record
	if err := r.db.First(&rec, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return task.Task{}, fmt.Errorf("failed to reload task: %w", err)
	}
	return rec.toTask(), nil
}

// Delete removes the row matching both the task id and the owning user id.
func (r *Repository) Delete(userID, id string) error {
	result := r.db.Delete(&Record{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
