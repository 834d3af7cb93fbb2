package api

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/tasks"
	"github.com/example/task-manager/modules/transfer"
	"github.com/gofiber/fiber/v2"
)

// maxImportSize caps uploaded export files at 5 MB.
const maxImportSize = 5 << 20

// ListTasks returns the caller's tasks after filtering, searching and
// sorting, together with counters computed over the unfiltered list.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	status, err := task.ParseStatus(c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: fmt.Sprintf("Unknown status filter %q", c.Query("status")),
		})
	}
	sortKey, err := task.ParseSortKey(c.Query("sort"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: fmt.Sprintf("Unknown sort key %q", c.Query("sort")),
		})
	}

	q := task.Query{
		Status: status,
		Search: c.Query("search"),
		Sort:   sortKey,
	}
	projection := h.tasks.List(c.UserContext(), userID(c), q, time.Now())
	return c.Status(fiber.StatusOK).JSON(projection)
}

// CreateTask validates the submitted fields and adds a new task.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	now := time.Now()
	in := task.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    task.Priority(req.Priority),
		DueDate:     req.DueDate,
	}
	if fields := task.Validate(in, now); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Error:  "validation_failed",
			Fields: fields,
		})
	}

	created := h.tasks.Create(c.UserContext(), userID(c), in, now)
	if created == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to save task",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTask applies a partial update to one task. Supplied fields go
// through the same validation as a create; an empty patch is rejected so
// callers learn nothing was applied.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var patch tasks.Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}
	if patch.Empty() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "No fields to update",
		})
	}

	now := time.Now()
	if fields := patch.Validate(now); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Error:  "validation_failed",
			Fields: fields,
		})
	}

	updated := h.tasks.Update(c.UserContext(), userID(c), c.Params("id"), patch, now)
	if updated == nil {
		return taskNotFound(c)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// ToggleTask flips a task's completion state.
func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	toggled := h.tasks.ToggleComplete(c.UserContext(), userID(c), c.Params("id"), time.Now())
	if toggled == nil {
		return taskNotFound(c)
	}
	return c.Status(fiber.StatusOK).JSON(toggled)
}

// DeleteTask removes one task.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if !h.tasks.Delete(c.UserContext(), userID(c), c.Params("id")) {
		return taskNotFound(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TaskStats returns the counters for the caller's full task list.
func (h *Handlers) TaskStats(c *fiber.Ctx) error {
	counts := h.tasks.Stats(c.UserContext(), userID(c), time.Now())
	return c.Status(fiber.StatusOK).JSON(StatsResponse{Counts: counts})
}

// ExportTasks sends the complete task list as a downloadable JSON file.
func (h *Handlers) ExportTasks(c *fiber.Ctx) error {
	all := h.tasks.ExportAll(c.UserContext(), userID(c))
	data, filename, err := transfer.Export(all, time.Now())
	if err != nil {
		log.Printf("[api] Export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to export tasks",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// ImportTasks accepts an exported JSON file and adds its valid entries to
// the caller's list. Invalid entries are dropped; an unreadable file and a
// file with no usable entries are reported separately.
func (h *Handlers) ImportTasks(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "A file upload named 'file' is required",
		})
	}
	if fileHeader.Size > maxImportSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error:   "too_large",
			Message: fmt.Sprintf("File exceeds the %s import limit", humanize.IBytes(maxImportSize)),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Could not read uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Could not read uploaded file",
		})
	}
	log.Printf("[api] Import upload %s (%s)", fileHeader.Filename, humanize.IBytes(uint64(fileHeader.Size)))

	entries, err := transfer.ParseImport(data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	}

	imported := h.tasks.Import(c.UserContext(), userID(c), entries)
	return c.Status(fiber.StatusOK).JSON(ImportResponse{Imported: imported})
}

func taskNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: "Task not found",
	})
}
