package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/localstore"
	"github.com/example/task-manager/modules/tasks"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTaskHandlers(t *testing.T) (*fiber.App, *tasks.Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&tasks.Record{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	local := localstore.New(filepath.Join(t.TempDir(), "tasks.json"), 0)
	svc := tasks.NewService(tasks.NewRepository(db), local, cache.Noop{})

	h := NewHandlers(nil, &mockAuthPort{}, svc)
	app := fiber.New()
	app.Patch("/tasks/:id", h.UpdateTask)
	return app, svc
}

func patchTask(t *testing.T, app *fiber.App, id, body string) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	return resp, string(raw)
}

func TestUpdateTask_RejectsInvalidFields(t *testing.T) {
	app, svc := setupTaskHandlers(t)
	ctx := context.Background()

	created := svc.Create(ctx, "", task.Input{Title: "valid task"}, time.Now())
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	resp, body := patchTask(t, app, created.ID, `{"title": "   ", "dueDate": "not-a-date"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, "validation_failed") {
		t.Errorf("body = %s, want validation_failed", body)
	}
	if !strings.Contains(body, "title is required") || !strings.Contains(body, "invalid date") {
		t.Errorf("body = %s, want title and dueDate messages", body)
	}

	// The rejected edit must not touch the stored task.
	list := svc.ExportAll(ctx, "")
	if len(list) != 1 || list[0].Title != "valid task" || list[0].DueDate != "" {
		t.Errorf("stored task after rejected edit = %+v", list)
	}
}

func TestUpdateTask_RejectsEmptyPatch(t *testing.T) {
	app, svc := setupTaskHandlers(t)

	created := svc.Create(context.Background(), "", task.Input{Title: "valid task"}, time.Now())
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	resp, body := patchTask(t, app, created.ID, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, "No fields to update") {
		t.Errorf("body = %s, want empty-patch message", body)
	}
}

func TestUpdateTask_AppliesValidPatch(t *testing.T) {
	app, svc := setupTaskHandlers(t)

	created := svc.Create(context.Background(), "", task.Input{Title: "valid task"}, time.Now())
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	resp, body := patchTask(t, app, created.ID, `{"title": "renamed task", "dueDate": "2099-01-01"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "renamed task") || !strings.Contains(body, "2099-01-01") {
		t.Errorf("body = %s, want updated fields", body)
	}
}
