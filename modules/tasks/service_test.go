package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/localstore"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	local := localstore.New(filepath.Join(t.TempDir(), "tasks.json"), 0)
	return NewService(NewRepository(setupTestDB(t)), local, cache.Noop{})
}

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestService_RemoteCreateListDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created := svc.Create(ctx, "user-a", task.Input{Title: "buy milk", Priority: task.PriorityHigh}, testNow)
	if created == nil {
		t.Fatal("Create() returned nil for a valid input")
	}
	if created.ID == "" {
		t.Error("Create() must assign an id")
	}
	if created.Completed {
		t.Error("new task must not be completed")
	}

	proj := svc.List(ctx, "user-a", task.Query{Status: task.StatusAll}, testNow)
	if len(proj.Visible) != 1 {
		t.Fatalf("List() = %d tasks, want 1", len(proj.Visible))
	}
	if proj.Counts.Total != 1 || proj.Counts.Pending != 1 {
		t.Errorf("counts = %+v, want total=1 pending=1", proj.Counts)
	}

	// Another user sees nothing.
	other := svc.List(ctx, "user-b", task.Query{}, testNow)
	if len(other.Visible) != 0 {
		t.Errorf("other user sees %d tasks, want 0", len(other.Visible))
	}

	if ok := svc.Delete(ctx, "user-a", created.ID); !ok {
		t.Fatal("Delete() = false, want true")
	}
	if ok := svc.Delete(ctx, "user-a", created.ID); ok {
		t.Error("repeat Delete() = true, want false sentinel")
	}
}

func TestService_RemoteUpdateSentinel(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	title := "renamed"
	if got := svc.Update(ctx, "user-a", "missing-id", Patch{Title: &title}, testNow); got != nil {
		t.Errorf("Update() on missing task = %+v, want nil sentinel", got)
	}
}

func TestService_ToggleComplete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created := svc.Create(ctx, "user-a", task.Input{Title: "toggle me"}, testNow)
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	toggled := svc.ToggleComplete(ctx, "user-a", created.ID, testNow)
	if toggled == nil || !toggled.Completed {
		t.Fatalf("first toggle = %+v, want completed=true", toggled)
	}

	toggled = svc.ToggleComplete(ctx, "user-a", created.ID, testNow)
	if toggled == nil || toggled.Completed {
		t.Fatalf("second toggle = %+v, want completed=false", toggled)
	}

	if got := svc.ToggleComplete(ctx, "user-a", "missing-id", testNow); got != nil {
		t.Errorf("toggle on missing task = %+v, want nil sentinel", got)
	}
}

func TestService_LocalModeIsUnscoped(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// Anonymous create goes to the blob store, not the table.
	created := svc.Create(ctx, "", task.Input{Title: "local task"}, testNow)
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	local := svc.List(ctx, "", task.Query{}, testNow)
	if len(local.Visible) != 1 {
		t.Fatalf("local List() = %d tasks, want 1", len(local.Visible))
	}

	remote := svc.List(ctx, "user-a", task.Query{}, testNow)
	if len(remote.Visible) != 0 {
		t.Errorf("remote List() sees %d local tasks, want 0", len(remote.Visible))
	}

	// Newest prepended first.
	second := svc.Create(ctx, "", task.Input{Title: "second local"}, testNow.Add(time.Minute))
	if second == nil {
		t.Fatal("Create() returned nil")
	}
	local = svc.List(ctx, "", task.Query{Sort: task.SortCreated}, testNow)
	if local.Visible[0].ID != second.ID {
		t.Errorf("first visible = %q, want the newest task", local.Visible[0].Title)
	}
}

func TestService_LocalUpdateAndDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created := svc.Create(ctx, "", task.Input{Title: "local task"}, testNow)
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	title := "renamed"
	due := "2026-04-01"
	updated := svc.Update(ctx, "", created.ID, Patch{Title: &title, DueDate: &due}, testNow)
	if updated == nil {
		t.Fatal("Update() returned nil")
	}
	if updated.Title != "renamed" || updated.DueDate != "2026-04-01" {
		t.Errorf("updated = %+v", updated)
	}

	if got := svc.Update(ctx, "", "missing-id", Patch{Title: &title}, testNow); got != nil {
		t.Errorf("Update() on missing local task = %+v, want nil", got)
	}

	if ok := svc.Delete(ctx, "", created.ID); !ok {
		t.Error("Delete() = false, want true")
	}
	if ok := svc.Delete(ctx, "", created.ID); ok {
		t.Error("repeat Delete() = true, want false")
	}
}

func TestService_ImportPrepends(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	existing := svc.Create(ctx, "user-a", task.Input{Title: "existing"}, testNow)
	if existing == nil {
		t.Fatal("Create() returned nil")
	}

	entries := []task.Task{
		{ID: "import-1", Title: "imported one", Priority: task.PriorityHigh, CreatedAt: testNow.Add(time.Hour)},
		{ID: "import-2", Title: "imported two", Priority: task.PriorityLow, CreatedAt: testNow.Add(2 * time.Hour)},
	}

	count := svc.Import(ctx, "user-a", entries)
	if count != 2 {
		t.Fatalf("Import() = %d, want 2", count)
	}

	proj := svc.List(ctx, "user-a", task.Query{}, testNow)
	if len(proj.Visible) != 3 {
		t.Fatalf("List() after import = %d tasks, want 3", len(proj.Visible))
	}

	// The table assigns fresh ids on import; field values survive.
	titles := map[string]bool{}
	for _, tk := range proj.Visible {
		titles[tk.Title] = true
		if tk.ID == "import-1" || tk.ID == "import-2" {
			t.Errorf("imported task kept its file id %q, want re-assigned", tk.ID)
		}
	}
	if !titles["imported one"] || !titles["imported two"] {
		t.Errorf("imported titles missing from %v", titles)
	}
}

func TestService_ImportLocalKeepsIDs(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	entries := []task.Task{
		{ID: "import-1", Title: "imported", Priority: task.PriorityMedium, CreatedAt: testNow},
	}
	if count := svc.Import(ctx, "", entries); count != 1 {
		t.Fatalf("Import() = %d, want 1", count)
	}

	proj := svc.List(ctx, "", task.Query{}, testNow)
	if len(proj.Visible) != 1 || proj.Visible[0].ID != "import-1" {
		t.Errorf("local import = %+v, want the original id kept", proj.Visible)
	}
}

func TestService_UpdateRejectsInvalidFields(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created := svc.Create(ctx, "user-a", task.Input{Title: "valid task"}, testNow)
	if created == nil {
		t.Fatal("Create() returned nil")
	}

	blank := "   "
	badDate := "not-a-date"
	if got := svc.Update(ctx, "user-a", created.ID, Patch{Title: &blank, DueDate: &badDate}, testNow); got != nil {
		t.Errorf("Update() with invalid fields = %+v, want nil sentinel", got)
	}

	list := svc.ExportAll(ctx, "user-a")
	if len(list) != 1 {
		t.Fatalf("ExportAll() len = %d, want 1", len(list))
	}
	if list[0].Title != "valid task" || list[0].DueDate != "" {
		t.Errorf("task changed after rejected update: %+v", list[0])
	}

	past := "2020-01-01"
	if got := svc.Update(ctx, "user-a", created.ID, Patch{DueDate: &past}, testNow); got != nil {
		t.Errorf("Update() with past due date = %+v, want nil sentinel", got)
	}
}
