package tasks

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/localstore"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Patch carries the fields of a partial update; nil fields are left
// untouched.
type Patch struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Priority    *task.Priority `json:"priority"`
	DueDate     *string        `json:"dueDate"`
	Completed   *bool          `json:"completed"`
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Completed == nil
}

// Validate checks the supplied fields against the same rules a create
// goes through. Nil fields are skipped.
func (p Patch) Validate(now time.Time) task.FieldErrors {
	return task.ValidateUpdate(p.Title, p.Description, p.Priority, p.DueDate, now)
}

// Service is the persistence boundary for tasks. An empty user id routes
// every operation to the local blob store (no user scoping); a non-empty
// one goes through the per-user table. Remote failures never propagate:
// they are logged and converted to a nil/false/empty sentinel, so callers
// must treat the sentinel as "no-op occurred" and keep their prior state.
type Service struct {
	repo    *Repository
	local   *localstore.Store
	cache   cache.TaskCache
	sfGroup singleflight.Group // Prevents cache stampede
}

// NewService creates a new task service.
func NewService(repo *Repository, local *localstore.Store, c cache.TaskCache) *Service {
	return &Service{
		repo:  repo,
		local: local,
		cache: c,
	}
}

func cacheKey(userID string) string {
	return "user:" + userID
}

// List loads the caller's tasks and projects them through the
// filter/sort/search pipeline.
func (s *Service) List(ctx context.Context, userID string, q task.Query, now time.Time) task.Projection {
	return task.Project(s.loadAll(ctx, userID), q, now)
}

// Stats derives aggregate counts over the caller's full task list.
func (s *Service) Stats(ctx context.Context, userID string, now time.Time) task.Counts {
	return task.Count(s.loadAll(ctx, userID), now)
}

// ExportAll returns the caller's complete task list, unfiltered.
func (s *Service) ExportAll(ctx context.Context, userID string) []task.Task {
	return s.loadAll(ctx, userID)
}

// loadAll fetches the full task list for the caller: the local blob for
// anonymous callers, the per-user table (cache-aside) otherwise. Load
// failures degrade to an empty list.
func (s *Service) loadAll(ctx context.Context, userID string) []task.Task {
	if userID == "" {
		return s.local.Load()
	}

	key := cacheKey(userID)
	var cached []task.Task
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[tasks] Cache error for user %s: %v", userID, err)
		// Continue to database on cache error
	}
	if found {
		return cached
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.repo.FindAllByUser(userID)
	})
	if err != nil {
		log.Printf("[tasks] Error loading tasks for user %s: %v", userID, err)
		return []task.Task{}
	}
	tasks := val.([]task.Task)

	if err := s.cache.Set(ctx, key, tasks); err != nil {
		log.Printf("[tasks] Warning: failed to cache tasks for user %s: %v", userID, err)
	}

	return tasks
}

// Create persists a new task built from validated input and returns it,
// or nil when the write failed.
func (s *Service) Create(ctx context.Context, userID string, in task.Input, now time.Time) *task.Task {
	t := task.New(uuid.New().String(), in, now)

	if userID == "" {
		list := append([]task.Task{t}, s.local.Load()...)
		s.local.Save(list)
		return &t
	}

	created, err := s.repo.Create(userID, t)
	if err != nil {
		log.Printf("[tasks] Error creating task for user %s: %v", userID, err)
		return nil
	}
	s.invalidate(ctx, userID)
	return &created
}

// Update patches only the supplied fields of one task and returns the
// updated record, or nil when the task does not exist, a field fails
// validation or the write failed.
func (s *Service) Update(ctx context.Context, userID, id string, p Patch, now time.Time) *task.Task {
	if errs := p.Validate(now); errs != nil {
		log.Printf("[tasks] Rejected update of task %s: %d invalid fields", id, len(errs))
		return nil
	}

	if userID == "" {
		return s.updateLocal(id, p)
	}

	fields := patchFields(p)
	if len(fields) == 0 {
		return s.findByID(ctx, userID, id)
	}

	updated, err := s.repo.Update(userID, id, fields)
	if err != nil {
		log.Printf("[tasks] Error updating task %s for user %s: %v", id, userID, err)
		return nil
	}
	s.invalidate(ctx, userID)
	return &updated
}

// ToggleComplete flips the completed flag of one task and returns the
// updated record, or nil when the task does not exist or the write failed.
func (s *Service) ToggleComplete(ctx context.Context, userID, id string, now time.Time) *task.Task {
	current := s.findByID(ctx, userID, id)
	if current == nil {
		return nil
	}
	toggled := !current.Completed
	return s.Update(ctx, userID, id, Patch{Completed: &toggled}, now)
}

// Delete removes one task permanently. It reports false when the task
// does not exist or the write failed.
func (s *Service) Delete(ctx context.Context, userID, id string) bool {
	if userID == "" {
		list := s.local.Load()
		kept := make([]task.Task, 0, len(list))
		for _, t := range list {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(list) {
			return false
		}
		s.local.Save(kept)
		return true
	}

	if err := s.repo.Delete(userID, id); err != nil {
		log.Printf("[tasks] Error deleting task %s for user %s: %v", id, userID, err)
		return false
	}
	s.invalidate(ctx, userID)
	return true
}

// Import prepends already-validated entries to the caller's existing list
// and persists them. Remote entries get a fresh id; all other fields are
// kept. It returns how many entries were persisted.
func (s *Service) Import(ctx context.Context, userID string, entries []task.Task) int {
	if len(entries) == 0 {
		return 0
	}

	if userID == "" {
		list := append(append([]task.Task{}, entries...), s.local.Load()...)
		s.local.Save(list)
		return len(entries)
	}

	persisted := 0
	for _, entry := range entries {
		entry.ID = uuid.New().String()
		if _, err := s.repo.Create(userID, entry); err != nil {
			log.Printf("[tasks] Error importing task for user %s: %v", userID, err)
			continue
		}
		persisted++
	}
	if persisted > 0 {
		s.invalidate(ctx, userID)
	}
	return persisted
}

func (s *Service) findByID(ctx context.Context, userID, id string) *task.Task {
	for _, t := range s.loadAll(ctx, userID) {
		if t.ID == id {
			return &t
		}
	}
	return nil
}

func (s *Service) updateLocal(id string, p Patch) *task.Task {
	list := s.local.Load()
	for i := range list {
		if list[i].ID != id {
			continue
		}
		applyPatch(&list[i], p)
		s.local.Save(list)
		updated := list[i]
		return &updated
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		log.Printf("[tasks] Warning: failed to invalidate cache for user %s: %v", userID, err)
	}
}

// patchFields converts a Patch to the column map the repository applies.
func patchFields(p Patch) map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		fields["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		fields["priority"] = string(*p.Priority)
	}
	if p.DueDate != nil {
		fields["deadline"] = strings.TrimSpace(*p.DueDate)
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	return fields
}

func applyPatch(t *task.Task, p Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = strings.TrimSpace(*p.DueDate)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
