// Package localstore persists the anonymous task list as a single JSON
// document on disk: whole-list replace semantics under one fixed path,
// mirroring a browser local-storage entry under a fixed key.
package localstore

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/example/task-manager/domain/task"
)

const (
	// DefaultPath is the storage file used when none is configured.
	DefaultPath = "daily-task-manager-tasks.json"
	// DefaultDebounce is how long a save is held back so that rapid
	// successive saves coalesce into one write.
	DefaultDebounce = 500 * time.Millisecond
)

// Store is a file-backed blob store for the full task list. Saves are
// debounced: a burst of edits produces a single write, trading a small
// durability window for fewer writes. Load and Save never surface errors
// to the caller; failures are logged and degrade to an empty list or a
// dropped write.
type Store struct {
	mu       sync.Mutex
	path     string
	debounce time.Duration
	timer    *time.Timer
	pending  []task.Task
	dirty    bool
}

// New creates a store writing to path. A zero debounce disables
// coalescing and makes every Save write through immediately.
func New(path string, debounce time.Duration) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{
		path:     path,
		debounce: debounce,
	}
}

// Load reads the stored task list. A missing file or undecodable content
// degrades to an empty list. A pending save that has not been flushed yet
// is the newest state and wins over the file.
func (s *Store) Load() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty {
		return append([]task.Task(nil), s.pending...)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[localstore] Error reading %s: %v", s.path, err)
		}
		return []task.Task{}
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.Printf("[localstore] Error decoding %s: %v", s.path, err)
		return []task.Task{}
	}
	return tasks
}

// Save replaces the stored list. The write is scheduled, not immediate;
// only the most recent list of a burst reaches disk.
func (s *Store) Save(tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append([]task.Task(nil), tasks...)
	s.dirty = true

	if s.debounce <= 0 {
		s.writeLocked()
		return
	}

	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.Flush)
	} else {
		s.timer.Reset(s.debounce)
	}
}

// Flush writes any pending list immediately. Safe to call at any time;
// a no-op when nothing is pending.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.writeLocked()
}

func (s *Store) writeLocked() {
	data, err := json.MarshalIndent(s.pending, "", "  ")
	if err != nil {
		log.Printf("[localstore] Error encoding task list: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("[localstore] Error writing %s: %v", s.path, err)
		return
	}
	s.dirty = false
}
