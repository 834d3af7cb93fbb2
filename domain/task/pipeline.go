package task

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Status selects which subset of tasks is visible. Exactly one status is
// active at a time; StatusAll imposes no predicate.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusToday     Status = "today"
	StatusOverdue   Status = "overdue"
)

// ParseStatus parses a status filter from its query representation.
// An empty string means StatusAll.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted, StatusToday, StatusOverdue:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
	SortCreated  SortKey = "created"
)

// ParseSortKey parses a sort key from its query representation.
// An empty string means SortCreated.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortCreated, nil
	case SortPriority, SortDueDate, SortCreated:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Query is the UI-selected filter/sort/search state.
type Query struct {
	Status Status
	Search string
	Sort   SortKey
}

// Counts are the aggregate statistics derived from the full task list,
// never from the filtered subset.
type Counts struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	DueToday       int `json:"dueToday"`
	CompletionRate int `json:"completionRate"`
}

// Projection is the result of running the pipeline: the visible ordered
// subset plus counts over the full list.
type Projection struct {
	Visible []Task `json:"tasks"`
	Counts  Counts `json:"counts"`
}

// Project computes the visible ordered subset and the aggregate counts.
// It is a pure function of (tasks, q, now); the input slice is not
// modified. The search filter is applied before the status filter.
func Project(tasks []Task, q Query, now time.Time) Projection {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	visible := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if !matchesStatus(t, q.Status, now) {
			continue
		}
		visible = append(visible, t)
	}

	sortTasks(visible, q.Sort)

	return Projection{Visible: visible, Counts: Count(tasks, now)}
}

// Count derives aggregate statistics from the full (unfiltered) list.
func Count(tasks []Task, now time.Time) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
		if t.OverdueAt(now) {
			c.Overdue++
		}
		if t.DueTodayAt(now) {
			c.DueToday++
		}
	}
	if c.Total > 0 {
		c.CompletionRate = int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
	}
	return c
}

func matchesSearch(t Task, search string) bool {
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search)
}

func matchesStatus(t Task, status Status, now time.Time) bool {
	switch status {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	case StatusToday:
		return t.DueTodayAt(now)
	case StatusOverdue:
		return t.OverdueAt(now)
	}
	return true
}

// sortTasks orders the visible list in place. Priority sorting breaks
// ties by createdAt descending so the order is deterministic regardless
// of input order. Due-date sorting places tasks without a due date after
// every task that has one; two tasks both lacking one compare equal and
// keep their relative order.
func sortTasks(tasks []Task, key SortKey) {
	switch key {
	case SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
			if ri != rj {
				return ri > rj
			}
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case SortDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			di, oki := tasks[i].dueOn()
			dj, okj := tasks[j].dueOn()
			switch {
			case oki && okj:
				return di.Before(dj)
			case oki:
				return true
			default:
				return false
			}
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}
