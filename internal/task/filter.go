package task

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// StatusFilter restricts the view by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// Next cycles all → active → completed → all.
func (s StatusFilter) Next() StatusFilter {
	switch s {
	case StatusActive:
		return StatusCompleted
	case StatusCompleted:
		return StatusAll
	default:
		return StatusActive
	}
}

// ViewMode selects how the derived tasks are presented.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewCalendar ViewMode = "calendar"
)

// CategoryAll disables category filtering.
const CategoryAll Category = "all"

// Filter is the session-scoped view state.
type Filter struct {
	Query    string
	Status   StatusFilter
	Category Category
	Mode     ViewMode
	// PriorityOrder sorts by priority then newest first.
	PriorityOrder bool
}

// Match reports whether t passes the text, status and category filters,
// in that order.
func (f Filter) Match(t Task) bool {
	return f.matchQuery(t) && f.matchStatus(t) && f.matchCategory(t)
}

func (f Filter) matchQuery(t Task) bool {
	if f.Query == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(f.Query)
	if strings.Contains(fold.String(t.Title), q) {
		return true
	}
	return t.Description != "" && strings.Contains(fold.String(t.Description), q)
}

func (f Filter) matchStatus(t Task) bool {
	switch f.Status {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

func (f Filter) matchCategory(t Task) bool {
	if f.Category == "" || f.Category == CategoryAll {
		return true
	}
	return t.Category == f.Category
}

// DeriveView returns the tasks matching f, ordered per f. The input slice is
// not modified and the result shares no task state with it.
func DeriveView(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t.clone())
		}
	}
	if f.PriorityOrder {
		SortByPriority(out)
	}
	return out
}

// SortByPriority orders tasks High > Medium > Low, then newest first.
// The sort is stable.
func SortByPriority(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
