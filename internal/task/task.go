// Package task holds the to-do domain model and the controller that keeps the
// in-memory task collection in sync with the remote task store.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed task categories.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
	CategoryStudy    Category = "Study"
	CategoryShopping Category = "Shopping"
	CategoryOthers   Category = "Others"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryStudy,
	CategoryShopping,
	CategoryOthers,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority is the task priority. The zero value means "not set".
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority parses a priority name case-insensitively.
// An empty string parses to the zero Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
}

// Rank returns the ordering weight of p. Missing priority ranks as Medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Date is a calendar date without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string. Longer timestamps are accepted and
// truncated to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return DateOf(t), nil
}

// DateOf returns the date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Attachment is a file linked to a task.
type Attachment struct {
	Name      string
	URL       string
	MediaType string
}

// Task is a to-do item. A task with an empty ID has never been persisted.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Priority    Priority
	Completed   bool
	DueDate     *Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []Attachment
}

// Persisted reports whether the store has assigned an identifier.
func (t Task) Persisted() bool {
	return t.ID != ""
}

// IsOverdue returns true if the task is incomplete and due before today.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	today := DateOf(now).In(now.Location())
	return t.DueDate.In(now.Location()).Before(today)
}

// IsDueOn returns true if the task is due on day d.
func (t Task) IsDueOn(d Date) bool {
	return t.DueDate != nil && *t.DueDate == d
}

// clone returns a copy of t that shares no mutable state with it.
func (t Task) clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	if t.Attachments != nil {
		t.Attachments = append([]Attachment(nil), t.Attachments...)
	}
	return t
}

// Draft is the input for creating a task.
type Draft struct {
	Title       string
	Description string
	Category    Category
	Priority    Priority
	DueDate     *Date
}

// Normalize trims the draft, fills defaults and validates it.
func (d Draft) Normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return d, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if d.Category == "" {
		d.Category = CategoryPersonal
	}
	if !d.Category.Valid() {
		return d, fmt.Errorf("%w: unknown category %q", ErrValidation, d.Category)
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if _, err := ParsePriority(string(d.Priority)); err != nil {
		return d, err
	}
	return d, nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Category    *Category
	Priority    *Priority
	Completed   *bool
	DueDate     *Date
	// ClearDue removes the due date. It wins over DueDate.
	ClearDue bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Priority == nil && p.Completed == nil && p.DueDate == nil && !p.ClearDue
}

// Validate checks the patched fields.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, *p.Category)
	}
	if p.Priority != nil {
		if _, err := ParsePriority(string(*p.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// Normalize returns a copy of the patch with trimmed text fields, so the
// store and the local copy see the same values.
func (p Patch) Normalize() (Patch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	return p, p.Validate()
}

// applyTo returns t with the patch applied.
func (p Patch) applyTo(t Task) Task {
	t = t.clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearDue {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	return t
}

// restoreFrom copies the fields named by the patch from prev into t.
func (p Patch) restoreFrom(t, prev Task) Task {
	t = t.clone()
	if p.Title != nil {
		t.Title = prev.Title
	}
	if p.Description != nil {
		t.Description = prev.Description
	}
	if p.Category != nil {
		t.Category = prev.Category
	}
	if p.Priority != nil {
		t.Priority = prev.Priority
	}
	if p.Completed != nil {
		t.Completed = prev.Completed
	}
	if p.ClearDue || p.DueDate != nil {
		t.DueDate = prev.clone().DueDate
	}
	return t
}

// Store is the remote task store.
type Store interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, draft Draft) (Task, error)
	UpdateTask(ctx context.Context, id string, patch Patch) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Credentials is the credential provider used for store requests. The
// controller only needs to drop a credential the store has rejected.
type Credentials interface {
	Invalidate() error
}

var (
	// ErrValidation is returned for input rejected before any request is sent.
	ErrValidation = errors.New("validation failed")
	// ErrNotPersisted is returned for operations on a task without an ID.
	ErrNotPersisted = errors.New("task has not been saved yet")
	// ErrNotFound is returned when no task with the given ID is loaded.
	ErrNotFound = errors.New("task not found")
)

// IsUnauthorized reports whether err is an authorization failure anywhere in
// its chain.
func IsUnauthorized(err error) bool {
	var ue interface{ IsUnauthorized() bool }
	return errors.As(err, &ue) && ue.IsUnauthorized()
}
