// Package tasktest provides an in-memory task store for tests.
package tasktest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/hy4ri/todolist-tui/internal/task"
)

// ErrUnavailable is a generic injected store failure.
var ErrUnavailable = errors.New("store unavailable")

// UnauthorizedError is an injected authorization failure.
type UnauthorizedError struct{}

func (UnauthorizedError) Error() string        { return "unauthorized" }
func (UnauthorizedError) IsUnauthorized() bool { return true }

// FakeStore is an in-memory implementation of task.Store.
type FakeStore struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int
	calls  map[string]int

	// Now stamps created and updated tasks. Defaults to time.Now.
	Now func() time.Time

	// Error injection
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// OnUpdate, when set, runs before every update and its error is returned.
	OnUpdate func(id string, patch task.Patch) error

	// ListGate, when set, blocks ListTasks until it is closed.
	ListGate chan struct{}
}

// NewFakeStore creates a store seeded with tasks.
func NewFakeStore(tasks ...task.Task) *FakeStore {
	return &FakeStore{
		tasks:  append([]task.Task(nil), tasks...),
		nextID: 100,
		calls:  make(map[string]int),
	}
}

// Calls returns how many times op ("list", "create", "update", "delete") ran.
func (f *FakeStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Stored returns a copy of the store's tasks.
func (f *FakeStore) Stored() []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]task.Task(nil), f.tasks...)
}

func (f *FakeStore) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// ListTasks implements task.Store.
func (f *FakeStore) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	f.calls["list"]++
	gate := f.ListGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]task.Task(nil), f.tasks...), nil
}

// CreateTask implements task.Store.
func (f *FakeStore) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.CreateErr != nil {
		return task.Task{}, f.CreateErr
	}

	f.nextID++
	now := f.now()
	t := task.Task{
		ID:          strconv.Itoa(f.nextID),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Priority:    d.Priority,
		DueDate:     d.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks = append([]task.Task{t}, f.tasks...)
	return t, nil
}

// UpdateTask implements task.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	f.mu.Lock()
	f.calls["update"]++
	hook := f.OnUpdate
	f.mu.Unlock()

	if hook != nil {
		if err := hook(id, p); err != nil {
			return task.Task{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return task.Task{}, f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
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
		t.UpdatedAt = f.now()
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

// DeleteTask implements task.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return task.ErrNotFound
}

// Credentials records invalidations.
type Credentials struct {
	mu          sync.Mutex
	invalidated int
}

// Invalidate implements task.Credentials.
func (c *Credentials) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

// Invalidated returns how many times Invalidate was called.
func (c *Credentials) Invalidated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}
