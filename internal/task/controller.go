package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// State is the load state of the controller.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "loading"
	}
}

// Controller owns the in-memory task collection for a session. Mutations are
// applied locally first and rolled back if the store rejects them.
type Controller struct {
	store  Store
	creds  Credentials
	logger *log.Logger

	loads singleflight.Group

	mu        sync.Mutex
	tasks     []Task
	state     State
	err       error
	gen       uint64
	stamps    map[string]uint64
	nextStamp uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for mutation and load events.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller for store. creds may be nil.
func NewController(store Store, creds Credentials, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		creds:  creds,
		logger: log.New(io.Discard),
		state:  StateLoading,
		stamps: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the full collection and replaces the local one. On failure the
// previously loaded tasks are kept and the state becomes StateError.
// Concurrent calls share a single request.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	_, err, _ := c.loads.Do("load", func() (interface{}, error) {
		tasks, err := c.store.ListTasks(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.state = StateError
			c.err = fmt.Errorf("load tasks: %w", err)
			c.logger.Error("load failed", "err", err)
			return nil, c.err
		}
		c.tasks = cloneAll(tasks)
		c.state = StateReady
		c.err = nil
		c.gen++
		c.logger.Info("tasks loaded", "count", len(tasks))
		return nil, nil
	})
	if err != nil {
		c.checkAuth(err)
	}
	return err
}

// Add validates draft, creates it in the store and prepends the stored task.
// Nothing is sent when validation fails.
func (c *Controller) Add(ctx context.Context, draft Draft) (Task, error) {
	draft, err := draft.Normalize()
	if err != nil {
		c.setErr(err)
		return Task{}, err
	}

	created, err := c.store.CreateTask(ctx, draft)
	if err == nil && !created.Persisted() {
		err = errors.New("store returned a task without an id")
	}
	if err != nil {
		err = fmt.Errorf("add task: %w", err)
		c.setErr(err)
		c.logger.Error("add failed", "title", draft.Title, "err", err)
		c.checkAuth(err)
		return Task{}, err
	}

	c.mu.Lock()
	c.tasks = append([]Task{created.clone()}, c.tasks...)
	c.gen++
	c.mu.Unlock()

	c.logger.Info("task added", "task", created.ID)
	return created.clone(), nil
}

// BeginToggle sets the completed flag locally and returns the pending
// confirmation.
func (c *Controller) BeginToggle(id string, completed bool) (*Mutation, error) {
	return c.begin(toggleCommand(c.store, id, completed))
}

// ToggleCompletion sets the completed flag and confirms it with the store,
// reverting the flag if the store fails.
func (c *Controller) ToggleCompletion(ctx context.Context, id string, completed bool) error {
	m, err := c.BeginToggle(id, completed)
	if err != nil {
		return err
	}
	return m.Commit(ctx)
}

// BeginDelete removes the task locally and returns the pending confirmation.
func (c *Controller) BeginDelete(id string) (*Mutation, error) {
	return c.begin(deleteCommand(c.store, id))
}

// Delete removes the task and confirms with the store, restoring it at its
// original position if the store fails.
func (c *Controller) Delete(ctx context.Context, id string) error {
	m, err := c.BeginDelete(id)
	if err != nil {
		return err
	}
	return m.Commit(ctx)
}

// BeginUpdate validates and applies patch locally and returns the pending
// confirmation.
func (c *Controller) BeginUpdate(id string, patch Patch) (*Mutation, error) {
	patch, err := patch.Normalize()
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	return c.begin(updateCommand(c.store, id, patch))
}

// Update applies patch and confirms with the store. On failure only the
// patched fields are restored.
func (c *Controller) Update(ctx context.Context, id string, patch Patch) error {
	m, err := c.BeginUpdate(id, patch)
	if err != nil {
		return err
	}
	return m.Commit(ctx)
}

// DeriveView returns the filtered, ordered view of the current collection.
func (c *Controller) DeriveView(f Filter) []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DeriveView(c.tasks, f)
}

// Month bins the whole collection into the calendar grid for year/month.
func (c *Controller) Month(year int, month time.Month, loc *time.Location) Month {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BuildMonth(c.tasks, year, month, loc)
}

// Tasks returns a copy of the collection.
func (c *Controller) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.tasks)
}

// Task returns the task with id.
func (c *Controller) Task(id string) (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.tasks, id); i >= 0 {
		return c.tasks[i].clone(), true
	}
	return Task{}, false
}

// State returns the current load state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last load or mutation error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ClearErr forgets the last error. The load state is not changed.
func (c *Controller) ClearErr() {
	c.setErr(nil)
}

// Counts holds per-category task counts.
type Counts struct {
	Total     int
	Active    int
	Completed int
}

// Counts returns counts for every category plus CategoryAll.
func (c *Controller) Counts() map[Category]Counts {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[Category]Counts, len(Categories)+1)
	for _, t := range c.tasks {
		for _, key := range []Category{t.Category, CategoryAll} {
			n := out[key]
			n.Total++
			if t.Completed {
				n.Completed++
			} else {
				n.Active++
			}
			out[key] = n
		}
	}
	return out
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// checkAuth drops the credential after an authorization failure.
func (c *Controller) checkAuth(err error) {
	if c.creds == nil || !IsUnauthorized(err) {
		return
	}
	if ierr := c.creds.Invalidate(); ierr != nil {
		c.logger.Warn("invalidate credential", "err", ierr)
		return
	}
	c.logger.Info("credential invalidated after authorization failure")
}
