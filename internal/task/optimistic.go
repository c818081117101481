package task

import (
	"context"
	"fmt"
)

// undoFunc reverts an optimistic change. unchanged is true when nothing else
// has touched the collection since the change was applied.
type undoFunc func(tasks []Task, unchanged bool) []Task

// command is an optimistic mutation: a local change applied immediately, the
// remote call that confirms it, and the inverse recorded at apply time.
type command struct {
	name   string
	id     string
	apply  func(tasks []Task) ([]Task, undoFunc, error)
	remote func(ctx context.Context) (*Task, error)
}

// Mutation is an optimistic change that has been applied locally and still
// has to be confirmed by the store.
type Mutation struct {
	c     *Controller
	cmd   command
	stamp uint64
	gen   uint64
	undo  undoFunc
	done  bool
}

// TaskID returns the ID of the task being mutated.
func (m *Mutation) TaskID() string {
	return m.cmd.id
}

// begin applies cmd locally and stamps it as the latest mutation of its task.
func (c *Controller) begin(cmd command) (*Mutation, error) {
	if cmd.id == "" {
		return nil, ErrNotPersisted
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next, undo, err := cmd.apply(c.tasks)
	if err != nil {
		return nil, err
	}
	c.tasks = next
	c.gen++
	c.nextStamp++
	c.stamps[cmd.id] = c.nextStamp

	c.logger.Debug("optimistic apply", "op", cmd.name, "task", cmd.id, "stamp", c.nextStamp)

	return &Mutation{c: c, cmd: cmd, stamp: c.nextStamp, gen: c.gen, undo: undo}, nil
}

// Commit sends the mutation to the store and settles the local state: the
// confirmed record replaces the optimistic one on success, the recorded
// inverse is applied on failure. A mutation superseded by a newer one on the
// same task settles without touching the collection.
func (m *Mutation) Commit(ctx context.Context) error {
	if m.done {
		return nil
	}
	m.done = true

	c := m.c
	confirmed, err := m.cmd.remote(ctx)

	c.mu.Lock()
	latest := c.stamps[m.cmd.id] == m.stamp
	if latest {
		delete(c.stamps, m.cmd.id)
	}

	switch {
	case err != nil:
		err = fmt.Errorf("%s task %s: %w", m.cmd.name, m.cmd.id, err)
		c.err = err
		if latest {
			c.tasks = m.undo(c.tasks, c.gen == m.gen)
			c.gen++
			c.logger.Warn("mutation rolled back", "op", m.cmd.name, "task", m.cmd.id, "err", err)
		} else {
			c.logger.Warn("stale mutation failed", "op", m.cmd.name, "task", m.cmd.id, "err", err)
		}
	case !latest:
		c.logger.Debug("stale mutation confirmed", "op", m.cmd.name, "task", m.cmd.id)
	case confirmed != nil:
		if i := indexOf(c.tasks, m.cmd.id); i >= 0 {
			c.tasks[i] = confirmed.clone()
			c.gen++
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.checkAuth(err)
	}
	return err
}

func indexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.clone()
	}
	return out
}

func toggleCommand(store Store, id string, completed bool) command {
	return command{
		name: "toggle",
		id:   id,
		apply: func(tasks []Task) ([]Task, undoFunc, error) {
			i := indexOf(tasks, id)
			if i < 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			prev := tasks[i].Completed
			next := cloneAll(tasks)
			next[i].Completed = completed
			undo := func(cur []Task, _ bool) []Task {
				if j := indexOf(cur, id); j >= 0 {
					cur[j].Completed = prev
				}
				return cur
			}
			return next, undo, nil
		},
		remote: func(ctx context.Context) (*Task, error) {
			t, err := store.UpdateTask(ctx, id, Patch{Completed: &completed})
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	}
}

func deleteCommand(store Store, id string) command {
	return command{
		name: "delete",
		id:   id,
		apply: func(tasks []Task) ([]Task, undoFunc, error) {
			i := indexOf(tasks, id)
			if i < 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			snapshot := cloneAll(tasks)
			removed := tasks[i].clone()
			next := make([]Task, 0, len(tasks)-1)
			next = append(next, snapshot[:i]...)
			next = append(next, cloneAll(tasks[i+1:])...)
			undo := func(cur []Task, unchanged bool) []Task {
				if unchanged {
					return snapshot
				}
				if indexOf(cur, id) >= 0 {
					return cur
				}
				at := min(i, len(cur))
				out := make([]Task, 0, len(cur)+1)
				out = append(out, cur[:at]...)
				out = append(out, removed)
				return append(out, cur[at:]...)
			}
			return next, undo, nil
		},
		remote: func(ctx context.Context) (*Task, error) {
			return nil, store.DeleteTask(ctx, id)
		},
	}
}

func updateCommand(store Store, id string, patch Patch) command {
	return command{
		name: "update",
		id:   id,
		apply: func(tasks []Task) ([]Task, undoFunc, error) {
			i := indexOf(tasks, id)
			if i < 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			prev := tasks[i].clone()
			next := cloneAll(tasks)
			next[i] = patch.applyTo(next[i])
			undo := func(cur []Task, _ bool) []Task {
				if j := indexOf(cur, id); j >= 0 {
					cur[j] = patch.restoreFrom(cur[j], prev)
				}
				return cur
			}
			return next, undo, nil
		},
		remote: func(ctx context.Context) (*Task, error) {
			t, err := store.UpdateTask(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return &t, nil
		},
	}
}
