package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListTasks returns every task of the authenticated user.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	raw, err := c.getRaw(ctx, "/todos")
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	var envelope struct {
		Todos []json.RawMessage `json:"todos"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w: %v", ErrInvalidResponse, err)
	}

	tasks := make([]Task, 0, len(envelope.Todos))
	for i, item := range envelope.Todos {
		task, err := decodeTask(item)
		if err != nil {
			return nil, fmt.Errorf("failed to get tasks: item %d: %w", i, err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var raw json.RawMessage
	if err := c.Post(ctx, "/todos", req, &raw); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task, err := decodeTask(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask updates an existing task with the non-nil fields of req.
func (c *Client) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error) {
	var raw json.RawMessage
	if err := c.Put(ctx, "/todos/"+url.PathEscape(id), req, &raw); err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", id, err)
	}
	task, err := decodeTask(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", id, err)
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/todos/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}
