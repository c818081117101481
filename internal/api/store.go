package api

import (
	"context"
	"fmt"

	"github.com/hy4ri/todolist-tui/internal/task"
)

// TaskStore adapts a Client to task.Store.
type TaskStore struct {
	client *Client
}

// NewTaskStore returns a task.Store backed by client.
func NewTaskStore(client *Client) *TaskStore {
	return &TaskStore{client: client}
}

// ListTasks implements task.Store.
func (s *TaskStore) ListTasks(ctx context.Context) ([]task.Task, error) {
	wire, err := s.client.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, w.toDomain())
	}
	return tasks, nil
}

// CreateTask implements task.Store.
func (s *TaskStore) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	req := CreateTaskRequest{
		Title:       d.Title,
		Description: d.Description,
		Category:    string(d.Category),
		Priority:    string(d.Priority),
	}
	if d.DueDate != nil {
		req.DueDate = d.DueDate.String()
	}
	created, err := s.client.CreateTask(ctx, req)
	if err != nil {
		return task.Task{}, err
	}
	return created.toDomain(), nil
}

// UpdateTask implements task.Store.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	updated, err := s.client.UpdateTask(ctx, id, updateRequest(p))
	if err != nil {
		return task.Task{}, err
	}
	return updated.toDomain(), nil
}

// DeleteTask implements task.Store.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	return s.client.DeleteTask(ctx, id)
}

func updateRequest(p task.Patch) UpdateTaskRequest {
	req := UpdateTaskRequest{
		Title:       p.Title,
		Description: p.Description,
		IsDone:      p.Completed,
	}
	if p.Category != nil {
		c := string(*p.Category)
		req.Category = &c
	}
	if p.Priority != nil {
		pr := string(*p.Priority)
		req.Priority = &pr
	}
	switch {
	case p.ClearDue:
		empty := ""
		req.DueDate = &empty
	case p.DueDate != nil:
		due := p.DueDate.String()
		req.DueDate = &due
	}
	return req
}

// toDomain converts a wire task. Missing categories default to Personal and
// unknown priority names are dropped.
func (t Task) toDomain() task.Task {
	out := task.Task{
		ID:          string(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Category:    task.Category(t.Category),
		Completed:   t.IsDone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if out.Category == "" {
		out.Category = task.CategoryPersonal
	}
	if p, err := task.ParsePriority(t.Priority); err == nil {
		out.Priority = p
	}
	if t.DueDate != nil && *t.DueDate != "" {
		if d, err := task.ParseDate(*t.DueDate); err == nil {
			out.DueDate = &d
		}
	}
	for _, a := range t.Attachments {
		out.Attachments = append(out.Attachments, task.Attachment{
			Name:      a.FileName,
			URL:       a.URL,
			MediaType: a.FileType,
		})
	}
	return out
}

var _ task.Store = (*TaskStore)(nil)

// String identifies the store in logs.
func (s *TaskStore) String() string {
	return fmt.Sprintf("api(%s)", s.client.BaseURL())
}
