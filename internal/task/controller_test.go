package task_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/task/tasktest"
)

func seedTasks() []task.Task {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []task.Task{
		{ID: "1", Title: "Buy milk", Category: task.CategoryShopping, Priority: task.PriorityLow, CreatedAt: base},
		{ID: "2", Title: "Write report", Category: task.CategoryWork, Priority: task.PriorityHigh, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "Call mom", Category: task.CategoryPersonal, Completed: true, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func loadedController(t *testing.T, store *tasktest.FakeStore, creds task.Credentials) *task.Controller {
	t.Helper()
	c := task.NewController(store, creds)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestLoad(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := task.NewController(store, nil)

	if c.State() != task.StateLoading {
		t.Errorf("expected initial state loading, got %s", c.State())
	}

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != task.StateReady {
		t.Errorf("expected ready, got %s", c.State())
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("unexpected tasks %v", got)
	}
}

func TestLoadFailureKeepsTasksAndIsRetriable(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)

	store.ListErr = tasktest.ErrUnavailable
	err := c.Load(context.Background())
	if !errors.Is(err, tasktest.ErrUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
	if c.State() != task.StateError {
		t.Errorf("expected error state, got %s", c.State())
	}
	if len(c.Tasks()) != 3 {
		t.Errorf("expected previous tasks kept, got %d", len(c.Tasks()))
	}
	if c.Err() == nil {
		t.Error("expected error to be surfaced")
	}

	store.ListErr = nil
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.State() != task.StateReady || c.Err() != nil {
		t.Errorf("expected ready without error after retry, got %s / %v", c.State(), c.Err())
	}
}

func TestLoadSharesInFlightRequest(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	store.ListGate = make(chan struct{})
	c := task.NewController(store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	load := func() {
		defer wg.Done()
		errs <- c.Load(context.Background())
	}

	wg.Add(1)
	go load()
	deadline := time.Now().Add(time.Second)
	for store.Calls("list") == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	wg.Add(1)
	go load()
	time.Sleep(50 * time.Millisecond)
	close(store.ListGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Load: %v", err)
		}
	}
	if n := store.Calls("list"); n != 1 {
		t.Errorf("expected one list request, got %d", n)
	}
}

type createStub struct {
	*tasktest.FakeStore
	created task.Task
}

func (s createStub) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	return s.created, nil
}

func TestAddPrependsStoredTask(t *testing.T) {
	want := task.Task{
		ID:        "42",
		Title:     "Pay rent",
		Category:  task.CategoryPersonal,
		Completed: false,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	store := createStub{FakeStore: tasktest.NewFakeStore(seedTasks()...), created: want}
	c := task.NewController(store, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := c.Add(context.Background(), task.Draft{Title: "Pay rent", Category: task.CategoryPersonal})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Add returned %+v, want %+v", got, want)
	}
	tasks := c.Tasks()
	if !reflect.DeepEqual(tasks[0], want) {
		t.Errorf("first task %+v, want %+v", tasks[0], want)
	}
	if len(tasks) != 4 {
		t.Errorf("expected 4 tasks, got %d", len(tasks))
	}
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	before := c.Tasks()

	for _, title := range []string{"", "   "} {
		_, err := c.Add(context.Background(), task.Draft{Title: title, Category: task.CategoryWork})
		if !errors.Is(err, task.ErrValidation) {
			t.Errorf("title %q: expected validation error, got %v", title, err)
		}
	}

	if n := store.Calls("create"); n != 0 {
		t.Errorf("store must not be called, got %d create calls", n)
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Error("collection changed after rejected add")
	}
}

func TestAddDefaultsAndFailure(t *testing.T) {
	store := tasktest.NewFakeStore()
	c := loadedController(t, store, nil)

	created, err := c.Add(context.Background(), task.Draft{Title: "  Read book  "})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.Title != "Read book" || created.Category != task.CategoryPersonal || created.Priority != task.PriorityMedium {
		t.Errorf("defaults not applied: %+v", created)
	}

	store.CreateErr = tasktest.ErrUnavailable
	if _, err := c.Add(context.Background(), task.Draft{Title: "Another"}); err == nil {
		t.Fatal("expected error")
	}
	if len(c.Tasks()) != 1 {
		t.Errorf("failed add must not change the list, got %d tasks", len(c.Tasks()))
	}

	_, err = c.Add(context.Background(), task.Draft{Title: "x", Category: "Hobby"})
	if !errors.Is(err, task.ErrValidation) {
		t.Errorf("expected validation error for unknown category, got %v", err)
	}
}

func TestToggleCompletion(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)

	if err := c.ToggleCompletion(context.Background(), "1", true); err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}
	got, _ := c.Task("1")
	if !got.Completed {
		t.Error("expected task completed")
	}
	if c.State() != task.StateReady {
		t.Errorf("mutations must keep ready state, got %s", c.State())
	}
}

func TestToggleRollback(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	store.UpdateErr = tasktest.ErrUnavailable

	m, err := c.BeginToggle("1", true)
	if err != nil {
		t.Fatalf("BeginToggle: %v", err)
	}
	if got, _ := c.Task("1"); !got.Completed {
		t.Error("expected optimistic completion before commit")
	}

	if err := m.Commit(context.Background()); !errors.Is(err, tasktest.ErrUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got, _ := c.Task("1"); got.Completed {
		t.Error("expected completed=false after failed toggle")
	}
	if c.Err() == nil {
		t.Error("expected error to be surfaced")
	}
}

func TestMutationsRequirePersistedTask(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	title := "x"

	if err := c.ToggleCompletion(context.Background(), "", true); !errors.Is(err, task.ErrNotPersisted) {
		t.Errorf("toggle: expected ErrNotPersisted, got %v", err)
	}
	if err := c.Delete(context.Background(), ""); !errors.Is(err, task.ErrNotPersisted) {
		t.Errorf("delete: expected ErrNotPersisted, got %v", err)
	}
	if err := c.Update(context.Background(), "", task.Patch{Title: &title}); !errors.Is(err, task.ErrNotPersisted) {
		t.Errorf("update: expected ErrNotPersisted, got %v", err)
	}
	if err := c.ToggleCompletion(context.Background(), "missing", true); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if store.Calls("update")+store.Calls("delete") != 0 {
		t.Error("store must not be called")
	}
}

func TestDeleteRollbackRestoresOrder(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	before := c.Tasks()
	store.DeleteErr = tasktest.ErrUnavailable

	m, err := c.BeginDelete("2")
	if err != nil {
		t.Fatalf("BeginDelete: %v", err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("expected optimistic removal, got %v", got)
	}

	if err := m.Commit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Errorf("expected original list restored, got %v", ids(c.Tasks()))
	}
}

func TestDeleteRollbackAfterConcurrentAdd(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)

	m, err := c.BeginDelete("2")
	if err != nil {
		t.Fatalf("BeginDelete: %v", err)
	}
	added, err := c.Add(context.Background(), task.Draft{Title: "New"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	store.DeleteErr = tasktest.ErrUnavailable
	if err := m.Commit(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	want := []string{added.ID, "2", "1", "3"}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDelete(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)

	if err := c.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("unexpected tasks %v", got)
	}
	if len(store.Stored()) != 2 {
		t.Errorf("expected store to delete the task")
	}
}

func TestUpdateRollbackRestoresPatchedFields(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	store.UpdateErr = tasktest.ErrUnavailable

	title := "Write final report"
	prio := task.PriorityLow
	err := c.Update(context.Background(), "2", task.Patch{Title: &title, Priority: &prio})
	if err == nil {
		t.Fatal("expected error")
	}

	got, _ := c.Task("2")
	if got.Title != "Write report" || got.Priority != task.PriorityHigh {
		t.Errorf("patched fields not restored: %+v", got)
	}
	if got.Category != task.CategoryWork {
		t.Errorf("unpatched field changed: %+v", got)
	}
}

func TestUpdateAppliesConfirmedRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := tasktest.NewFakeStore(seedTasks()...)
	store.Now = func() time.Time { return now }
	c := loadedController(t, store, nil)

	due := task.Date{Year: 2024, Month: time.June, Day: 3}
	if err := c.Update(context.Background(), "1", task.Patch{DueDate: &due}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := c.Task("1")
	if got.DueDate == nil || *got.DueDate != due {
		t.Errorf("expected due date %v, got %v", due, got.DueDate)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("expected server timestamp, got %v", got.UpdatedAt)
	}

	empty := ""
	if err := c.Update(context.Background(), "1", task.Patch{Title: &empty}); !errors.Is(err, task.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateTrimsTextFields(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	var sent task.Patch
	store.OnUpdate = func(id string, p task.Patch) error {
		sent = p
		return nil
	}
	c := loadedController(t, store, nil)

	title, desc := "  padded  ", "\tnotes \n"
	m, err := c.BeginUpdate("1", task.Patch{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	if got, _ := c.Task("1"); got.Title != "padded" || got.Description != "notes" {
		t.Errorf("optimistic copy not trimmed: %q %q", got.Title, got.Description)
	}
	if err := m.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if *sent.Title != "padded" || *sent.Description != "notes" {
		t.Errorf("store received untrimmed patch: %q %q", *sent.Title, *sent.Description)
	}
	if got, _ := c.Task("1"); got.Title != "padded" {
		t.Errorf("confirmed copy: got %q", got.Title)
	}
	if title != "  padded  " {
		t.Error("caller's string was modified")
	}
}

func TestClearErr(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	store.UpdateErr = tasktest.ErrUnavailable

	done := true
	if err := c.Update(context.Background(), "1", task.Patch{Completed: &done}); err == nil {
		t.Fatal("expected error")
	}
	if c.Err() == nil {
		t.Fatal("expected the failure to be recorded")
	}

	c.ClearErr()
	if c.Err() != nil {
		t.Errorf("expected error cleared, got %v", c.Err())
	}
	if c.State() != task.StateReady {
		t.Errorf("expected load state unchanged, got %s", c.State())
	}
}

func TestStaleMutationIsDiscarded(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	store.OnUpdate = func(id string, p task.Patch) error {
		if p.Title != nil && *p.Title == "first" {
			return tasktest.ErrUnavailable
		}
		return nil
	}
	c := loadedController(t, store, nil)

	first, second := "first", "second"
	m1, err := c.BeginUpdate("2", task.Patch{Title: &first})
	if err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	m2, err := c.BeginUpdate("2", task.Patch{Title: &second})
	if err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}

	if err := m2.Commit(context.Background()); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if err := m1.Commit(context.Background()); err == nil {
		t.Fatal("expected first commit to fail")
	}

	got, _ := c.Task("2")
	if got.Title != "second" {
		t.Errorf("stale failure must not roll back newer state, got %q", got.Title)
	}
}

func TestAuthFailureInvalidatesCredential(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	creds := &tasktest.Credentials{}
	c := loadedController(t, store, creds)

	store.UpdateErr = tasktest.UnauthorizedError{}
	if err := c.ToggleCompletion(context.Background(), "1", true); err == nil {
		t.Fatal("expected error")
	}
	if creds.Invalidated() != 1 {
		t.Errorf("expected credential invalidated once, got %d", creds.Invalidated())
	}

	store.ListErr = tasktest.UnauthorizedError{}
	_ = c.Load(context.Background())
	if creds.Invalidated() != 2 {
		t.Errorf("expected load failure to invalidate, got %d", creds.Invalidated())
	}

	store.ListErr = tasktest.ErrUnavailable
	_ = c.Load(context.Background())
	if creds.Invalidated() != 2 {
		t.Error("transport failures must not invalidate the credential")
	}
}

func TestDeriveViewIsPure(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)
	before := c.Tasks()
	f := task.Filter{Query: "r", Status: task.StatusAll, PriorityOrder: true}

	first := c.DeriveView(f)
	second := c.DeriveView(f)
	if !reflect.DeepEqual(first, second) {
		t.Error("DeriveView is not deterministic")
	}
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Error("DeriveView changed the collection")
	}
}

func TestCounts(t *testing.T) {
	store := tasktest.NewFakeStore(seedTasks()...)
	c := loadedController(t, store, nil)

	counts := c.Counts()
	if all := counts[task.CategoryAll]; all.Total != 3 || all.Active != 2 || all.Completed != 1 {
		t.Errorf("unexpected totals %+v", all)
	}
	if work := counts[task.CategoryWork]; work.Total != 1 || work.Active != 1 {
		t.Errorf("unexpected work counts %+v", work)
	}
}
