package tui

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hy4ri/todolist-tui/internal/config"
	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/task/tasktest"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func seedTasks() []task.Task {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := task.Date{Year: 2024, Month: time.March, Day: 12}
	return []task.Task{
		{ID: "1", Title: "Buy milk", Category: task.CategoryShopping, Priority: task.PriorityLow, CreatedAt: base},
		{ID: "2", Title: "Write report", Category: task.CategoryWork, Priority: task.PriorityHigh, CreatedAt: base.Add(time.Hour), DueDate: &due},
		{ID: "3", Title: "Call mom", Category: task.CategoryPersonal, Completed: true, CreatedAt: base.Add(2 * time.Hour)},
	}
}

type testApp struct {
	*App
	store  *tasktest.FakeStore
	saved  []config.Config
	copied []string
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.UI.PriorityOrder = false
	cfg.UI.Notifications = false
	if mutate != nil {
		mutate(cfg)
	}

	ta := &testApp{store: tasktest.NewFakeStore(seedTasks()...)}
	ctrl := task.NewController(ta.store, nil)
	ta.App = NewApp(ctrl, cfg,
		WithClock(func() time.Time { return testNow }),
		WithNotifier(func(string, string) error { return nil }),
		WithClipboard(func(s string) error {
			ta.copied = append(ta.copied, s)
			return nil
		}),
		WithConfigSaver(func(c *config.Config) error {
			ta.saved = append(ta.saved, *c)
			return nil
		}),
	)
	ta.App.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return ta
}

func (ta *testApp) load(t *testing.T) {
	t.Helper()
	ta.send(ta.loadTasks()())
	if ta.err != nil {
		t.Fatalf("load: %v", ta.err)
	}
}

func (ta *testApp) send(msg tea.Msg) tea.Cmd {
	_, cmd := ta.App.Update(msg)
	return cmd
}

func (ta *testApp) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = ta.send(keyMsg(k))
	}
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// typeText sends s as one rune key press per character.
func (ta *testApp) typeText(s string) {
	for _, r := range s {
		ta.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// runCmd executes cmd and feeds its message back into the app.
func (ta *testApp) runCmd(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	ta.send(cmd())
}

func listIDs(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestLoadPopulatesList(t *testing.T) {
	ta := newTestApp(t, nil)
	if !ta.loading {
		t.Error("expected loading before the first load")
	}

	ta.load(t)

	if ta.loading {
		t.Error("expected loading to stop")
	}
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("unexpected list %v", got)
	}
}

func TestLoadFailureShowsErrorAndRetries(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.store.ListErr = tasktest.ErrUnavailable
	ta.send(ta.loadTasks()())

	if ta.err == nil {
		t.Fatal("expected load error in status")
	}

	ta.store.ListErr = nil
	cmd := ta.press("r")
	if !ta.loading {
		t.Error("expected refresh to show loading")
	}
	ta.runCmd(t, cmd)
	if ta.err != nil || len(ta.tasks) != 3 {
		t.Errorf("expected successful retry, err=%v tasks=%d", ta.err, len(ta.tasks))
	}
}

func TestUnauthorizedLoadSuggestsLogin(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.store.ListErr = tasktest.UnauthorizedError{}
	ta.send(ta.loadTasks()())

	if ta.err == nil || !strings.Contains(ta.err.Error(), "--login") {
		t.Errorf("expected login hint, got %v", ta.err)
	}
}

func TestCursorMovement(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("j", "j", "j")
	if ta.cursor != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", ta.cursor)
	}
	ta.press("g", "g")
	if ta.cursor != 0 {
		t.Errorf("expected gg to go to top, got %d", ta.cursor)
	}
	ta.press("G")
	if ta.cursor != 2 {
		t.Errorf("expected G to go to bottom, got %d", ta.cursor)
	}
	ta.press("k")
	if ta.cursor != 1 {
		t.Errorf("expected k to move up, got %d", ta.cursor)
	}
}

func TestVimKeysDisabled(t *testing.T) {
	ta := newTestApp(t, func(c *config.Config) { c.UI.VimMode = false })
	ta.load(t)

	ta.press("j")
	if ta.cursor != 0 {
		t.Errorf("expected j to be ignored, got cursor %d", ta.cursor)
	}
	ta.press("down")
	if ta.cursor != 1 {
		t.Errorf("expected arrow key to move, got cursor %d", ta.cursor)
	}
}

func TestAddTaskEmptyTitleSendsNothing(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("a")
	if ta.currentView != ViewTaskForm {
		t.Fatalf("expected form view, got %v", ta.currentView)
	}
	if cmd := ta.press("enter"); cmd != nil {
		t.Error("expected no command for an empty title")
	}
	if ta.taskForm == nil || ta.taskForm.Err == "" {
		t.Error("expected validation message on the form")
	}
	if n := ta.store.Calls("create"); n != 0 {
		t.Errorf("expected no create request, got %d", n)
	}
}

func TestAddTask(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("a")
	ta.typeText("Plan trip")
	cmd := ta.press("enter")
	ta.runCmd(t, cmd)

	if ta.currentView != ViewList || ta.taskForm != nil {
		t.Errorf("expected form closed, view %v", ta.currentView)
	}
	if len(ta.tasks) != 4 || ta.tasks[0].Title != "Plan trip" {
		t.Fatalf("expected new task first, got %v", listIDs(ta.tasks))
	}
	if ta.tasks[0].Category != task.CategoryPersonal || ta.tasks[0].Priority != task.PriorityMedium {
		t.Errorf("expected defaults, got %+v", ta.tasks[0])
	}
	if ta.cursor != 0 {
		t.Errorf("expected cursor on new task, got %d", ta.cursor)
	}
}

func TestAddTaskFailureKeepsForm(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)
	ta.store.CreateErr = tasktest.ErrUnavailable

	ta.press("a")
	ta.typeText("Plan trip")
	ta.runCmd(t, ta.press("enter"))

	if ta.currentView != ViewTaskForm || ta.taskForm == nil || ta.taskForm.Err == "" {
		t.Error("expected form to stay open with the error")
	}
	if len(ta.tasks) != 3 {
		t.Errorf("expected collection unchanged, got %d tasks", len(ta.tasks))
	}
}

func TestEditTaskSendsChangedFields(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	var got task.Patch
	ta.store.OnUpdate = func(id string, p task.Patch) error {
		got = p
		return nil
	}

	ta.press("e")
	if ta.taskForm == nil || ta.taskForm.Mode != "edit" {
		t.Fatal("expected edit form")
	}
	ta.typeText(" today")
	cmd := ta.press("enter")

	if ta.tasks[0].Title != "Buy milk today" {
		t.Errorf("expected optimistic title, got %q", ta.tasks[0].Title)
	}
	ta.runCmd(t, cmd)

	if got.Title == nil || *got.Title != "Buy milk today" {
		t.Errorf("expected title in patch, got %+v", got)
	}
	if got.Category != nil || got.Priority != nil || got.Description != nil || got.DueDate != nil || got.ClearDue {
		t.Errorf("expected only title in patch, got %+v", got)
	}
}

func TestEditWithoutChangesSendsNothing(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("e")
	if cmd := ta.press("enter"); cmd != nil {
		t.Error("expected no command")
	}
	if ta.currentView != ViewList || ta.statusMsg != "No changes" {
		t.Errorf("expected form closed with status, got view %v %q", ta.currentView, ta.statusMsg)
	}
	if ta.store.Calls("update") != 0 {
		t.Error("expected no update request")
	}
}

func TestToggleCompletion(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	cmd := ta.press("x")
	if !ta.tasks[0].Completed {
		t.Error("expected optimistic completion")
	}
	ta.runCmd(t, cmd)
	if !ta.tasks[0].Completed || ta.err != nil {
		t.Errorf("expected confirmed completion, err=%v", ta.err)
	}
	if ta.statusMsg != "Task completed" {
		t.Errorf("unexpected status %q", ta.statusMsg)
	}
}

func TestToggleRollbackShowsError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)
	ta.store.UpdateErr = tasktest.ErrUnavailable

	ta.runCmd(t, ta.press("x"))

	if ta.tasks[0].Completed {
		t.Error("expected rollback")
	}
	if !errors.Is(ta.err, tasktest.ErrUnavailable) {
		t.Errorf("expected store error in status, got %v", ta.err)
	}
}

func TestDeleteNeedsDoubleD(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	if cmd := ta.press("d"); cmd != nil {
		t.Fatal("single d must not delete")
	}
	if len(ta.tasks) != 3 {
		t.Fatal("single d must not delete")
	}

	cmd := ta.press("d")
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("expected optimistic delete, got %v", got)
	}
	ta.runCmd(t, cmd)
	if ta.store.Calls("delete") != 1 || len(ta.store.Stored()) != 2 {
		t.Error("expected delete request")
	}
}

func TestDeleteRollback(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)
	ta.store.DeleteErr = tasktest.ErrUnavailable

	ta.press("j")
	ta.runCmd(t, ta.press("d", "d"))

	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("expected restored order, got %v", got)
	}
	if ta.err == nil {
		t.Error("expected error in status")
	}

	ta.press("esc")
	if ta.err != nil || ta.ctrl.Err() != nil {
		t.Errorf("expected esc to dismiss the error, got %v / %v", ta.err, ta.ctrl.Err())
	}
}

func TestSearchFiltersAsYouType(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("/")
	if !ta.isSearching {
		t.Fatal("expected search mode")
	}
	ta.typeText("REP")
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("expected case-insensitive match, got %v", got)
	}

	ta.press("enter")
	if ta.isSearching || ta.filter.Query != "REP" {
		t.Errorf("expected query kept after enter, got %q", ta.filter.Query)
	}

	ta.press("/", "esc")
	if ta.filter.Query != "" || len(ta.tasks) != 3 {
		t.Errorf("expected search cleared, got %q", ta.filter.Query)
	}
}

func TestCycleFilters(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("s")
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("expected active tasks, got %v", got)
	}
	ta.press("s")
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("expected completed tasks, got %v", got)
	}
	ta.press("s")

	var seen []task.Category
	for i := 0; i <= len(task.Categories); i++ {
		ta.press("c")
		seen = append(seen, ta.filter.Category)
	}
	want := append(append([]task.Category(nil), task.Categories...), task.CategoryAll)
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("unexpected category cycle %v", seen)
	}
}

func TestNextCategory(t *testing.T) {
	tests := []struct {
		in, want task.Category
	}{
		{task.CategoryAll, task.CategoryPersonal},
		{"", task.CategoryPersonal},
		{task.CategoryPersonal, task.CategoryWork},
		{task.CategoryOthers, task.CategoryAll},
	}
	for _, tt := range tests {
		if got := nextCategory(tt.in); got != tt.want {
			t.Errorf("nextCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriorityOrderTogglesAndSaves(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	cmd := ta.press("p")
	if got := listIDs(ta.tasks); !reflect.DeepEqual(got, []string{"2", "3", "1"}) {
		t.Errorf("expected priority order, got %v", got)
	}
	ta.runCmd(t, cmd)
	if len(ta.saved) != 1 || !ta.saved[0].UI.PriorityOrder {
		t.Errorf("expected preference saved, got %+v", ta.saved)
	}
}

func TestCopyTitle(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("j")
	ta.runCmd(t, ta.press("y"))

	if !reflect.DeepEqual(ta.copied, []string{"Write report"}) {
		t.Errorf("unexpected clipboard writes %v", ta.copied)
	}
	if !strings.Contains(ta.statusMsg, "Write report") {
		t.Errorf("unexpected status %q", ta.statusMsg)
	}
}

func TestHelpView(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	ta.press("?")
	if ta.currentView != ViewHelp {
		t.Fatalf("expected help view, got %v", ta.currentView)
	}
	if !strings.Contains(ta.View(), "Keyboard Shortcuts") {
		t.Error("expected help content")
	}
	ta.press("esc")
	if ta.currentView != ViewList {
		t.Errorf("expected list view, got %v", ta.currentView)
	}
}

func TestViewRendersTasks(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.load(t)

	out := ta.View()
	for _, want := range []string{"Buy milk", "Write report", "#Work", "2024-03-12", "Categories"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestQuit(t *testing.T) {
	ta := newTestApp(t, nil)
	cmd := ta.press("q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
