package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hy4ri/todolist-tui/internal/task"
)

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.taskForm != nil {
			a.taskForm.SetWidth(msg.Width)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case checkDueMsg:
		return a, a.handleCheckDue(time.Time(msg))

	case loadedMsg:
		a.loading = false
		a.refresh()
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.err = nil
		a.statusMsg = fmt.Sprintf("Loaded %d tasks", len(a.ctrl.Tasks()))
		if a.config.UI.Notifications {
			return a, a.reminders.Check(a.now(), a.ctrl.Tasks())
		}
		return a, nil

	case mutationDoneMsg:
		a.loading = false
		a.refresh()
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.statusMsg = msg.op
		return a, nil

	case taskCreatedMsg:
		a.loading = false
		if msg.err != nil {
			if a.taskForm != nil {
				a.taskForm.Err = msg.err.Error()
			}
			a.setError(msg.err)
			return a, nil
		}
		a.err = nil
		a.statusMsg = "Task added"
		a.closeForm()
		a.refresh()
		a.selectTask(msg.task.ID)
		return a, nil

	case configSavedMsg:
		if msg.err != nil {
			a.logger.Warn("save preferences", "err", msg.err)
			a.err = fmt.Errorf("save preferences: %w", msg.err)
		}
		return a, nil

	case errMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case statusMsg:
		a.statusMsg = msg.msg
		return a, nil
	}

	return a, nil
}

// setError records err for the status bar. Authorization failures get a hint
// on how to sign in again.
func (a *App) setError(err error) {
	if task.IsUnauthorized(err) {
		err = fmt.Errorf("%w (run with --login to sign in)", err)
	}
	a.err = err
	a.statusMsg = ""
}

// refresh recomputes the derived views from the controller and clamps the
// cursor.
func (a *App) refresh() {
	a.tasks = a.ctrl.DeriveView(a.filter)
	a.dayTasks = a.tasksOnDay(task.DateOf(a.calendarDate))

	n := len(a.visibleTasks())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// visibleTasks returns the tasks the cursor moves over in the current view.
func (a *App) visibleTasks() []task.Task {
	if a.currentView == ViewCalendarDay {
		return a.dayTasks
	}
	return a.tasks
}

// selectedTask returns the task under the cursor.
func (a *App) selectedTask() (task.Task, bool) {
	tasks := a.visibleTasks()
	if a.cursor < 0 || a.cursor >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[a.cursor], true
}

func (a *App) selectTask(id string) {
	for i, t := range a.visibleTasks() {
		if t.ID == id {
			a.cursor = i
			return
		}
	}
}

func (a *App) closeForm() {
	a.taskForm = nil
	if a.currentView == ViewTaskForm {
		a.currentView = a.previousView
	}
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch {
	case a.currentView == ViewTaskForm:
		return a.handleFormKey(msg)
	case a.isSearching:
		return a.handleSearchKey(msg)
	case a.currentView == ViewHelp:
		switch msg.String() {
		case "esc", "?", "q":
			a.currentView = a.previousView
		}
		return a, nil
	}

	action, consumed := a.keyState.HandleKey(msg, a.keymap)
	if !consumed || action == "" {
		return a, nil
	}

	switch a.currentView {
	case ViewCalendar:
		if cmd, ok := a.handleCalendarAction(action); ok {
			return a, cmd
		}
	case ViewCalendarDay:
		if action == "back" {
			a.currentView = ViewCalendar
			a.cursor = 0
			return a, nil
		}
	}

	return a, a.handleAction(action)
}

// handleAction runs an action shared by the list and day views.
func (a *App) handleAction(action string) tea.Cmd {
	switch action {
	case "quit":
		return tea.Quit

	case "help":
		a.previousView = a.currentView
		a.currentView = ViewHelp

	case "back":
		if a.filter.Query != "" {
			a.filter.Query = ""
			a.searchInput.SetValue("")
			a.refresh()
		}
		a.err = nil
		a.ctrl.ClearErr()

	case "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down":
		if a.cursor < len(a.visibleTasks())-1 {
			a.cursor++
		}
	case "top":
		a.cursor = 0
	case "bottom":
		if n := len(a.visibleTasks()); n > 0 {
			a.cursor = n - 1
		}

	case "refresh":
		a.loading = true
		a.statusMsg = "Refreshing..."
		return a.loadTasks()

	case "add":
		a.openForm(NewTaskForm())
	case "edit":
		if t, ok := a.selectedTask(); ok {
			a.openForm(NewEditTaskForm(t))
		}
	case "complete":
		return a.toggleSelected()
	case "delete":
		return a.deleteSelected()
	case "copy":
		if t, ok := a.selectedTask(); ok {
			return a.copyTitle(t.Title)
		}

	case "search":
		a.isSearching = true
		a.searchInput.SetValue(a.filter.Query)
		a.searchInput.CursorEnd()
		return a.searchInput.Focus()
	case "cycle_status":
		a.filter.Status = a.filter.Status.Next()
		a.statusMsg = "Status: " + string(a.filter.Status)
		a.cursor = 0
		a.refresh()
	case "cycle_category":
		a.filter.Category = nextCategory(a.filter.Category)
		a.statusMsg = "Category: " + string(a.filter.Category)
		a.cursor = 0
		a.refresh()
	case "priority_order":
		a.filter.PriorityOrder = !a.filter.PriorityOrder
		a.config.UI.PriorityOrder = a.filter.PriorityOrder
		if a.filter.PriorityOrder {
			a.statusMsg = "Ordering by priority"
		} else {
			a.statusMsg = "Ordering as loaded"
		}
		a.refresh()
		return a.savePreferences()
	case "toggle_calendar":
		a.toggleCalendar()
	}
	return nil
}

// nextCategory cycles all → each category → all.
func nextCategory(c task.Category) task.Category {
	if c == task.CategoryAll || c == "" {
		return task.Categories[0]
	}
	for i, known := range task.Categories {
		if known == c && i+1 < len(task.Categories) {
			return task.Categories[i+1]
		}
	}
	return task.CategoryAll
}

func (a *App) toggleCalendar() {
	a.cursor = 0
	if a.currentView == ViewList {
		a.currentView = ViewCalendar
		a.filter.Mode = task.ViewCalendar
	} else {
		a.currentView = ViewList
		a.filter.Mode = task.ViewList
	}
	a.refresh()
}

func (a *App) toggleSelected() tea.Cmd {
	t, ok := a.selectedTask()
	if !ok {
		return nil
	}
	m, err := a.ctrl.BeginToggle(t.ID, !t.Completed)
	if err != nil {
		a.setError(err)
		return nil
	}
	a.refresh()
	a.selectTask(t.ID)
	op := "Task completed"
	if t.Completed {
		op = "Task reopened"
	}
	return commitCmd(op, m)
}

func (a *App) deleteSelected() tea.Cmd {
	t, ok := a.selectedTask()
	if !ok {
		return nil
	}
	m, err := a.ctrl.BeginDelete(t.ID)
	if err != nil {
		a.setError(err)
		return nil
	}
	a.refresh()
	return commitCmd("Task deleted", m)
}

func (a *App) openForm(f *TaskForm) {
	f.SetWidth(a.width)
	a.taskForm = f
	a.previousView = a.currentView
	a.currentView = ViewTaskForm
}

// handleFormKey handles input while the task form is open.
func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeForm()
		return a, nil
	case "enter":
		return a, a.submitForm()
	}

	var cmd tea.Cmd
	a.taskForm, cmd = a.taskForm.Update(msg)
	return a, cmd
}

// submitForm validates the form and starts the create or update. Invalid
// input keeps the form open and sends nothing.
func (a *App) submitForm() tea.Cmd {
	f := a.taskForm
	if f.Mode == "edit" {
		patch, err := f.ToPatch()
		if err != nil {
			return nil
		}
		if patch.Empty() {
			a.closeForm()
			a.statusMsg = "No changes"
			return nil
		}
		m, err := a.ctrl.BeginUpdate(f.TaskID, patch)
		if err != nil {
			f.Err = err.Error()
			return nil
		}
		a.closeForm()
		a.refresh()
		a.selectTask(f.TaskID)
		return commitCmd("Task updated", m)
	}

	draft, err := f.ToDraft()
	if err != nil {
		return nil
	}
	a.loading = true
	a.statusMsg = "Saving..."
	return a.createTask(draft)
}

// handleSearchKey handles input while the search box is focused. The filter
// follows the input as it is typed.
func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.isSearching = false
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.filter.Query = ""
		a.refresh()
		return a, nil
	case "enter":
		a.isSearching = false
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if q := a.searchInput.Value(); q != a.filter.Query {
		a.filter.Query = q
		a.cursor = 0
		a.refresh()
	}
	return a, cmd
}
