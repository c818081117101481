package tui

import (
	"context"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/hy4ri/todolist-tui/internal/config"
	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/tui/styles"
)

// View represents the current view/screen.
type View int

const (
	ViewList View = iota
	ViewCalendar
	ViewCalendarDay // Day detail view from calendar
	ViewTaskForm
	ViewHelp
)

// App is the main Bubble Tea model for the application.
type App struct {
	// Dependencies
	ctrl       *task.Controller
	config     *config.Config
	logger     *log.Logger
	saveConfig func(*config.Config) error
	copyText   func(string) error
	reminders  *Reminders
	now        func() time.Time

	// View state
	currentView  View
	previousView View
	filter       task.Filter

	// Derived data
	tasks    []task.Task // filtered list view
	dayTasks []task.Task // tasks with a marker on the selected calendar day
	cursor   int

	// Calendar state
	calendarDate time.Time // selected day, midnight local time

	// UI state
	loading   bool
	err       error
	statusMsg string
	width     int
	height    int

	// Components
	spinner  spinner.Model
	keyState KeyState
	keymap   Keymap

	// Form state (for add/edit)
	taskForm *TaskForm

	// Search state
	searchInput textinput.Model
	isSearching bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger for UI events.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source used for the calendar and reminders.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithClipboard overrides the function used by the copy action.
func WithClipboard(copyText func(string) error) Option {
	return func(a *App) { a.copyText = copyText }
}

// WithConfigSaver overrides how preference changes are persisted.
func WithConfigSaver(save func(*config.Config) error) Option {
	return func(a *App) { a.saveConfig = save }
}

// WithNotifier overrides the desktop notification function.
func WithNotifier(notify NotifyFunc) Option {
	return func(a *App) { a.reminders.notify = notify }
}

// NewApp creates a new App instance.
func NewApp(ctrl *task.Controller, cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	searchInput := textinput.New()
	searchInput.Placeholder = "Search tasks..."
	searchInput.CharLimit = 100
	searchInput.Width = 40

	app := &App{
		ctrl:        ctrl,
		config:      cfg,
		logger:      log.New(io.Discard),
		saveConfig:  config.Save,
		copyText:    clipboard.WriteAll,
		now:         time.Now,
		currentView: ViewList,
		filter: task.Filter{
			Status:        task.StatusAll,
			Category:      task.CategoryAll,
			Mode:          task.ViewList,
			PriorityOrder: cfg.UI.PriorityOrder,
		},
		loading:     true,
		spinner:     s,
		keymap:      DefaultKeymap(cfg.UI.VimMode),
		searchInput: searchInput,
	}
	app.reminders = NewReminders(nil, nil)

	for _, opt := range opts {
		opt(app)
	}
	app.reminders.logger = app.logger

	app.calendarDate = midnight(app.now())
	if cfg.UI.DefaultView == string(task.ViewCalendar) {
		app.currentView = ViewCalendar
		app.filter.Mode = task.ViewCalendar
	}

	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.loadTasks()}
	if a.config.UI.Notifications {
		cmds = append(cmds, checkDueCmd())
	}
	return tea.Batch(cmds...)
}

// Message types

type loadedMsg struct {
	err error
}

type mutationDoneMsg struct {
	op  string
	err error
}

type taskCreatedMsg struct {
	task task.Task
	err  error
}

type configSavedMsg struct {
	err error
}

type statusMsg struct {
	msg string
}

type errMsg struct {
	err error
}

// Commands

func (a *App) loadTasks() tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(context.Background())}
	}
}

func commitCmd(op string, m *task.Mutation) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{op: op, err: m.Commit(context.Background())}
	}
}

func (a *App) createTask(d task.Draft) tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		t, err := ctrl.Add(context.Background(), d)
		return taskCreatedMsg{task: t, err: err}
	}
}

func (a *App) savePreferences() tea.Cmd {
	cfg := *a.config
	save := a.saveConfig
	return func() tea.Msg {
		return configSavedMsg{err: save(&cfg)}
	}
}

func (a *App) copyTitle(title string) tea.Cmd {
	copyText := a.copyText
	return func() tea.Msg {
		if err := copyText(title); err != nil {
			return errMsg{err}
		}
		return statusMsg{msg: "Copied: " + title}
	}
}

func midnight(t time.Time) time.Time {
	return task.DateOf(t).In(t.Location())
}
