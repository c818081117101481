package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"

	"github.com/hy4ri/todolist-tui/internal/task"
)

// reminderHour is when tasks due today are announced.
const reminderHour = 9

// NotifyFunc sends a desktop notification.
type NotifyFunc func(title, message string) error

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Reminders announces tasks due today, at most once per task per session.
type Reminders struct {
	notified map[string]bool
	notify   NotifyFunc
	logger   *log.Logger
}

// NewReminders creates a reminder tracker. A nil notify uses the desktop
// notifier.
func NewReminders(notify NotifyFunc, logger *log.Logger) *Reminders {
	if notify == nil {
		notify = beeepNotify
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reminders{
		notified: make(map[string]bool),
		notify:   notify,
		logger:   logger,
	}
}

// Due returns the tasks to announce at now and marks them as notified.
// Incomplete tasks due today are announced from 09:00 local time. Overdue
// tasks are marked silently so they are never announced.
func (r *Reminders) Due(now time.Time, tasks []task.Task) []task.Task {
	today := task.DateOf(now)
	remindAt := today.In(now.Location()).Add(reminderHour * time.Hour)

	var due []task.Task
	for _, t := range tasks {
		if !t.Persisted() || t.Completed || t.DueDate == nil || r.notified[t.ID] {
			continue
		}
		if t.IsOverdue(now) {
			r.notified[t.ID] = true
			continue
		}
		if !t.IsDueOn(today) || now.Before(remindAt) {
			continue
		}
		r.notified[t.ID] = true
		due = append(due, t)
	}
	return due
}

// Check returns a command that sends one notification per task due at now.
func (r *Reminders) Check(now time.Time, tasks []task.Task) tea.Cmd {
	due := r.Due(now, tasks)
	if len(due) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(due))
	for _, t := range due {
		title := string(t.Category)
		message := "Task Due: " + t.Title
		cmds = append(cmds, func() tea.Msg {
			if err := r.notify(title, message); err != nil {
				r.logger.Warn("notification failed", "err", err)
			}
			return nil
		})
	}
	r.logger.Debug("sending reminders", "count", len(due))
	return tea.Batch(cmds...)
}

type checkDueMsg time.Time

func checkDueCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return checkDueMsg(t)
	})
}

func (a *App) handleCheckDue(t time.Time) tea.Cmd {
	// Always schedule the next check
	cmds := []tea.Cmd{checkDueCmd()}
	if a.config.UI.Notifications {
		cmds = append(cmds, a.reminders.Check(t, a.ctrl.Tasks()))
	}
	return tea.Batch(cmds...)
}
