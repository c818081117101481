package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/tui/styles"
	"github.com/hy4ri/todolist-tui/internal/tui/utils"
)

// handleCalendarAction handles navigation in the month grid. It reports false
// for actions the grid does not handle itself.
func (a *App) handleCalendarAction(action string) (tea.Cmd, bool) {
	switch action {
	case "left":
		a.moveCalendar(0, -1)
	case "right":
		a.moveCalendar(0, 1)
	case "up":
		a.moveCalendar(0, -7)
	case "down":
		a.moveCalendar(0, 7)
	case "prev_month":
		a.moveCalendar(-1, 0)
	case "next_month":
		a.moveCalendar(1, 0)
	case "today":
		a.calendarDate = midnight(a.now())
		a.refresh()
	case "select":
		a.currentView = ViewCalendarDay
		a.cursor = 0
		a.refresh()
	case "back":
		a.toggleCalendar()
	case "complete", "delete", "edit", "copy", "top", "bottom":
		// These act on a task; the grid has none selected.
	default:
		return nil, false
	}
	return nil, true
}

// moveCalendar moves the selected day by months and days. Month steps keep
// the day of month, clamped to the target month's length.
func (a *App) moveCalendar(months, days int) {
	d := a.calendarDate
	if months != 0 {
		first := d.AddDate(0, 0, 1-d.Day()).AddDate(0, months, 0)
		day := d.Day()
		if n := task.DaysInMonth(first.Year(), first.Month()); day > n {
			day = n
		}
		d = first.AddDate(0, 0, day-1)
	}
	a.calendarDate = d.AddDate(0, 0, days)
	a.refresh()
}

// tasksOnDay returns the tasks with a start or due marker on d, once each.
func (a *App) tasksOnDay(d task.Date) []task.Task {
	m := a.ctrl.Month(d.Year, d.Month, a.calendarDate.Location())
	c := m.Cell(d.Day)
	if c == nil {
		return nil
	}
	seen := make(map[string]bool, len(c.Markers))
	var out []task.Task
	for _, mk := range c.Markers {
		if seen[mk.Task.ID] {
			continue
		}
		seen[mk.Task.ID] = true
		out = append(out, mk.Task)
	}
	return out
}

// renderCalendar renders the month grid around the selected day.
func (a *App) renderCalendar() string {
	var b strings.Builder

	sel := a.calendarDate
	m := a.ctrl.Month(sel.Year(), sel.Month(), sel.Location())
	today := task.DateOf(a.now().In(sel.Location()))
	selected := task.DateOf(sel)

	b.WriteString(styles.CalendarHeader.Render(strings.ToUpper(sel.Format("January 2006"))))
	b.WriteString("\n")
	b.WriteString(styles.HelpDesc.Render("h/l day | j/k week | [/] month | t today | enter day tasks"))
	b.WriteString("\n\n")

	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		b.WriteString(styles.CalendarWeekday.Render(fmt.Sprintf(" %-5s", wd)))
	}
	b.WriteString("\n")

	for _, week := range m.Weeks {
		for i, cell := range week {
			b.WriteString(renderCell(cell, i, cell.Date == selected, cell.Date == today))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.CalendarMarkerStart.Render("S") + styles.HelpDesc.Render(" created  "))
	b.WriteString(styles.CalendarMarkerDue.Render("D") + styles.HelpDesc.Render(" due"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render(sel.Format("Monday, January 2")))
	b.WriteString("\n")
	if len(a.dayTasks) == 0 {
		b.WriteString(styles.HelpDesc.Render("No tasks for this day"))
	} else {
		for _, t := range a.dayTasks {
			b.WriteString("  " + checkbox(t) + " " + utils.TruncateString(t.Title, 50) + "\n")
		}
	}

	return b.String()
}

func renderCell(cell task.Cell, weekday int, selected, today bool) string {
	var start, due bool
	for _, mk := range cell.Markers {
		if mk.Kind == task.MarkerDue {
			due = true
		} else {
			start = true
		}
	}

	style := styles.CalendarDay
	switch {
	case selected:
		style = styles.CalendarDaySelected
	case !cell.InMonth:
		style = styles.CalendarDayOtherMonth
	case today:
		style = styles.CalendarDayToday
	case start || due:
		style = styles.CalendarDayWithTasks
	case weekday == 0 || weekday == 6:
		style = styles.CalendarDayWeekend
	}

	markers := "  "
	if cell.InMonth {
		s, d := " ", " "
		if start {
			s = styles.CalendarMarkerStart.Render("S")
		}
		if due {
			d = styles.CalendarMarkerDue.Render("D")
		}
		markers = s + d
	}
	return style.Render(fmt.Sprintf(" %2d", cell.Date.Day)) + markers + " "
}

// renderCalendarDay renders the tasks of the selected calendar day.
func (a *App) renderCalendarDay() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(a.calendarDate.Format("Monday, January 2 2006")))
	b.WriteString("\n")
	b.WriteString(styles.HelpDesc.Render("esc back to calendar"))
	b.WriteString("\n\n")

	if len(a.dayTasks) == 0 {
		b.WriteString(styles.HelpDesc.Render("No tasks for this day"))
		return b.String()
	}

	day := task.DateOf(a.calendarDate)
	for i, t := range a.dayTasks {
		var kinds []string
		if !t.CreatedAt.IsZero() && task.DateOf(t.CreatedAt.In(a.calendarDate.Location())) == day {
			kinds = append(kinds, styles.CalendarMarkerStart.Render("created"))
		}
		if t.IsDueOn(day) {
			kinds = append(kinds, styles.CalendarMarkerDue.Render("due"))
		}
		b.WriteString(a.renderTaskLine(t, i == a.cursor) + " " + strings.Join(kinds, " "))
		b.WriteString("\n")
	}
	return b.String()
}
