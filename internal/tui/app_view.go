package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/tui/styles"
	"github.com/hy4ri/todolist-tui/internal/tui/utils"
)

const sidebarWidth = 24

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var content string
	switch a.currentView {
	case ViewHelp:
		content = a.renderHelp()
	case ViewTaskForm:
		content = a.renderTaskForm()
	case ViewCalendar:
		content = a.renderWithSidebar(a.renderCalendar())
	case ViewCalendarDay:
		content = a.renderWithSidebar(a.renderCalendarDay())
	default:
		content = a.renderWithSidebar(a.renderTaskList())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		content,
		a.renderStatusBar(),
	)
}

func (a *App) renderHeader() string {
	title := styles.Title.Render("Todo List")
	var parts []string
	if a.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", a.filter.Query))
	}
	if a.filter.PriorityOrder {
		parts = append(parts, "by priority")
	}
	if len(parts) == 0 {
		return title
	}
	return title + "  " + styles.Subtitle.Render(strings.Join(parts, " · "))
}

func (a *App) contentHeight() int {
	h := a.height - 4 // header, status bar, borders
	if h < 5 {
		h = 5
	}
	return h
}

func (a *App) renderWithSidebar(main string) string {
	mainWidth := a.width - sidebarWidth - 6
	if mainWidth < 30 {
		mainWidth = 30
	}
	h := a.contentHeight()

	sidebar := styles.Sidebar.Width(sidebarWidth).Height(h).Render(a.renderSidebar())
	body := styles.MainContent.Width(mainWidth).Height(h).Render(main)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
}

// renderSidebar lists the status filters and the categories with counts.
func (a *App) renderSidebar() string {
	var b strings.Builder
	counts := a.ctrl.Counts()
	all := counts[task.CategoryAll]

	b.WriteString(styles.Subtitle.Render("Status"))
	b.WriteString("\n")
	for _, s := range []struct {
		filter task.StatusFilter
		count  int
	}{
		{task.StatusAll, all.Total},
		{task.StatusActive, all.Active},
		{task.StatusCompleted, all.Completed},
	} {
		b.WriteString(sidebarEntry(string(s.filter), s.count, a.filter.Status == s.filter))
	}

	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Categories"))
	b.WriteString("\n")
	b.WriteString(sidebarEntry("all", all.Total, a.filter.Category == task.CategoryAll))
	for _, c := range task.Categories {
		n := counts[c]
		label := styles.CategoryStyle(c).PaddingLeft(0).Render("●") + " " + string(c)
		b.WriteString(sidebarEntry(label, n.Active, a.filter.Category == c))
	}

	return b.String()
}

func sidebarEntry(label string, count int, active bool) string {
	style := styles.SidebarItem
	prefix := "  "
	if active {
		style = styles.SidebarActive
		prefix = "> "
	}
	num := styles.SidebarCount.Render(fmt.Sprintf("%d", count))
	pad := sidebarWidth - 4 - lipgloss.Width(prefix+label) - lipgloss.Width(num)
	if pad < 1 {
		pad = 1
	}
	return style.Render(prefix+label) + strings.Repeat(" ", pad) + num + "\n"
}

// renderTaskList renders the derived list view with a scroll window around
// the cursor.
func (a *App) renderTaskList() string {
	var b strings.Builder

	heading := "Tasks"
	if a.filter.Category != task.CategoryAll {
		heading = string(a.filter.Category)
	}
	b.WriteString(styles.Title.Render(heading))
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("  %d · %s", len(a.tasks), a.filter.Status)))
	b.WriteString("\n")
	if a.isSearching {
		b.WriteString(a.searchInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(a.tasks) == 0 {
		switch {
		case a.loading:
			b.WriteString(styles.HelpDesc.Render("Loading tasks..."))
		case a.filter.Query != "":
			b.WriteString(styles.HelpDesc.Render("No tasks match your search"))
		default:
			b.WriteString(styles.HelpDesc.Render("No tasks. Press a to add one."))
		}
		return b.String()
	}

	rows := a.contentHeight() - 4
	if rows < 1 {
		rows = 1
	}
	start := 0
	if a.cursor >= rows {
		start = a.cursor - rows + 1
	}
	end := start + rows
	if end > len(a.tasks) {
		end = len(a.tasks)
	}

	for i := start; i < end; i++ {
		b.WriteString(a.renderTaskLine(a.tasks[i], i == a.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func checkbox(t task.Task) string {
	if t.Completed {
		return styles.CheckboxChecked
	}
	return styles.CheckboxUnchecked
}

// renderTaskLine renders one task: checkbox, priority-coloured title,
// category tag and due date.
func (a *App) renderTaskLine(t task.Task, selected bool) string {
	titleWidth := a.width - sidebarWidth - 40
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := utils.TruncateString(utils.FirstLine(t.Title), titleWidth)
	if t.Completed {
		title = styles.TaskCompleted.Render(title)
	} else {
		title = styles.PriorityStyle(t.Priority).Render(title)
	}

	line := checkbox(t) + " " + title + styles.CategoryStyle(t.Category).Render("#"+string(t.Category))

	if t.DueDate != nil {
		now := a.now()
		due := t.DueDate.String()
		switch {
		case t.IsOverdue(now):
			line += styles.TaskDueOverdue.Render(due)
		case t.IsDueOn(task.DateOf(now)):
			line += styles.TaskDueToday.Render("today")
		default:
			line += styles.TaskDue.Render(due)
		}
	}

	if selected {
		line = styles.TaskSelected.Render(line)
		if t.Description != "" {
			desc := utils.TruncateString(utils.FirstLine(t.Description), titleWidth)
			line += "\n" + styles.TaskDescription.Render(desc)
		}
		return line
	}
	return styles.TaskItem.Render(line)
}

// renderTaskForm renders the add/edit dialog centered on screen.
func (a *App) renderTaskForm() string {
	if a.taskForm == nil {
		return ""
	}
	dialog := styles.Dialog.Render(a.taskForm.View())
	return lipgloss.Place(a.width, a.contentHeight(), lipgloss.Center, lipgloss.Center, dialog)
}

func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, item := range a.keymap.HelpItems() {
		switch {
		case item[0] == "" && item[1] == "":
			b.WriteString("\n")
		case item[1] == "":
			b.WriteString(styles.Subtitle.Render(item[0]))
			b.WriteString("\n")
		default:
			b.WriteString(styles.HelpKey.Render(utils.PadRight(item[0], 12)))
			b.WriteString(styles.HelpDesc.Render(item[1]))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpDesc.Render("Press ? or esc to close"))
	return b.String()
}

func (a *App) renderStatusBar() string {
	var left string
	switch {
	case a.loading:
		left = a.spinner.View() + " " + styles.StatusBarText.Render(a.statusOr("Loading..."))
	case a.err != nil:
		left = styles.StatusBarError.Render("Error: " + a.err.Error())
	case a.statusMsg != "":
		left = styles.StatusBarSuccess.Render(a.statusMsg)
	}

	hints := []string{"a add", "x done", "dd delete", "/ search", "v view", "? help", "q quit"}
	var right strings.Builder
	for i, h := range hints {
		if i > 0 {
			right.WriteString(styles.StatusBarText.Render(" • "))
		}
		key, desc, _ := strings.Cut(h, " ")
		right.WriteString(styles.StatusBarKey.Render(key) + styles.StatusBarText.Render(" "+desc))
	}

	width := a.width - 2
	gap := width - lipgloss.Width(left) - lipgloss.Width(right.String())
	if gap < 1 {
		return styles.StatusBar.Width(a.width).MaxHeight(1).Render(left)
	}
	return styles.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", gap) + right.String())
}

func (a *App) statusOr(fallback string) string {
	if a.statusMsg != "" {
		return a.statusMsg
	}
	return fallback
}
