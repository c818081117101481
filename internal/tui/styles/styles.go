// Package styles holds the Lip Gloss palette and styles used by the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hy4ri/todolist-tui/internal/task"
)

// Palette. Adaptive colors pick a variant for light or dark terminals.
var (
	Subtle       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	Highlight    = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6666"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66FF66"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFCC66"}

	barFg       = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}
	barBg       = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#1F1F1F"}
	selectionBg = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#2A2A2A"}
)

var priorityColors = map[task.Priority]lipgloss.Color{
	task.PriorityHigh:   "#D0473D",
	task.PriorityMedium: "#EA8811",
	task.PriorityLow:    "#296FDF",
}

var categoryColors = map[task.Category]lipgloss.AdaptiveColor{
	task.CategoryPersonal: {Light: "#2E7D32", Dark: "#81C784"},
	task.CategoryWork:     {Light: "#1565C0", Dark: "#64B5F6"},
	task.CategoryStudy:    {Light: "#6A1B9A", Dark: "#BA68C8"},
	task.CategoryShopping: {Light: "#EF6C00", Dark: "#FFB74D"},
	task.CategoryOthers:   {Light: "#555555", Dark: "#AAAAAA"},
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.TerminalColor) lipgloss.Style {
	return fg(c).Bold(true)
}

func onBar(s lipgloss.Style) lipgloss.Style {
	return s.Background(barBg)
}

func boxed(border lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// Headings and layout.
var (
	Title       = bold(Highlight)
	Subtitle    = bold(Subtle)
	Sidebar     = boxed(Subtle).Padding(0, 1)
	MainContent = boxed(Subtle).Padding(0, 1)
	Dialog      = boxed(Highlight).Padding(1, 2)
	DialogTitle = bold(Highlight)
	Spinner     = fg(Highlight)
)

// Sidebar filter entries.
var (
	SidebarItem   = lipgloss.NewStyle().PaddingLeft(1)
	SidebarActive = bold(Highlight).PaddingLeft(1)
	SidebarCount  = fg(Subtle)
)

// Task rows in the list and day views.
var (
	TaskItem     = lipgloss.NewStyle().PaddingLeft(2)
	TaskSelected = lipgloss.NewStyle().
			Bold(true).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeftForeground(Highlight).
			Background(selectionBg)
	TaskCompleted   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	TaskDue         = fg(Subtle).PaddingLeft(1)
	TaskDueOverdue  = fg(ErrorColor).PaddingLeft(1)
	TaskDueToday    = fg(SuccessColor).PaddingLeft(1)
	TaskDescription = fg(Subtle).Faint(true).Italic(true).PaddingLeft(8)
)

// PriorityStyle colors a priority label. Unset priorities are unstyled.
func PriorityStyle(p task.Priority) lipgloss.Style {
	if c, ok := priorityColors[p]; ok {
		return fg(c)
	}
	return lipgloss.NewStyle()
}

// CategoryStyle colors a category tag.
func CategoryStyle(c task.Category) lipgloss.Style {
	if color, ok := categoryColors[c]; ok {
		return fg(color).PaddingLeft(1)
	}
	return fg(Subtle).PaddingLeft(1)
}

// Status bar.
var (
	StatusBar        = onBar(fg(barFg)).Padding(0, 1)
	StatusBarKey     = onBar(bold(Highlight))
	StatusBarText    = onBar(fg(Subtle))
	StatusBarError   = onBar(bold(ErrorColor))
	StatusBarSuccess = onBar(bold(SuccessColor))
)

// Help and form text.
var (
	HelpKey    = bold(Highlight)
	HelpDesc   = fg(Subtle)
	InputLabel = lipgloss.NewStyle().Bold(true)
	InputError = fg(ErrorColor)
)

// Month grid. Markers flag days on which a task starts (S) or is due (D).
var (
	CalendarHeader        = bold(Highlight)
	CalendarWeekday       = fg(Subtle)
	CalendarDay           = lipgloss.NewStyle()
	CalendarDaySelected   = bold(lipgloss.Color("#FFFFFF")).Background(Highlight)
	CalendarDayToday      = bold(SuccessColor)
	CalendarDayWithTasks  = fg(WarningColor)
	CalendarDayOtherMonth = lipgloss.NewStyle().Faint(true)
	CalendarDayWeekend    = fg(Subtle)
	CalendarMarkerStart   = fg(Highlight)
	CalendarMarkerDue     = fg(ErrorColor)
)

const (
	CheckboxUnchecked = "[ ]"
	CheckboxChecked   = "[x]"
)
