package tui

import tea "github.com/charmbracelet/bubbletea"

// Key represents a key binding.
type Key struct {
	Key  string
	Help string
}

// Keymap contains all key bindings for the application.
type Keymap struct {
	// Navigation
	Up     Key
	Down   Key
	Left   Key
	Right  Key
	Top    Key
	Bottom Key

	// Actions
	Select  Key
	Back    Key
	Quit    Key
	Help    Key
	Refresh Key

	// Task actions
	AddTask      Key
	EditTask     Key
	DeleteTask   Key
	CompleteTask Key
	CopyTitle    Key

	// Filters
	Search         Key
	CycleStatus    Key
	CycleCategory  Key
	PriorityOrder  Key
	ToggleCalendar Key

	// Calendar
	PrevMonth Key
	NextMonth Key
	Today     Key
}

// DefaultKeymap returns the default key bindings. With vim set, h/j/k/l move
// as well as the arrow keys.
func DefaultKeymap(vim bool) Keymap {
	k := Keymap{
		Up:     Key{Key: "up", Help: "up"},
		Down:   Key{Key: "down", Help: "down"},
		Left:   Key{Key: "left", Help: "left"},
		Right:  Key{Key: "right", Help: "right"},
		Top:    Key{Key: "home", Help: "top"},
		Bottom: Key{Key: "end", Help: "bottom"},

		Select:  Key{Key: "enter", Help: "select"},
		Back:    Key{Key: "esc", Help: "back"},
		Quit:    Key{Key: "q", Help: "quit"},
		Help:    Key{Key: "?", Help: "help"},
		Refresh: Key{Key: "r", Help: "refresh"},

		AddTask:      Key{Key: "a", Help: "add task"},
		EditTask:     Key{Key: "e", Help: "edit task"},
		DeleteTask:   Key{Key: "d", Help: "delete (dd)"},
		CompleteTask: Key{Key: "x", Help: "complete/uncomplete"},
		CopyTitle:    Key{Key: "y", Help: "copy title"},

		Search:         Key{Key: "/", Help: "search"},
		CycleStatus:    Key{Key: "s", Help: "cycle status filter"},
		CycleCategory:  Key{Key: "c", Help: "cycle category filter"},
		PriorityOrder:  Key{Key: "p", Help: "toggle priority order"},
		ToggleCalendar: Key{Key: "v", Help: "list/calendar"},

		PrevMonth: Key{Key: "[", Help: "previous month"},
		NextMonth: Key{Key: "]", Help: "next month"},
		Today:     Key{Key: "t", Help: "today"},
	}
	if vim {
		k.Up = Key{Key: "k", Help: "up"}
		k.Down = Key{Key: "j", Help: "down"}
		k.Left = Key{Key: "h", Help: "left"}
		k.Right = Key{Key: "l", Help: "right"}
		k.Top = Key{Key: "g", Help: "top (gg)"}
		k.Bottom = Key{Key: "G", Help: "bottom"}
	}
	return k
}

// KeyState tracks multi-key sequences (like 'gg' or 'dd').
type KeyState struct {
	WaitingG bool
	WaitingD bool
}

// HandleKey processes a key press and returns the action to take.
// Returns the action name and whether the key was consumed.
func (ks *KeyState) HandleKey(msg tea.KeyMsg, keymap Keymap) (string, bool) {
	key := msg.String()

	if ks.WaitingG {
		ks.WaitingG = false
		if key == "g" {
			return "top", true
		}
	}

	if ks.WaitingD {
		ks.WaitingD = false
		if key == keymap.DeleteTask.Key {
			return "delete", true
		}
	}

	if key == "g" && keymap.Top.Key == "g" {
		ks.WaitingG = true
		return "", true
	}
	if key == keymap.DeleteTask.Key {
		ks.WaitingD = true
		return "", true
	}

	switch key {
	case keymap.Up.Key, "up":
		return "up", true
	case keymap.Down.Key, "down":
		return "down", true
	case keymap.Left.Key, "left":
		return "left", true
	case keymap.Right.Key, "right":
		return "right", true
	case keymap.Top.Key, "home":
		return "top", true
	case keymap.Bottom.Key, "end":
		return "bottom", true
	case keymap.Select.Key:
		return "select", true
	case keymap.Back.Key:
		return "back", true
	case keymap.Quit.Key, "ctrl+c":
		return "quit", true
	case keymap.Help.Key:
		return "help", true
	case keymap.Refresh.Key:
		return "refresh", true
	case keymap.AddTask.Key:
		return "add", true
	case keymap.EditTask.Key:
		return "edit", true
	case keymap.CompleteTask.Key:
		return "complete", true
	case keymap.CopyTitle.Key:
		return "copy", true
	case keymap.Search.Key:
		return "search", true
	case keymap.CycleStatus.Key:
		return "cycle_status", true
	case keymap.CycleCategory.Key:
		return "cycle_category", true
	case keymap.PriorityOrder.Key:
		return "priority_order", true
	case keymap.ToggleCalendar.Key:
		return "toggle_calendar", true
	case keymap.PrevMonth.Key:
		return "prev_month", true
	case keymap.NextMonth.Key:
		return "next_month", true
	case keymap.Today.Key:
		return "today", true
	}

	return "", false
}

// Reset clears any pending multi-key sequences.
func (ks *KeyState) Reset() {
	ks.WaitingG = false
	ks.WaitingD = false
}

// HelpItems returns key-description pairs for the help view. Rows with an
// empty description are section headers.
func (k Keymap) HelpItems() [][]string {
	return [][]string{
		{"Navigation", ""},
		{k.Up.Key + "/" + k.Down.Key, "Move up/down"},
		{k.Top.Key + "/" + k.Bottom.Key, "Go to top/bottom"},
		{"", ""},
		{"Tasks", ""},
		{k.AddTask.Key, "Add task"},
		{k.EditTask.Key, "Edit task"},
		{k.CompleteTask.Key, "Complete/uncomplete task"},
		{"dd", "Delete task"},
		{k.CopyTitle.Key, "Copy title to clipboard"},
		{"", ""},
		{"View", ""},
		{k.Search.Key, "Search title and description"},
		{k.CycleStatus.Key, "Cycle all/active/completed"},
		{k.CycleCategory.Key, "Cycle category"},
		{k.PriorityOrder.Key, "Toggle priority ordering"},
		{k.ToggleCalendar.Key, "Switch list/calendar"},
		{"", ""},
		{"Calendar", ""},
		{k.Left.Key + "/" + k.Right.Key, "Previous/next day"},
		{k.Up.Key + "/" + k.Down.Key, "Previous/next week"},
		{k.PrevMonth.Key + "/" + k.NextMonth.Key, "Previous/next month"},
		{k.Today.Key, "Jump to today"},
		{k.Select.Key, "Tasks of the selected day"},
		{"", ""},
		{"General", ""},
		{k.Refresh.Key, "Reload / retry"},
		{k.Help.Key, "Toggle help"},
		{k.Back.Key, "Go back / Cancel"},
		{k.Quit.Key, "Quit"},
	}
}
