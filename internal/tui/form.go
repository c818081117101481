// Package tui provides the terminal user interface for the to-do list.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/tui/styles"
)

// FormField represents which field is currently focused in the form.
type FormField int

const (
	FormFieldTitle FormField = iota
	FormFieldDescription
	FormFieldCategory
	FormFieldPriority
	FormFieldDue
	FormFieldSubmit
)

const formFieldCount = 6

// TaskForm manages the state of the add/edit task form.
type TaskForm struct {
	// Mode
	Mode   string // "add" or "edit"
	TaskID string // For edit mode

	// Inputs
	TitleInput       textinput.Model
	DescriptionInput textinput.Model
	DueInput         textinput.Model

	// Selections
	Category task.Category
	Priority task.Priority

	// Form state
	FocusedField FormField
	Err          string
	original     task.Task
	width        int
}

// NewTaskForm creates a new task form for adding a task.
func NewTaskForm() *TaskForm {
	titleInput := textinput.New()
	titleInput.Placeholder = "Task title"
	titleInput.Focus()
	titleInput.CharLimit = 200
	titleInput.Width = 50

	descInput := textinput.New()
	descInput.Placeholder = "Description (optional)"
	descInput.CharLimit = 1000
	descInput.Width = 50

	dueInput := textinput.New()
	dueInput.Placeholder = "YYYY-MM-DD (optional)"
	dueInput.CharLimit = 10
	dueInput.Width = 50

	return &TaskForm{
		Mode:             "add",
		TitleInput:       titleInput,
		DescriptionInput: descInput,
		DueInput:         dueInput,
		Category:         task.CategoryPersonal,
		Priority:         task.PriorityMedium,
		FocusedField:     FormFieldTitle,
	}
}

// NewEditTaskForm creates a new task form pre-populated for editing.
func NewEditTaskForm(t task.Task) *TaskForm {
	form := NewTaskForm()
	form.Mode = "edit"
	form.TaskID = t.ID
	form.original = t

	form.TitleInput.SetValue(t.Title)
	form.DescriptionInput.SetValue(t.Description)
	if t.DueDate != nil {
		form.DueInput.SetValue(t.DueDate.String())
	}
	if t.Category.Valid() {
		form.Category = t.Category
	}
	if t.Priority != "" {
		form.Priority = t.Priority
	}
	// Diff against what the form shows, so untouched defaults are not sent.
	form.original.Category = form.Category
	form.original.Priority = form.Priority

	return form
}

// SetWidth sets the form width for responsive layout.
func (f *TaskForm) SetWidth(width int) {
	f.width = width
	inputWidth := width - 10
	if inputWidth < 30 {
		inputWidth = 30
	}
	if inputWidth > 60 {
		inputWidth = 60
	}
	f.TitleInput.Width = inputWidth
	f.DescriptionInput.Width = inputWidth
	f.DueInput.Width = inputWidth
}

// Update handles input for the form. Submit and cancel are handled by the
// parent.
func (f *TaskForm) Update(msg tea.Msg) (*TaskForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.nextField()
			return f, nil
		case "shift+tab", "up":
			f.prevField()
			return f, nil
		}

		switch f.FocusedField {
		case FormFieldCategory:
			switch msg.String() {
			case "h", "left":
				f.Category = cycle(task.Categories, f.Category, -1)
			case "l", "right", " ":
				f.Category = cycle(task.Categories, f.Category, 1)
			}
			return f, nil
		case FormFieldPriority:
			switch msg.String() {
			case "1":
				f.Priority = task.PriorityHigh
			case "2":
				f.Priority = task.PriorityMedium
			case "3":
				f.Priority = task.PriorityLow
			case "h", "left":
				f.Priority = cycle(task.Priorities, f.Priority, -1)
			case "l", "right", " ":
				f.Priority = cycle(task.Priorities, f.Priority, 1)
			}
			return f, nil
		case FormFieldSubmit:
			return f, nil
		}
	}

	var cmd tea.Cmd
	switch f.FocusedField {
	case FormFieldTitle:
		f.TitleInput, cmd = f.TitleInput.Update(msg)
	case FormFieldDescription:
		f.DescriptionInput, cmd = f.DescriptionInput.Update(msg)
	case FormFieldDue:
		f.DueInput, cmd = f.DueInput.Update(msg)
	}
	return f, cmd
}

func cycle[T comparable](values []T, cur T, step int) T {
	for i, v := range values {
		if v == cur {
			return values[(i+step+len(values))%len(values)]
		}
	}
	return values[0]
}

// nextField moves focus to the next field.
func (f *TaskForm) nextField() {
	f.blurCurrent()
	f.FocusedField = (f.FocusedField + 1) % formFieldCount
	f.focusCurrent()
}

// prevField moves focus to the previous field.
func (f *TaskForm) prevField() {
	f.blurCurrent()
	f.FocusedField = (f.FocusedField - 1 + formFieldCount) % formFieldCount
	f.focusCurrent()
}

func (f *TaskForm) blurCurrent() {
	switch f.FocusedField {
	case FormFieldTitle:
		f.TitleInput.Blur()
	case FormFieldDescription:
		f.DescriptionInput.Blur()
	case FormFieldDue:
		f.DueInput.Blur()
	}
}

func (f *TaskForm) focusCurrent() {
	switch f.FocusedField {
	case FormFieldTitle:
		f.TitleInput.Focus()
	case FormFieldDescription:
		f.DescriptionInput.Focus()
	case FormFieldDue:
		f.DueInput.Focus()
	}
}

// dueDate parses the due input. An empty input yields nil.
func (f *TaskForm) dueDate() (*task.Date, error) {
	s := strings.TrimSpace(f.DueInput.Value())
	if s == "" {
		return nil, nil
	}
	if len(s) != len("2006-01-02") {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	d, err := task.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD")
	}
	return &d, nil
}

// ToDraft validates the form and converts it to a draft. On failure the
// message is also kept in Err for the view.
func (f *TaskForm) ToDraft() (task.Draft, error) {
	due, err := f.dueDate()
	if err != nil {
		f.Err = err.Error()
		return task.Draft{}, err
	}
	d, err := task.Draft{
		Title:       f.TitleInput.Value(),
		Description: f.DescriptionInput.Value(),
		Category:    f.Category,
		Priority:    f.Priority,
		DueDate:     due,
	}.Normalize()
	if err != nil {
		f.Err = err.Error()
		return task.Draft{}, err
	}
	f.Err = ""
	return d, nil
}

// ToPatch validates the form and returns a patch holding only the fields that
// differ from the task being edited.
func (f *TaskForm) ToPatch() (task.Patch, error) {
	due, err := f.dueDate()
	if err != nil {
		f.Err = err.Error()
		return task.Patch{}, err
	}

	var p task.Patch
	orig := f.original
	if title := strings.TrimSpace(f.TitleInput.Value()); title != orig.Title {
		p.Title = &title
	}
	if desc := strings.TrimSpace(f.DescriptionInput.Value()); desc != orig.Description {
		p.Description = &desc
	}
	if f.Category != orig.Category {
		c := f.Category
		p.Category = &c
	}
	if f.Priority != orig.Priority {
		pr := f.Priority
		p.Priority = &pr
	}
	switch {
	case due == nil && orig.DueDate != nil:
		p.ClearDue = true
	case due != nil && (orig.DueDate == nil || *due != *orig.DueDate):
		p.DueDate = due
	}

	if err := p.Validate(); err != nil {
		f.Err = err.Error()
		return task.Patch{}, err
	}
	f.Err = ""
	return p, nil
}

// View renders the form.
func (f *TaskForm) View() string {
	var b strings.Builder

	title := "Add Task"
	if f.Mode == "edit" {
		title = "Edit Task"
	}
	b.WriteString(styles.DialogTitle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(f.renderField("Title", f.TitleInput.View(), FormFieldTitle))
	b.WriteString("\n")
	b.WriteString(f.renderField("Description", f.DescriptionInput.View(), FormFieldDescription))
	b.WriteString("\n")
	b.WriteString(f.renderField("Category", f.renderCategories(), FormFieldCategory))
	b.WriteString("\n")
	b.WriteString(f.renderField("Priority", f.renderPriorities(), FormFieldPriority))
	b.WriteString("\n")
	b.WriteString(f.renderField("Due Date", f.DueInput.View(), FormFieldDue))
	b.WriteString("\n\n")

	submitStyle := styles.HelpDesc
	if f.FocusedField == FormFieldSubmit {
		submitStyle = styles.HelpKey
	}
	submitText := "[ Submit ]"
	if f.Mode == "edit" {
		submitText = "[ Save Changes ]"
	}
	b.WriteString(submitStyle.Render(submitText))
	b.WriteString("\n\n")

	if f.Err != "" {
		b.WriteString(styles.InputError.Render(f.Err))
		b.WriteString("\n\n")
	}

	helpText := "Tab: next field | Shift+Tab: previous | Enter: submit | Esc: cancel"
	switch f.FocusedField {
	case FormFieldPriority:
		helpText = "1-3: high/medium/low | h/l: adjust | Tab: next field"
	case FormFieldCategory:
		helpText = "h/l: change category | Tab: next field"
	}
	b.WriteString(styles.HelpDesc.Render(helpText))

	return b.String()
}

// renderField renders a form field with label.
func (f *TaskForm) renderField(label, input string, field FormField) string {
	labelStyle := styles.InputLabel
	if f.FocusedField == field {
		labelStyle = labelStyle.Foreground(styles.Highlight)
	}
	return fmt.Sprintf("%s\n%s", labelStyle.Render(label), input)
}

func (f *TaskForm) renderCategories() string {
	parts := make([]string, 0, len(task.Categories))
	for _, c := range task.Categories {
		style := styles.HelpDesc
		label := " " + string(c) + " "
		if c == f.Category {
			style = styles.CategoryStyle(c).Bold(true).Reverse(true)
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (f *TaskForm) renderPriorities() string {
	parts := make([]string, 0, len(task.Priorities))
	for i := len(task.Priorities) - 1; i >= 0; i-- {
		p := task.Priorities[i]
		style := styles.HelpDesc
		label := " " + string(p) + " "
		if p == f.Priority {
			style = styles.PriorityStyle(p).Bold(true).Reverse(true)
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
