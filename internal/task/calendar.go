package task

import "time"

// MarkerKind distinguishes the two ways a task shows up on the calendar.
type MarkerKind int

const (
	MarkerStart MarkerKind = iota // day the task was created
	MarkerDue                     // day the task is due
)

// String returns "start" or "due".
func (k MarkerKind) String() string {
	if k == MarkerDue {
		return "due"
	}
	return "start"
}

// Marker places a task in a calendar cell.
type Marker struct {
	Kind MarkerKind
	Task Task
}

// Cell is one day of the month grid.
type Cell struct {
	Date    Date
	InMonth bool
	Markers []Marker
}

// Month is a Sunday-first grid of whole weeks covering one month.
type Month struct {
	Year  int
	Month time.Month
	Weeks [][7]Cell
}

// Cell returns the in-month cell for day, or nil if day is out of range.
func (m *Month) Cell(day int) *Cell {
	for w := range m.Weeks {
		for d := range m.Weeks[w] {
			c := &m.Weeks[w][d]
			if c.InMonth && c.Date.Day == day {
				return c
			}
		}
	}
	return nil
}

// DaysInMonth returns the number of days in month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonth bins tasks into the grid for year/month. Creation timestamps are
// converted to loc before their date is taken.
func BuildMonth(tasks []Task, year int, month time.Month, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, loc)
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	m := Month{Year: year, Month: month}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 7) {
		var week [7]Cell
		for i := range week {
			d := day.AddDate(0, 0, i)
			week[i] = Cell{Date: DateOf(d), InMonth: d.Month() == month}
		}
		m.Weeks = append(m.Weeks, week)
	}

	for _, t := range tasks {
		if !t.CreatedAt.IsZero() {
			created := DateOf(t.CreatedAt.In(loc))
			if c := m.cellFor(created); c != nil {
				c.Markers = append(c.Markers, Marker{Kind: MarkerStart, Task: t.clone()})
			}
		}
		if t.DueDate != nil {
			if c := m.cellFor(*t.DueDate); c != nil {
				c.Markers = append(c.Markers, Marker{Kind: MarkerDue, Task: t.clone()})
			}
		}
	}
	return m
}

func (m *Month) cellFor(d Date) *Cell {
	if d.Year != m.Year || d.Month != m.Month {
		return nil
	}
	return m.Cell(d.Day)
}
