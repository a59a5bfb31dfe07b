// Package calendar builds month grids for the visit calendar.
package calendar

import (
	"time"

	"github.com/beeconnect/server/internal/domain/models"
)

// Cell is one slot of a month grid. Padding cells have a zero Date.
type Cell struct {
	Date    models.Date          `json:"date"`
	IsToday bool                 `json:"is_today,omitempty"`
	Visits  []models.VisitMarker `json:"visits,omitempty"`
}

// IsPadding reports whether the cell precedes the first day of the month.
func (c Cell) IsPadding() bool {
	return c.Date.IsZero()
}

// HasVisits reports whether any hive is due on the cell's day.
func (c Cell) HasVisits() bool {
	return len(c.Visits) > 0
}

// Grid is the ordered cell layout of a single month.
type Grid struct {
	Year        int          `json:"year"`
	Month       time.Month   `json:"month"`
	WeekStart   time.Weekday `json:"week_start"`
	Offset      int          `json:"offset"`
	DaysInMonth int          `json:"days_in_month"`
	Cells       []Cell       `json:"cells"`
}

// Build lays out the month as Offset empty cells followed by one cell per day.
func Build(year int, month time.Month, weekStart time.Weekday) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Normalize out-of-range months such as 13.
	year, month = first.Year(), first.Month()

	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	days := DaysIn(year, month)

	cells := make([]Cell, offset+days)
	for day := 1; day <= days; day++ {
		cells[offset+day-1] = Cell{Date: models.Date{Year: year, Month: month, Day: day}}
	}

	return Grid{
		Year:        year,
		Month:       month,
		WeekStart:   weekStart,
		Offset:      offset,
		DaysInMonth: days,
		Cells:       cells,
	}
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether d falls inside the grid's month.
func (g Grid) Contains(d models.Date) bool {
	return d.Year == g.Year && d.Month == g.Month && d.Day >= 1 && d.Day <= g.DaysInMonth
}

// CellFor returns the index of d in Cells, or -1 when outside the month.
func (g Grid) CellFor(d models.Date) int {
	if !g.Contains(d) {
		return -1
	}
	return g.Offset + d.Day - 1
}

// WithToday returns a copy of g with today's cell flagged.
func (g Grid) WithToday(today models.Date) Grid {
	out := g.clone()
	if idx := out.CellFor(today); idx >= 0 {
		out.Cells[idx].IsToday = true
	}
	return out
}

// Mark returns a copy of g with every marker falling in the month attached to its day.
func (g Grid) Mark(markers []models.VisitMarker) Grid {
	out := g.clone()
	for _, m := range markers {
		idx := out.CellFor(m.Date)
		if idx < 0 {
			continue
		}
		out.Cells[idx].Visits = append(out.Cells[idx].Visits, m)
	}
	return out
}

// VisitDates lists the days of the month that carry at least one marker.
func (g Grid) VisitDates() []models.Date {
	dates := []models.Date{}
	for _, c := range g.Cells {
		if c.HasVisits() {
			dates = append(dates, c.Date)
		}
	}
	return dates
}

// Weeks splits the cells into rows of seven; the last row may be shorter.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for start := 0; start < len(g.Cells); start += 7 {
		end := start + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		weeks = append(weeks, g.Cells[start:end])
	}
	return weeks
}

// Weekdays returns the weekday header starting at the grid's first day of week.
func (g Grid) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 7)
	for i := range days {
		days[i] = time.Weekday((int(g.WeekStart) + i) % 7)
	}
	return days
}

// Next returns the year and month following (year, month).
func Next(year int, month time.Month) (int, time.Month) {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// Prev returns the year and month preceding (year, month).
func Prev(year int, month time.Month) (int, time.Month) {
	t := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

func (g Grid) clone() Grid {
	out := g
	out.Cells = make([]Cell, len(g.Cells))
	for i, c := range g.Cells {
		c.Visits = append([]models.VisitMarker(nil), c.Visits...)
		out.Cells[i] = c
	}
	return out
}
