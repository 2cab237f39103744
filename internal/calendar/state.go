package calendar

import (
	"errors"
	"fmt"
	"time"

	"familycal/internal/domain"
)

type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

// FetchPaddingDays widens a rendered window when loading events, so that
// long events starting before the window are still seen.
const FetchPaddingDays = 35

var (
	ErrUnknownMode = errors.New("unknown calendar mode")
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
)

// ParseMode accepts "day", "week" or "month".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDay, ModeWeek, ModeMonth:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// State is the navigation state of a calendar screen. Every navigation
// step returns a new State with the manual hour expansion reset.
type State struct {
	Mode        Mode      `json:"mode"`
	Date        time.Time `json:"date"`
	ExpandStart int       `json:"expand_start"`
	ExpandEnd   int       `json:"expand_end"`
}

func (s State) Next() State { return s.shift(1) }

func (s State) Prev() State { return s.shift(-1) }

func (s State) Today(now time.Time) State {
	s.Date = now
	return s.resetExpansion()
}

func (s State) WithMode(m Mode) State {
	s.Mode = m
	return s.resetExpansion()
}

// SelectDay switches to the day view of d, as clicking a month cell does.
func (s State) SelectDay(d time.Time) State {
	s.Mode = ModeDay
	s.Date = d
	return s.resetExpansion()
}

func (s State) ExpandEarlier() State {
	s.ExpandStart += ExpandStep
	return s
}

func (s State) ExpandLater() State {
	s.ExpandEnd += ExpandStep
	return s
}

// Window returns the first and last instant the current mode renders.
func (s State) Window(loc *time.Location, weekStart time.Weekday) (time.Time, time.Time) {
	switch s.Mode {
	case ModeWeek:
		dates := WeekDates(s.Date, loc, weekStart)
		_, end := DayBounds(dates[len(dates)-1], loc)
		return dates[0], end
	case ModeMonth:
		grid := MonthGrid(s.Date, loc, weekStart)
		_, end := DayBounds(grid[len(grid)-1], loc)
		return grid[0], end
	default:
		return DayBounds(s.Date, loc)
	}
}

// FetchWindow is Window padded by FetchPaddingDays on both sides.
func (s State) FetchWindow(loc *time.Location, weekStart time.Weekday) (time.Time, time.Time) {
	start, end := s.Window(loc, weekStart)
	return start.AddDate(0, 0, -FetchPaddingDays), end.AddDate(0, 0, FetchPaddingDays)
}

func (s State) shift(n int) State {
	switch s.Mode {
	case ModeWeek:
		s.Date = s.Date.AddDate(0, 0, n*DaysPerWeek)
	case ModeMonth:
		s.Date = addMonthsClamped(s.Date, n)
	default:
		s.Date = s.Date.AddDate(0, 0, n)
	}
	return s.resetExpansion()
}

func (s State) resetExpansion() State {
	s.ExpandStart, s.ExpandEnd = 0, 0
	return s
}

// addMonthsClamped moves t by n months, keeping the day of month where the
// target month has it and using its last day otherwise (Jan 31 + 1 = Feb 28).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Move returns a copy of e starting at hour:00 on day in loc, keeping its
// original duration. Title, person and category are untouched.
func Move(e *domain.Event, day time.Time, hour int, loc *time.Location) (*domain.Event, error) {
	if hour < firstHour || hour > lastHour {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
	moved := *e
	moved.StartTime = start
	moved.EndTime = start.Add(e.Duration())
	return &moved, nil
}
