// Package calendar holds the pure calendar computations: window selection,
// conflict detection, visible hour ranges, overlap layout and view rendering.
// Nothing here performs I/O or reads process state; every function takes the
// events and the family configuration explicitly.
package calendar

import (
	"time"

	"familycal/internal/domain"
)

// DaysPerWeek and MonthGridDays size the week and month grids.
const (
	DaysPerWeek   = 7
	MonthGridDays = 6 * DaysPerWeek
)

// EventsInWindow returns the events that intersect [windowStart, windowEnd]:
// start <= windowEnd and end >= windowStart. Input order is preserved.
func EventsInWindow(events []*domain.Event, windowStart, windowEnd time.Time) []*domain.Event {
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if !e.StartTime.After(windowEnd) && !e.EndTime.Before(windowStart) {
			out = append(out, e)
		}
	}
	return out
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns the first and last millisecond of the day containing t.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// EventsForDay selects the events visible on the day containing day.
func EventsForDay(events []*domain.Event, day time.Time, loc *time.Location) []*domain.Event {
	start, end := DayBounds(day, loc)
	return EventsInWindow(events, start, end)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfWeek returns midnight of the weekStart day on or before t.
func StartOfWeek(t time.Time, loc *time.Location, weekStart time.Weekday) time.Time {
	day := StartOfDay(t, loc)
	diff := (int(day.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	return day.AddDate(0, 0, -diff)
}

// WeekDates returns the seven day starts of the week containing ref.
func WeekDates(ref time.Time, loc *time.Location, weekStart time.Weekday) []time.Time {
	first := StartOfWeek(ref, loc, weekStart)
	out := make([]time.Time, DaysPerWeek)
	for i := range out {
		out[i] = first.AddDate(0, 0, i)
	}
	return out
}

// MonthGrid returns the 42 day starts of a 6x7 grid covering the month of ref,
// beginning at the week start on or before the 1st.
func MonthGrid(ref time.Time, loc *time.Location, weekStart time.Weekday) []time.Time {
	ref = ref.In(loc)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	start := StartOfWeek(first, loc, weekStart)
	out := make([]time.Time, MonthGridDays)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// FilterByPeople keeps events whose person is selected. Events assigned to the
// everyone sentinel are kept whenever at least one person is selected.
// A nil selection disables filtering.
func FilterByPeople(events []*domain.Event, selected []string, everyone string) []*domain.Event {
	if selected == nil {
		return events
	}
	set := make(map[string]struct{}, len(selected))
	for _, p := range selected {
		set[p] = struct{}{}
	}
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if _, ok := set[e.Person]; ok || (e.Person == everyone && len(set) > 0) {
			out = append(out, e)
		}
	}
	return out
}
