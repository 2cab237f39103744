package calendar

import (
	"slices"
	"time"

	"familycal/internal/domain"
)

// LayoutEvent is an event placed in a column of its overlap group.
type LayoutEvent struct {
	*domain.Event
	Col       int `json:"col"`
	TotalCols int `json:"total_cols"`
}

// Layout assigns columns so that concurrently open events never share one.
//
// Events are sorted by start and swept into overlap groups: an event opens a
// new group when it starts at or after the latest end seen in the current
// group. Inside a group each event takes the first column whose last event
// ended at or before its start (greedy interval coloring), so the column count
// equals the group's peak concurrency. Every member is stamped with the final
// column count once the group closes.
//
// An end before its start is treated as a zero-length event.
func Layout(events []*domain.Event) []LayoutEvent {
	if len(events) == 0 {
		return nil
	}
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b *domain.Event) int {
		return a.StartTime.Compare(b.StartTime)
	})

	out := make([]LayoutEvent, 0, len(sorted))
	group := []*domain.Event{sorted[0]}
	groupEnd := clampedEnd(sorted[0])
	for _, e := range sorted[1:] {
		if e.StartTime.Before(groupEnd) {
			group = append(group, e)
			if end := clampedEnd(e); end.After(groupEnd) {
				groupEnd = end
			}
			continue
		}
		out = append(out, placeGroup(group)...)
		group = []*domain.Event{e}
		groupEnd = clampedEnd(e)
	}
	return append(out, placeGroup(group)...)
}

func placeGroup(group []*domain.Event) []LayoutEvent {
	var colEnds []time.Time
	cols := make([]int, len(group))
	for i, e := range group {
		col := -1
		for c, end := range colEnds {
			if !end.After(e.StartTime) {
				col = c
				break
			}
		}
		if col < 0 {
			col = len(colEnds)
			colEnds = append(colEnds, time.Time{})
		}
		colEnds[col] = clampedEnd(e)
		cols[i] = col
	}

	out := make([]LayoutEvent, len(group))
	for i, e := range group {
		out[i] = LayoutEvent{Event: e, Col: cols[i], TotalCols: len(colEnds)}
	}
	return out
}

func clampedEnd(e *domain.Event) time.Time {
	if e.EndTime.Before(e.StartTime) {
		return e.StartTime
	}
	return e.EndTime
}
