package calendar

import (
	"time"

	"familycal/internal/domain"
)

const (
	DefaultMinHour = 8
	DefaultMaxHour = 18
	// MinVisibleSpan is the smallest maxHour-minHour a grid shows.
	MinVisibleSpan = 6
	// ExpandStep is how many hours one "show earlier/later" action reveals.
	ExpandStep = 2

	firstHour = 0
	lastHour  = 23
)

// HourRange is the visible hour band of a day or week grid.
type HourRange struct {
	Hours          []int `json:"hours"`
	MinHour        int   `json:"min_hour"`
	MaxHour        int   `json:"max_hour"`
	CanExpandStart bool  `json:"can_expand_start"`
	CanExpandEnd   bool  `json:"can_expand_end"`
}

// HoursRange derives the visible hours from events in loc. Without events the
// band is 08..18. An end with a nonzero minute rounds up to the next hour.
// expandStart/expandEnd widen the band, clamped to [0, 23]. A band narrower
// than MinVisibleSpan grows its upper bound, never past 23.
func HoursRange(events []*domain.Event, loc *time.Location, expandStart, expandEnd int) HourRange {
	minH, maxH := DefaultMinHour, DefaultMaxHour
	if len(events) > 0 {
		minH, maxH = lastHour, firstHour
		for _, e := range events {
			start, end := e.StartTime.In(loc), e.EndTime.In(loc)
			endH := end.Hour()
			if end.Minute() > 0 {
				endH++
			}
			minH = min(minH, start.Hour(), end.Hour())
			maxH = max(maxH, start.Hour(), endH)
		}
	}
	minH = max(firstHour, minH-max(expandStart, 0))
	maxH = min(lastHour, maxH+max(expandEnd, 0))
	if maxH-minH < MinVisibleSpan {
		maxH = min(lastHour, minH+MinVisibleSpan)
	}

	hours := make([]int, 0, maxH-minH+1)
	for h := minH; h <= maxH; h++ {
		hours = append(hours, h)
	}
	return HourRange{
		Hours:          hours,
		MinHour:        minH,
		MaxHour:        maxH,
		CanExpandStart: minH > firstHour,
		CanExpandEnd:   maxH < lastHour,
	}
}
