package calendar

import (
	"slices"
	"time"

	"familycal/internal/domain"
)

const (
	DefaultHourHeight      = 60.0
	DefaultMinBlockHeight  = 24.0
	DefaultMonthCellEvents = 3

	// endOfDayHour is where a block running past midnight is cut off.
	endOfDayHour = 23.99
	clockLayout  = "15:04"
	labelAllDay  = "all day"
)

// Segment says which part of an event a day column shows.
type Segment string

const (
	SegmentSingle Segment = "single"
	SegmentFirst  Segment = "first"
	SegmentMiddle Segment = "middle"
	SegmentLast   Segment = "last"
)

// Block is a laid-out event with its pixel geometry inside one day column.
// Top and Height are pixels from the first visible hour; Left and Width are
// percentages of the column.
type Block struct {
	LayoutEvent
	Segment  Segment `json:"segment"`
	Conflict bool    `json:"conflict"`
	Label    string  `json:"label"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Left     float64 `json:"left_pct"`
	Width    float64 `json:"width_pct"`
}

type DayColumn struct {
	Date   time.Time `json:"date"`
	Today  bool      `json:"today"`
	Blocks []Block   `json:"blocks"`
	// NowOffset is the pixel offset of the current-time marker, set only on
	// today's column while the time is inside the visible hours.
	NowOffset *float64 `json:"now_offset,omitempty"`
}

// MonthEntry is a compact event line inside a month cell.
type MonthEntry struct {
	*domain.Event
	Segment  Segment `json:"segment"`
	Conflict bool    `json:"conflict"`
	Label    string  `json:"label"`
}

type MonthCell struct {
	Date    time.Time    `json:"date"`
	InMonth bool         `json:"in_month"`
	Today   bool         `json:"today"`
	Entries []MonthEntry `json:"entries"`
	More    int          `json:"more"`
}

// View is a rendered calendar screen. Day and week views fill Hours and
// Days; the month view fills Cells.
type View struct {
	Mode      Mode        `json:"mode"`
	Date      time.Time   `json:"date"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Hours     *HourRange  `json:"hours,omitempty"`
	Days      []DayColumn `json:"days,omitempty"`
	Cells     []MonthCell `json:"cells,omitempty"`
	Conflicts []string    `json:"conflicts"`
}

// Renderer turns an event list into day, week and month views.
type Renderer struct {
	Family          domain.Family
	HourHeight      float64
	MinBlockHeight  float64
	MonthCellEvents int
	Now             func() time.Time
}

func NewRenderer(family domain.Family) *Renderer {
	return &Renderer{
		Family:          family,
		HourHeight:      DefaultHourHeight,
		MinBlockHeight:  DefaultMinBlockHeight,
		MonthCellEvents: DefaultMonthCellEvents,
		Now:             time.Now,
	}
}

// Render draws the view selected by s. Conflicts are computed over all of
// events, so pass the already person-filtered list.
func (r *Renderer) Render(s State, events []*domain.Event) View {
	switch s.Mode {
	case ModeWeek:
		return r.Week(events, s.Date, s.ExpandStart, s.ExpandEnd)
	case ModeMonth:
		return r.Month(events, s.Date)
	default:
		return r.Day(events, s.Date, s.ExpandStart, s.ExpandEnd)
	}
}

func (r *Renderer) Day(events []*domain.Event, day time.Time, expandStart, expandEnd int) View {
	loc := r.Family.Loc()
	conflicts := FindConflicts(events, r.Family.EveryoneName())
	start, end := DayBounds(day, loc)
	dayEvents := EventsInWindow(events, start, end)
	hours := HoursRange(dayEvents, loc, expandStart, expandEnd)
	return View{
		Mode:      ModeDay,
		Date:      start,
		Start:     start,
		End:       end,
		Hours:     &hours,
		Days:      []DayColumn{r.column(dayEvents, start, hours, conflicts)},
		Conflicts: conflicts.IDs(),
	}
}

// Week renders seven columns sharing one hour band, computed over every
// event visible in the week. Each column is laid out independently.
func (r *Renderer) Week(events []*domain.Event, ref time.Time, expandStart, expandEnd int) View {
	loc := r.Family.Loc()
	conflicts := FindConflicts(events, r.Family.EveryoneName())
	dates := WeekDates(ref, loc, r.Family.WeekStart)
	_, end := DayBounds(dates[len(dates)-1], loc)
	weekEvents := EventsInWindow(events, dates[0], end)
	hours := HoursRange(weekEvents, loc, expandStart, expandEnd)

	days := make([]DayColumn, len(dates))
	for i, d := range dates {
		days[i] = r.column(EventsForDay(weekEvents, d, loc), d, hours, conflicts)
	}
	return View{
		Mode:      ModeWeek,
		Date:      StartOfDay(ref, loc),
		Start:     dates[0],
		End:       end,
		Hours:     &hours,
		Days:      days,
		Conflicts: conflicts.IDs(),
	}
}

// Month renders a 6x7 grid with at most MonthCellEvents entries per cell.
func (r *Renderer) Month(events []*domain.Event, ref time.Time) View {
	loc := r.Family.Loc()
	conflicts := FindConflicts(events, r.Family.EveryoneName())
	grid := MonthGrid(ref, loc, r.Family.WeekStart)
	_, end := DayBounds(grid[len(grid)-1], loc)
	month := ref.In(loc).Month()
	now := r.now()

	cells := make([]MonthCell, len(grid))
	for i, d := range grid {
		dayEvents := sortedByStart(EventsForDay(events, d, loc))
		shown := min(len(dayEvents), r.MonthCellEvents)
		cell := MonthCell{
			Date:    d,
			InMonth: d.Month() == month,
			Today:   SameDay(d, now, loc),
			Entries: make([]MonthEntry, 0, shown),
			More:    len(dayEvents) - shown,
		}
		for _, e := range dayEvents[:shown] {
			seg := r.segment(e, d)
			cell.Entries = append(cell.Entries, MonthEntry{
				Event:    e,
				Segment:  seg,
				Conflict: conflicts.Has(e.ID),
				Label:    r.compactLabel(e, seg),
			})
		}
		cells[i] = cell
	}
	return View{
		Mode:      ModeMonth,
		Date:      StartOfDay(ref, loc),
		Start:     grid[0],
		End:       end,
		Cells:     cells,
		Conflicts: conflicts.IDs(),
	}
}

func (r *Renderer) column(dayEvents []*domain.Event, day time.Time, hours HourRange, conflicts ConflictSet) DayColumn {
	loc := r.Family.Loc()
	laid := Layout(dayEvents)
	col := DayColumn{Date: day, Blocks: make([]Block, 0, len(laid))}
	for _, le := range laid {
		col.Blocks = append(col.Blocks, r.block(le, day, hours.MinHour, conflicts))
	}

	now := r.now()
	if SameDay(now, day, loc) {
		col.Today = true
		offset := (fractionalHour(now, loc) - float64(hours.MinHour)) * r.HourHeight
		if offset >= 0 && offset <= float64(len(hours.Hours))*r.HourHeight {
			col.NowOffset = &offset
		}
	}
	return col
}

// block sizes the visible part of le on day. A first-day segment runs to the
// end of the day, a last-day segment starts at the top of the grid and a
// middle segment fills both. Negative spans are clamped to zero before the
// minimum height applies.
func (r *Renderer) block(le LayoutEvent, day time.Time, minHour int, conflicts ConflictSet) Block {
	loc := r.Family.Loc()
	seg := r.segment(le.Event, day)
	startH := fractionalHour(le.StartTime, loc)
	endH := fractionalHour(le.EndTime, loc)
	top := float64(minHour)

	var from, to float64
	switch seg {
	case SegmentFirst:
		from, to = startH, endOfDayHour
	case SegmentLast:
		from, to = top, endH
	case SegmentMiddle:
		from, to = top, endOfDayHour
	default:
		from, to = startH, endH
	}
	to = max(to, from)

	width := 100 / float64(max(le.TotalCols, 1))
	return Block{
		LayoutEvent: le,
		Segment:     seg,
		Conflict:    conflicts.Has(le.ID),
		Label:       r.label(le.Event, seg),
		Top:         (from - top) * r.HourHeight,
		Height:      max((to-from)*r.HourHeight, r.MinBlockHeight),
		Left:        float64(le.Col) * width,
		Width:       width,
	}
}

func (r *Renderer) segment(e *domain.Event, day time.Time) Segment {
	loc := r.Family.Loc()
	if SameDay(e.StartTime, e.EndTime, loc) {
		return SegmentSingle
	}
	switch {
	case SameDay(e.StartTime, day, loc):
		return SegmentFirst
	case SameDay(e.EndTime, day, loc):
		return SegmentLast
	default:
		return SegmentMiddle
	}
}

func (r *Renderer) label(e *domain.Event, seg Segment) string {
	loc := r.Family.Loc()
	start := e.StartTime.In(loc).Format(clockLayout)
	end := e.EndTime.In(loc).Format(clockLayout)
	switch seg {
	case SegmentFirst:
		return start + " →"
	case SegmentLast:
		return "→ " + end
	case SegmentMiddle:
		return labelAllDay
	default:
		return start + " - " + end
	}
}

func (r *Renderer) compactLabel(e *domain.Event, seg Segment) string {
	loc := r.Family.Loc()
	switch seg {
	case SegmentLast:
		return "until " + e.EndTime.In(loc).Format(clockLayout)
	case SegmentMiddle:
		return labelAllDay
	default:
		return e.StartTime.In(loc).Format(clockLayout)
	}
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func fractionalHour(t time.Time, loc *time.Location) float64 {
	t = t.In(loc)
	return float64(t.Hour()) + float64(t.Minute())/60
}

func sortedByStart(events []*domain.Event) []*domain.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b *domain.Event) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}
