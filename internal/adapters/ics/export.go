// Package ics exports calendar events as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"familycal/internal/domain"
)

const (
	ProductID    = "-//familycal//calendar export//EN"
	propPerson   = ical.ComponentProperty("X-FAMILYCAL-PERSON")
	uidDomain    = "familycal"
	calendarName = "Family calendar"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

type Exporter struct {
	family domain.Family
}

func NewExporter(family domain.Family) *Exporter {
	return &Exporter{family: family}
}

// Calendar builds a VCALENDAR with one VEVENT per event. Recurring events
// repeat weekly on their start weekday; a reminder becomes a display VALARM.
func (x *Exporter) Calendar(events []*domain.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone(x.family.Loc().String())

	for _, e := range events {
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", e.ID, uidDomain))
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
		ve.SetSummary(fmt.Sprintf("%s %s", x.family.CategoryEmoji(e.Category), e.Title))
		ve.AddProperty(ical.ComponentPropertyCategories, e.Category)
		ve.AddProperty(propPerson, e.Person)
		if desc := x.description(e); desc != "" {
			ve.SetDescription(desc)
		}
		if e.Recurring {
			ve.AddRrule(WeeklyRule(e.StartTime.In(x.family.Loc())))
		}
		if e.HasReminder() {
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", *e.ReminderMinutes))
			alarm.SetProperty(ical.ComponentPropertyDescription, e.Title)
		}
	}
	return cal
}

func (x *Exporter) Write(w io.Writer, events []*domain.Event) error {
	_, err := io.WriteString(w, x.Calendar(events).Serialize())
	return err
}

func (x *Exporter) description(e *domain.Event) string {
	parts := []string{x.family.PersonEmoji(e.Person) + " " + e.Person}
	if e.Notes != nil && strings.TrimSpace(*e.Notes) != "" {
		parts = append(parts, *e.Notes)
	}
	return strings.Join(parts, "\n")
}

// WeeklyRule returns the RRULE value for a weekly repeat on start's weekday.
func WeeklyRule(start time.Time) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[start.Weekday()]},
	}
	return opt.RRuleString()
}
