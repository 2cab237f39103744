package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"familycal/internal/domain"
)

const (
	clockLayout    = "15:04"
	dayMonthLayout = "2/1"
	fullDateLayout = "2/1/2006"
	isoDateLayout  = "2006-01-02"
)

// EscapeHTML escapes the characters Telegram's HTML mode rejects in text.
func EscapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// ReminderLead phrases a reminder lead time in minutes.
func ReminderLead(minutes int) string {
	switch {
	case minutes >= 1440:
		return "a day before"
	case minutes >= 120:
		return fmt.Sprintf("%d hours before", minutes/60)
	case minutes >= 60:
		return "an hour before"
	default:
		return fmt.Sprintf("%d minutes before", minutes)
	}
}

func eventHeadline(f domain.Family, e *domain.Event) string {
	return fmt.Sprintf("%s <b>%s</b>\n%s %s",
		f.CategoryEmoji(e.Category), EscapeHTML(e.Title),
		f.PersonEmoji(e.Person), EscapeHTML(e.Person))
}

func eventExtras(e *domain.Event) string {
	var b strings.Builder
	if e.HasReminder() {
		fmt.Fprintf(&b, "\n⏰ Reminder: %s", ReminderLead(*e.ReminderMinutes))
	}
	if e.Notes != nil && strings.TrimSpace(*e.Notes) != "" {
		fmt.Fprintf(&b, "\n📝 %s", EscapeHTML(*e.Notes))
	}
	return b.String()
}

// NewEventMessage is broadcast to the other chats when an event is created.
func NewEventMessage(f domain.Family, e *domain.Event) string {
	loc := f.Loc()
	start, end := e.StartTime.In(loc), e.EndTime.In(loc)
	var b strings.Builder
	b.WriteString("📅 <b>New event on the calendar!</b>\n\n")
	b.WriteString(eventHeadline(f, e))
	fmt.Fprintf(&b, "\n🗓 %s, %s", start.Weekday(), start.Format(dayMonthLayout))
	if !sameDate(start, end) {
		fmt.Fprintf(&b, " until %s, %s", end.Weekday(), end.Format(dayMonthLayout))
	}
	fmt.Fprintf(&b, "\n🕐 %s - %s", start.Format(clockLayout), end.Format(clockLayout))
	b.WriteString(eventExtras(e))
	return b.String()
}

// EventAddedMessage confirms an event created from chat to the chat it came from.
func EventAddedMessage(f domain.Family, e *domain.Event) string {
	loc := f.Loc()
	start, end := e.StartTime.In(loc), e.EndTime.In(loc)
	var b strings.Builder
	b.WriteString("✅ <b>Event added to the calendar!</b>\n\n")
	b.WriteString(eventHeadline(f, e))
	fmt.Fprintf(&b, "\n🗓 %s, %s", start.Weekday(), start.Format(isoDateLayout))
	if !sameDate(start, end) {
		fmt.Fprintf(&b, " until %s", end.Format(isoDateLayout))
	}
	fmt.Fprintf(&b, "\n🕐 %s - %s", start.Format(clockLayout), end.Format(clockLayout))
	b.WriteString(eventExtras(e))
	return b.String()
}

func reminderMessage(f domain.Family, e *domain.Event) string {
	start := e.StartTime.In(f.Loc())
	lead := ""
	if e.ReminderMinutes != nil {
		lead = ReminderLead(*e.ReminderMinutes)
	}
	return fmt.Sprintf("⏰ <b>Reminder!</b>\n\n%s\n🗓 %s, %s\n🕐 <b>%s</b>\n\n📌 %s",
		eventHeadline(f, e), start.Weekday(), start.Format(dayMonthLayout), start.Format(clockLayout), lead)
}

// personCounts tallies events per person, largest count first.
func personCounts(f domain.Family, events []*domain.Event) []domain.PersonCount {
	idx := make(map[string]int)
	var out []domain.PersonCount
	for _, e := range events {
		i, ok := idx[e.Person]
		if !ok {
			i = len(out)
			idx[e.Person] = i
			out = append(out, domain.PersonCount{Person: e.Person, Emoji: f.PersonEmoji(e.Person)})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b domain.PersonCount) int {
		return b.Count - a.Count
	})
	return out
}

func digestLines(f domain.Family, events []*domain.Event) []domain.DigestLine {
	loc := f.Loc()
	lines := make([]domain.DigestLine, 0, len(events))
	for _, e := range events {
		lines = append(lines, domain.DigestLine{
			Start:         e.StartTime.In(loc).Format(clockLayout),
			End:           e.EndTime.In(loc).Format(clockLayout),
			Title:         e.Title,
			Person:        e.Person,
			PersonEmoji:   f.PersonEmoji(e.Person),
			CategoryEmoji: f.CategoryEmoji(e.Category),
			HasReminder:   e.HasReminder(),
		})
	}
	return lines
}

// dailyScheduleMessage lists the day's events; events must already be sorted by start.
func dailyScheduleMessage(f domain.Family, day time.Time, events []*domain.Event) string {
	day = day.In(f.Loc())
	header := fmt.Sprintf("📋 <b>Daily schedule - %s %s</b>", day.Weekday(), day.Format(fullDateLayout))
	if len(events) == 0 {
		return header + "\n\n✨ Nothing planned. Enjoy a free day 🎉"
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i, l := range digestLines(f, events) {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s-%s %s <b>%s</b> %s %s", l.Start, l.End, l.CategoryEmoji, EscapeHTML(l.Title), l.PersonEmoji, EscapeHTML(l.Person))
		if l.HasReminder {
			b.WriteString(" ⏰")
		}
	}

	counts := personCounts(f, events)
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %s: %d", c.Emoji, EscapeHTML(c.Person), c.Count))
	}
	fmt.Fprintf(&b, "\n\n📊 Total: %d events\n%s", len(events), strings.Join(parts, " | "))
	return b.String()
}

// weekScheduleMessage groups events by day between weekStart and weekEnd, skipping empty days.
func weekScheduleMessage(f domain.Family, weekStart, weekEnd time.Time, events []*domain.Event) string {
	if len(events) == 0 {
		return "📋 <b>Weekly schedule</b>\n\n✨ No events this week!"
	}
	loc := f.Loc()

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Weekly schedule</b>\n%s - %s\n",
		weekStart.In(loc).Format(dayMonthLayout), weekEnd.In(loc).Format(dayMonthLayout))
	var current time.Time
	for _, e := range events {
		start := e.StartTime.In(loc)
		if current.IsZero() || !sameDate(current, start) {
			current = start
			fmt.Fprintf(&b, "\n<b>📅 %s:</b>\n", start.Weekday())
		}
		fmt.Fprintf(&b, "  %s - %s (%s)\n", start.Format(clockLayout), EscapeHTML(e.Title), EscapeHTML(e.Person))
	}
	fmt.Fprintf(&b, "\n📊 Total: %d events this week", len(events))
	return b.String()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
