package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familycal/internal/domain"
)

func TestWeeklyRule(t *testing.T) {
	tests := []struct {
		start time.Time
		want  string
	}{
		{time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "FREQ=WEEKLY;BYDAY=MO"},
		{time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), "FREQ=WEEKLY;BYDAY=SA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeeklyRule(tt.start))
	}
}

func TestExporter_Write(t *testing.T) {
	family := domain.Family{
		Members:    []domain.Member{{Name: "dana", Emoji: "👩"}},
		Categories: domain.DefaultCategories,
		Location:   time.UTC,
	}
	reminder := 30
	notes := "bring towel"
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []*domain.Event{
		{
			ID: "e1", Title: "Swim", Person: "dana", Category: "training",
			StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			Recurring: true, ReminderMinutes: &reminder, Notes: &notes,
			CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "e2", Title: "Flight", Person: "everyone", Category: "flight",
			StartTime: time.Date(2025, 3, 12, 6, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC),
			CreatedAt: at, UpdatedAt: at,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter(family).Write(&buf, events))
	out := buf.String()

	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=MO")
	assert.Contains(t, out, "TRIGGER:-PT30M")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VALARM"))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	first := parsed[0]
	assert.Equal(t, "e1@familycal", first.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "🏋️ Swim", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "training", first.GetProperty(ical.ComponentPropertyCategories).Value)
	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(events[0].StartTime))

	second := parsed[1]
	assert.Nil(t, second.GetProperty(ical.ComponentPropertyRrule))
	assert.Equal(t, "everyone", second.GetProperty(propPerson).Value)
}
