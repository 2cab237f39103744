package calendar

import (
	"testing"

	"familycal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDialog_OpenCreate(t *testing.T) {
	tests := []struct {
		name      string
		hour      *int
		wantStart string
		wantEnd   string
	}{
		{"no hour", nil, "08:00", "09:00"},
		{"clicked hour", intPtr(14), "14:00", "15:00"},
		{"last hour is capped", intPtr(23), "23:00", "23:00"},
		{"midnight", intPtr(0), "00:00", "01:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialog(testFamily())
			require.NoError(t, d.OpenCreate(ts("2025-03-10 17:00"), tt.hour))

			assert.Equal(t, DialogCreate, d.Mode)
			assert.Equal(t, AssistIdle, d.Assist)
			assert.Equal(t, "dana", d.Draft.Person)
			assert.Equal(t, domain.CategoryOther, d.Draft.Category)
			assert.Equal(t, "2025-03-10", d.Draft.StartDate)
			assert.Equal(t, "2025-03-10", d.Draft.EndDate)
			assert.Equal(t, tt.wantStart, d.Draft.StartTime)
			assert.Equal(t, tt.wantEnd, d.Draft.EndTime)
		})
	}
}

func TestDialog_OpenTwice(t *testing.T) {
	d := NewDialog(testFamily())
	require.NoError(t, d.OpenCreate(ts("2025-03-10 00:00"), nil))
	require.ErrorIs(t, d.OpenCreate(ts("2025-03-10 00:00"), nil), ErrDialogOpen)
	require.ErrorIs(t, d.OpenEdit(ev("a", "dana", "2025-03-10 09:00", "2025-03-10 10:00")), ErrDialogOpen)
}

func TestDialog_OpenCreateRejectsBadHour(t *testing.T) {
	d := NewDialog(testFamily())
	require.ErrorIs(t, d.OpenCreate(ts("2025-03-10 00:00"), intPtr(24)), ErrInvalidHour)
	assert.Equal(t, DialogClosed, d.Mode)
}

func TestDialog_EditSave(t *testing.T) {
	notes := "bring water"
	e := ev("ev-1", "omer", "2025-03-10 22:00", "2025-03-11 01:30")
	e.Category = "training"
	e.Recurring = true
	e.ReminderMinutes = intPtr(30)
	e.Notes = &notes

	d := NewDialog(testFamily())
	require.NoError(t, d.OpenEdit(e))
	assert.Equal(t, DialogEdit, d.Mode)
	assert.Equal(t, Draft{
		Title:           "ev-1",
		Person:          "omer",
		Category:        "training",
		StartDate:       "2025-03-10",
		EndDate:         "2025-03-11",
		StartTime:       "22:00",
		EndTime:         "01:30",
		Recurring:       true,
		ReminderMinutes: intPtr(30),
		Notes:           "bring water",
	}, d.Draft)

	require.ErrorIs(t, d.BeginParse(), ErrAssistNotAllowed)

	d.Draft.Title = "late practice"
	saved, err := d.Save()
	require.NoError(t, err)
	assert.Equal(t, "ev-1", saved.ID)
	assert.Equal(t, "late practice", saved.Title)
	assert.Equal(t, ts("2025-03-10 22:00"), saved.StartTime)
	assert.Equal(t, ts("2025-03-11 01:30"), saved.EndTime)
	require.NotNil(t, saved.Notes)
	assert.Equal(t, "bring water", *saved.Notes)
	assert.Equal(t, DialogClosed, d.Mode)
}

func TestDialog_SaveIncompleteStaysOpen(t *testing.T) {
	d := NewDialog(testFamily())
	require.NoError(t, d.OpenCreate(ts("2025-03-10 00:00"), nil))

	_, err := d.Save()
	require.ErrorIs(t, err, ErrIncompleteDraft)
	assert.Contains(t, err.Error(), "title")
	assert.Equal(t, DialogCreate, d.Mode)

	d.Draft.Title = "dentist"
	e, err := d.Save()
	require.NoError(t, err)
	assert.Empty(t, e.ID)
	assert.Equal(t, ts("2025-03-10 08:00"), e.StartTime)
	assert.Nil(t, e.Notes)
	assert.Equal(t, DialogClosed, d.Mode)
}

func TestDialog_AssistFlow(t *testing.T) {
	d := NewDialog(testFamily())
	require.ErrorIs(t, d.BeginParse(), ErrDialogClosed)
	require.NoError(t, d.OpenCreate(ts("2025-03-10 00:00"), intPtr(10)))

	require.ErrorIs(t, d.ApplyParsed(&domain.ParsedEvent{}), ErrNotParsing)

	require.NoError(t, d.BeginParse())
	assert.Equal(t, AssistParsing, d.Assist)
	require.NoError(t, d.FailParse("could not parse"))
	assert.Equal(t, AssistError, d.Assist)
	assert.Equal(t, "could not parse", d.AssistError)
	assert.Equal(t, "10:00", d.Draft.StartTime)

	// Retry after an error.
	require.NoError(t, d.BeginParse())
	assert.Empty(t, d.AssistError)
	require.NoError(t, d.ApplyParsed(&domain.ParsedEvent{
		Title:           "basketball",
		Person:          "grandpa",
		Category:        "training",
		Date:            "2025-03-17",
		StartTime:       "19:00",
		EndTime:         "20:30",
		ReminderMinutes: intPtr(60),
	}))
	assert.Equal(t, AssistParsed, d.Assist)
	assert.Equal(t, "basketball", d.Draft.Title)
	assert.Equal(t, "dana", d.Draft.Person, "unknown person is ignored")
	assert.Equal(t, "training", d.Draft.Category)
	assert.Equal(t, "2025-03-17", d.Draft.StartDate)
	assert.Equal(t, "2025-03-17", d.Draft.EndDate)
	assert.Equal(t, "19:00", d.Draft.StartTime)
	assert.Equal(t, "20:30", d.Draft.EndTime)
	assert.Equal(t, intPtr(60), d.Draft.ReminderMinutes)

	d.Cancel()
	assert.Equal(t, DialogClosed, d.Mode)
	assert.Equal(t, AssistIdle, d.Assist)
	assert.Equal(t, Draft{}, d.Draft)
}

func TestDialog_ApplyParsedUnknownCategory(t *testing.T) {
	d := NewDialog(testFamily())
	require.NoError(t, d.OpenCreate(ts("2025-03-10 00:00"), nil))
	require.NoError(t, d.BeginParse())
	require.NoError(t, d.ApplyParsed(&domain.ParsedEvent{Category: "knitting", Person: domain.DefaultEveryone}))
	assert.Equal(t, domain.CategoryOther, d.Draft.Category)
	assert.Equal(t, domain.DefaultEveryone, d.Draft.Person)
}
