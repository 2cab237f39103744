package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familycal/internal/domain"
)

func digestData() *domain.DailyDigestEmailData {
	return &domain.DailyDigestEmailData{
		Email:   "dana@example.com",
		DayName: "Monday",
		Date:    "7/7/2025",
		Lines: []domain.DigestLine{
			{Start: "08:00", End: "09:00", Title: "Swim <fast>", Person: "dana", PersonEmoji: "👩", CategoryEmoji: "🏋️", HasReminder: true},
		},
		Counts: []domain.PersonCount{{Person: "dana", Emoji: "👩", Count: 1}},
		AppURL: "https://cal.example.com",
	}
}

func TestTemplateRenderer_DailyDigest(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("daily_digest", digestData())
	require.NoError(t, err)

	assert.Equal(t, "Daily schedule - Monday 7/7/2025", subject)
	assert.Contains(t, html, "Swim &lt;fast&gt;")
	assert.Contains(t, html, "Total: 1 event<")
	assert.Contains(t, html, `href="https://cal.example.com"`)
	assert.Contains(t, text, "08:00-09:00 🏋️ Swim <fast> (👩 dana) [reminder]")
	assert.Contains(t, text, "👩 dana: 1")
}

func TestTemplateRenderer_EmptyDay(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	data := digestData()
	data.Lines = nil
	data.Counts = nil
	data.AppURL = ""
	_, html, text, err := r.Render("daily_digest", data)
	require.NoError(t, err)

	assert.Contains(t, html, "Nothing planned")
	assert.NotContains(t, html, "Total:")
	assert.NotContains(t, text, "Open the calendar")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("welcome", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
