package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familycal/internal/calendar"
	"familycal/internal/domain"
)

func newTestCalendarController(svc *fakeCalendarService) *CalendarController {
	c := NewCalendarController(testLogger, svc)
	c.Now = func() time.Time { return time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestCalendarController_GetView(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		query       string
		wantStatus  int
		wantMode    calendar.Mode
		wantDate    string
		wantExpand  [2]int
		wantPeople  []string
		checkPeople bool
	}{
		{name: "defaults to today", mode: "day", wantStatus: http.StatusOK, wantMode: calendar.ModeDay, wantDate: "2025-07-07", checkPeople: true},
		{name: "explicit date", mode: "week", query: "date=2025-03-10", wantStatus: http.StatusOK, wantMode: calendar.ModeWeek, wantDate: "2025-03-10"},
		{name: "next day", mode: "day", query: "date=2025-03-10&nav=next", wantStatus: http.StatusOK, wantMode: calendar.ModeDay, wantDate: "2025-03-11"},
		{name: "previous week", mode: "week", query: "date=2025-03-10&nav=prev", wantStatus: http.StatusOK, wantMode: calendar.ModeWeek, wantDate: "2025-03-03"},
		{name: "next month clamps", mode: "month", query: "date=2025-01-31&nav=next", wantStatus: http.StatusOK, wantMode: calendar.ModeMonth, wantDate: "2025-02-28"},
		{name: "today", mode: "day", query: "date=2024-01-01&nav=today", wantStatus: http.StatusOK, wantMode: calendar.ModeDay, wantDate: "2025-07-07"},
		{
			name: "navigation drops expansion", mode: "day", query: "date=2025-03-10&nav=next&expand_start=2",
			wantStatus: http.StatusOK, wantMode: calendar.ModeDay, wantDate: "2025-03-11",
		},
		{
			name: "expansion", mode: "day", query: "date=2025-03-10&expand_start=2&expand_end=4",
			wantStatus: http.StatusOK, wantMode: calendar.ModeDay, wantDate: "2025-03-10", wantExpand: [2]int{2, 4},
		},
		{
			name: "people filter", mode: "week", query: "people=dana,omer",
			wantStatus: http.StatusOK, wantMode: calendar.ModeWeek, wantDate: "2025-07-07",
			wantPeople: []string{"dana", "omer"}, checkPeople: true,
		},
		{
			name: "empty people filter hides everyone", mode: "week", query: "people=",
			wantStatus: http.StatusOK, wantMode: calendar.ModeWeek, wantDate: "2025-07-07",
			wantPeople: []string{}, checkPeople: true,
		},
		{name: "unknown mode", mode: "year", wantStatus: http.StatusBadRequest},
		{name: "unknown nav", mode: "day", query: "nav=sideways", wantStatus: http.StatusBadRequest},
		{name: "bad date", mode: "day", query: "date=10-03-2025", wantStatus: http.StatusBadRequest},
		{name: "negative expansion", mode: "day", query: "expand_end=-2", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCalendarService{}
			c := newTestCalendarController(svc)
			req := httptest.NewRequest(http.MethodGet, "/calendar/"+tt.mode+"?"+tt.query, nil)
			req.SetPathValue("mode", tt.mode)
			rr := httptest.NewRecorder()

			c.GetView(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var view calendar.View
			require.Nil(t, decodeEnvelope(t, rr, &view))
			assert.Equal(t, tt.wantMode, view.Mode)
			assert.Equal(t, tt.wantMode, svc.lastState.Mode)
			assert.Equal(t, tt.wantDate, svc.lastState.Date.Format("2006-01-02"))
			assert.Equal(t, tt.wantExpand, [2]int{svc.lastState.ExpandStart, svc.lastState.ExpandEnd})
			if tt.checkPeople {
				assert.Equal(t, tt.wantPeople, svc.lastPeople)
			}
		})
	}
}

func TestCalendarController_OpenDialog(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantStatus    int
		wantMode      calendar.DialogMode
		wantStartTime string
		wantAssist    calendar.AssistState
	}{
		{
			name: "create with hour", body: `{"date":"2025-03-10","hour":14}`,
			wantStatus: http.StatusOK, wantMode: calendar.DialogCreate, wantStartTime: "14:00", wantAssist: calendar.AssistIdle,
		},
		{
			name: "create without hour", body: `{"date":"2025-03-10"}`,
			wantStatus: http.StatusOK, wantMode: calendar.DialogCreate, wantStartTime: "08:00", wantAssist: calendar.AssistIdle,
		},
		{
			name: "edit", body: `{"event_id":"e1"}`,
			wantStatus: http.StatusOK, wantMode: calendar.DialogEdit, wantStartTime: "09:00", wantAssist: calendar.AssistIdle,
		},
		{
			name: "assist failure is reported in the dialog", body: `{"date":"2025-03-10","text":"something"}`,
			wantStatus: http.StatusOK, wantMode: calendar.DialogCreate, wantStartTime: "08:00", wantAssist: calendar.AssistError,
		},
		{name: "edit missing event", body: `{"event_id":"nope"}`, wantStatus: http.StatusNotFound},
		{name: "no target", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "hour out of range", body: `{"date":"2025-03-10","hour":30}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCalendarService{}
			c := newTestCalendarController(svc)
			req := httptest.NewRequest(http.MethodPost, "/calendar/dialog", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			c.OpenDialog(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var d calendar.Dialog
			require.Nil(t, decodeEnvelope(t, rr, &d))
			assert.Equal(t, tt.wantMode, d.Mode)
			assert.Equal(t, tt.wantStartTime, d.Draft.StartTime)
			assert.Equal(t, tt.wantAssist, d.Assist)
			if tt.wantAssist == calendar.AssistError {
				assert.Equal(t, "something", svc.lastText)
				assert.Equal(t, "Could not parse AI response", d.AssistError)
			}
		})
	}
}

func TestCalendarController_SaveDialog(t *testing.T) {
	complete := `{"event_id":"e1","draft":{"title":"Gym","person":"dana","category":"training",` +
		`"start_date":"2025-03-10","end_date":"2025-03-10","start_time":"09:00","end_time":"10:00"}}`

	tests := []struct {
		name        string
		body        string
		svcErr      error
		wantStatus  int
		wantMessage string
	}{
		{name: "saved", body: complete, wantStatus: http.StatusOK},
		{
			name:        "incomplete draft",
			body:        `{"draft":{"title":"Gym","start_date":"2025-03-10"}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing required fields: end_date, start_time, end_time",
		},
		{name: "missing event", body: complete, svcErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCalendarService{err: tt.svcErr}
			c := newTestCalendarController(svc)
			req := httptest.NewRequest(http.MethodPost, "/calendar/dialog/save", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			c.SaveDialog(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var e domain.Event
			apiErr := decodeEnvelope(t, rr, &e)
			if tt.wantMessage != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantMessage, apiErr.Message)
				return
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "e1", e.ID)
				assert.Equal(t, "Gym", e.Title)
				assert.Equal(t, 9, e.StartTime.Hour())
			}
		})
	}
}
