package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"familycal/internal/domain"
)

type DialogMode string

const (
	DialogClosed DialogMode = "closed"
	DialogCreate DialogMode = "create"
	DialogEdit   DialogMode = "edit"
)

// AssistState tracks the free-text parse helper inside an open create dialog.
type AssistState string

const (
	AssistIdle    AssistState = "idle"
	AssistParsing AssistState = "parsing"
	AssistParsed  AssistState = "parsed"
	AssistError   AssistState = "error"
)

const (
	defaultStartClock = "08:00"
	defaultEndClock   = "09:00"
	draftDateLayout   = "2006-01-02"
)

var (
	ErrDialogOpen       = errors.New("dialog is already open")
	ErrDialogClosed     = errors.New("dialog is not open")
	ErrAssistNotAllowed = errors.New("free-text parsing is only available when creating")
	ErrNotParsing       = errors.New("no parse in progress")
	ErrIncompleteDraft  = errors.New("title, dates and times are required")
)

// Draft holds the editable fields of the event dialog as entered by a user.
type Draft struct {
	Title           string `json:"title"`
	Person          string `json:"person"`
	Category        string `json:"category"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Recurring       bool   `json:"recurring"`
	ReminderMinutes *int   `json:"reminder_minutes"`
	Notes           string `json:"notes"`
}

// Missing lists the required fields that are empty.
func (d Draft) Missing() []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"title", d.Title},
		{"start_date", d.StartDate},
		{"end_date", d.EndDate},
		{"start_time", d.StartTime},
		{"end_time", d.EndTime},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// ToEvent converts the wall-clock fields in loc into an Event.
func (d Draft) ToEvent(loc *time.Location) (*domain.Event, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteDraft, strings.Join(missing, ", "))
	}
	p := domain.ParsedEvent{
		Title:           d.Title,
		Person:          d.Person,
		Category:        d.Category,
		Date:            d.StartDate,
		EndDate:         d.EndDate,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		Recurring:       d.Recurring,
		ReminderMinutes: d.ReminderMinutes,
		Notes:           d.Notes,
	}
	e, err := p.ToEvent(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
	}
	return e, nil
}

// Dialog is the create/edit state machine:
//
//	closed -> create (prefilled date/hour) | edit (prefilled from an event)
//	create: idle -> parsing -> parsed | error, and parsing may be retried
//	create | edit -> closed on Save or Cancel
type Dialog struct {
	Mode        DialogMode  `json:"mode"`
	EventID     string      `json:"event_id,omitempty"`
	Draft       Draft       `json:"draft"`
	Assist      AssistState `json:"assist"`
	AssistError string      `json:"assist_error,omitempty"`

	family domain.Family
}

func NewDialog(family domain.Family) *Dialog {
	return &Dialog{Mode: DialogClosed, Assist: AssistIdle, family: family}
}

// OpenCreate prefills a new event on day. With an hour the event runs
// hour:00 to hour+1:00 (capped at 23:00); without one, 08:00 to 09:00.
func (d *Dialog) OpenCreate(day time.Time, hour *int) error {
	if d.Mode != DialogClosed {
		return ErrDialogOpen
	}
	date := day.In(d.family.Loc()).Format(draftDateLayout)
	startClock, endClock := defaultStartClock, defaultEndClock
	if hour != nil {
		if *hour < firstHour || *hour > lastHour {
			return fmt.Errorf("%w: %d", ErrInvalidHour, *hour)
		}
		startClock = fmt.Sprintf("%02d:00", *hour)
		endClock = fmt.Sprintf("%02d:00", min(*hour+1, lastHour))
	}
	d.Mode = DialogCreate
	d.EventID = ""
	d.Draft = Draft{
		Person:    d.family.DefaultAssignee(),
		Category:  domain.CategoryOther,
		StartDate: date,
		EndDate:   date,
		StartTime: startClock,
		EndTime:   endClock,
	}
	d.resetAssist()
	return nil
}

// OpenEdit prefills the dialog from an existing event.
func (d *Dialog) OpenEdit(e *domain.Event) error {
	if d.Mode != DialogClosed {
		return ErrDialogOpen
	}
	loc := d.family.Loc()
	start, end := e.StartTime.In(loc), e.EndTime.In(loc)
	d.Mode = DialogEdit
	d.EventID = e.ID
	d.Draft = Draft{
		Title:           e.Title,
		Person:          e.Person,
		Category:        e.Category,
		StartDate:       start.Format(draftDateLayout),
		EndDate:         end.Format(draftDateLayout),
		StartTime:       start.Format(clockLayout),
		EndTime:         end.Format(clockLayout),
		Recurring:       e.Recurring,
		ReminderMinutes: e.ReminderMinutes,
	}
	if e.Notes != nil {
		d.Draft.Notes = *e.Notes
	}
	d.resetAssist()
	return nil
}

// BeginParse enters the parsing sub-state. Only create dialogs offer it.
func (d *Dialog) BeginParse() error {
	switch d.Mode {
	case DialogClosed:
		return ErrDialogClosed
	case DialogEdit:
		return ErrAssistNotAllowed
	}
	d.Assist = AssistParsing
	d.AssistError = ""
	return nil
}

// ApplyParsed copies parsed fields into the draft. Person and category are
// only taken when they are known to the family.
func (d *Dialog) ApplyParsed(p *domain.ParsedEvent) error {
	if d.Assist != AssistParsing {
		return ErrNotParsing
	}
	if p.Title != "" {
		d.Draft.Title = p.Title
	}
	if p.Person != "" && d.family.IsPerson(p.Person) {
		d.Draft.Person = p.Person
	}
	if p.Category != "" && d.family.IsCategory(p.Category) {
		d.Draft.Category = p.Category
	}
	if p.Date != "" {
		d.Draft.StartDate = p.Date
		d.Draft.EndDate = p.Date
		if p.EndDate != "" {
			d.Draft.EndDate = p.EndDate
		}
	}
	if p.StartTime != "" {
		d.Draft.StartTime = p.StartTime
	}
	if p.EndTime != "" {
		d.Draft.EndTime = p.EndTime
	}
	d.Draft.Recurring = p.Recurring
	if p.ReminderMinutes != nil {
		d.Draft.ReminderMinutes = p.ReminderMinutes
	}
	if p.Notes != "" {
		d.Draft.Notes = p.Notes
	}
	d.Assist = AssistParsed
	return nil
}

// FailParse records the parse error and leaves the draft untouched.
func (d *Dialog) FailParse(message string) error {
	if d.Assist != AssistParsing {
		return ErrNotParsing
	}
	d.Assist = AssistError
	d.AssistError = message
	return nil
}

// Save validates the draft and closes the dialog. In edit mode the returned
// event carries the edited id. An incomplete draft keeps the dialog open.
func (d *Dialog) Save() (*domain.Event, error) {
	if d.Mode == DialogClosed {
		return nil, ErrDialogClosed
	}
	e, err := d.Draft.ToEvent(d.family.Loc())
	if err != nil {
		return nil, err
	}
	if d.Mode == DialogEdit {
		e.ID = d.EventID
	}
	d.close()
	return e, nil
}

func (d *Dialog) Cancel() {
	d.close()
}

func (d *Dialog) close() {
	d.Mode = DialogClosed
	d.EventID = ""
	d.Draft = Draft{}
	d.resetAssist()
}

func (d *Dialog) resetAssist() {
	d.Assist = AssistIdle
	d.AssistError = ""
}
