package domain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	parsedDateLayout = "2006-01-02"
	parsedTimeLayout = "15:04"
)

// ReminderChoices are the reminder lead times offered to users, in minutes.
var ReminderChoices = []int{5, 10, 15, 30, 60, 120, 1440}

// ParsedEvent is the structured result of free-text event parsing.
// Dates are YYYY-MM-DD and times HH:MM, wall-clock in the family location.
type ParsedEvent struct {
	Title           string `json:"title"`
	Person          string `json:"person"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	EndDate         string `json:"end_date,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Recurring       bool   `json:"recurring"`
	ReminderMinutes *int   `json:"reminder_minutes"`
	Notes           string `json:"notes"`
}

// Normalize fills defaults for fields the model left out.
func (p *ParsedEvent) Normalize(f Family, now time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Person == "" {
		p.Person = f.DefaultAssignee()
	}
	if p.Category == "" {
		p.Category = CategoryOther
	}
	if p.Date == "" {
		p.Date = now.In(f.Loc()).Format(parsedDateLayout)
	}
	if p.EndDate == "" {
		p.EndDate = p.Date
	}
	if p.ReminderMinutes != nil && *p.ReminderMinutes <= 0 {
		p.ReminderMinutes = nil
	}
	if p.StartTime != "" && p.EndTime == "" {
		if start, err := p.startInstant(f.Loc()); err == nil {
			end := start.Add(time.Hour)
			p.EndDate = end.Format(parsedDateLayout)
			p.EndTime = end.Format(parsedTimeLayout)
		}
	}
}

// MultiDay reports whether the event ends on a later date than it starts.
func (p *ParsedEvent) MultiDay() bool {
	return p.EndDate != "" && p.EndDate != p.Date
}

func (p *ParsedEvent) startInstant(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(parsedDateLayout+" "+parsedTimeLayout, p.Date+" "+p.StartTime, loc)
}

// Instants converts the wall-clock fields to absolute instants in loc.
func (p *ParsedEvent) Instants(loc *time.Location) (start, end time.Time, err error) {
	start, err = p.startInstant(loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start %q %q: %w", p.Date, p.StartTime, ErrInvalidDateTime)
	}
	endDate := p.EndDate
	if endDate == "" {
		endDate = p.Date
	}
	end, err = time.ParseInLocation(parsedDateLayout+" "+parsedTimeLayout, endDate+" "+p.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end %q %q: %w", endDate, p.EndTime, ErrInvalidDateTime)
	}
	return start, end, nil
}

// ToEvent builds an unsaved Event from the parsed fields.
func (p *ParsedEvent) ToEvent(loc *time.Location) (*Event, error) {
	start, end, err := p.Instants(loc)
	if err != nil {
		return nil, err
	}
	e := &Event{
		Title:           p.Title,
		Person:          p.Person,
		Category:        p.Category,
		StartTime:       start,
		EndTime:         end,
		Recurring:       p.Recurring,
		ReminderMinutes: p.ReminderMinutes,
	}
	if notes := strings.TrimSpace(p.Notes); notes != "" {
		e.Notes = &notes
	}
	return e, nil
}

// LanguageModel is the AI collaborator: one system prompt, one user message, raw text back.
type LanguageModel interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type ParseService interface {
	ParseEvent(ctx context.Context, text string) (*ParsedEvent, error)
}
