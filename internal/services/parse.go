package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"familycal/internal/domain"
)

type parseService struct {
	model          domain.LanguageModel
	family         domain.Family
	contextTimeout time.Duration
	now            func() time.Time
}

// NewParseService returns a ParseService. A nil model makes every call fail with ErrAINotConfigured.
func NewParseService(model domain.LanguageModel, family domain.Family, timeout time.Duration) domain.ParseService {
	return &parseService{
		model:          model,
		family:         family,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *parseService) ParseEvent(ctx context.Context, text string) (*domain.ParsedEvent, error) {
	if s.model == nil {
		return nil, domain.ErrAINotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: missing text", domain.ErrValidation)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	content, err := s.model.Complete(ctx, ParsePrompt(s.family, now), text)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrNoAIResponse
	}
	raw, ok := firstJSONObject(content)
	if !ok {
		return nil, domain.ErrUnparsableAIResponse
	}
	var parsed domain.ParsedEvent
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnparsableAIResponse, err)
	}
	parsed.Normalize(s.family, now)
	return &parsed, nil
}

// ParsePrompt builds the system prompt for the family roster, ending with today's date in the family zone.
func ParsePrompt(f domain.Family, now time.Time) string {
	loc := f.Loc()
	today := now.In(loc)
	var b strings.Builder
	b.WriteString("You turn free text into one entry of a family calendar.\n\n")
	fmt.Fprintf(&b, "Family members: %s\n", strings.Join(f.People(), ", "))
	fmt.Fprintf(&b, "Categories: %s\n\n", strings.Join(f.CategoryNames(), ", "))
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- If no person is named, use: %s\n", f.DefaultAssignee())
	fmt.Fprintf(&b, "- If no category is given, infer one. Default: %s\n", domain.CategoryOther)
	fmt.Fprintf(&b, "- If no date is given, use today (time zone %s)\n", loc)
	b.WriteString("- If no end time is given, end one hour after the start\n")
	b.WriteString("- If a weekday is named, use the nearest upcoming date with that weekday\n")
	b.WriteString("- If the event spans several days, set end_date to the last day\n")
	b.WriteString("- Detect reminder requests (\"remind me\", \"send a reminder\") and map them to minutes:\n")
	for _, m := range domain.ReminderChoices {
		fmt.Fprintf(&b, "  * %s = %d\n", ReminderLead(m), m)
	}
	b.WriteString("- Answer with JSON only\n\n")
	b.WriteString(`Response format (JSON only):
{
  "title": "event title",
  "person": "person name",
  "category": "category",
  "date": "YYYY-MM-DD",
  "end_date": "YYYY-MM-DD",
  "start_time": "HH:MM",
  "end_time": "HH:MM",
  "recurring": false,
  "reminder_minutes": null,
  "notes": ""
}`)
	fmt.Fprintf(&b, "\n\nToday: %s (%s)", today.Format(isoDateLayout), today.Weekday())
	return b.String()
}

// firstJSONObject returns the first balanced {...} in s. Braces inside
// string literals are ignored.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
