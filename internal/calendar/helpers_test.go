package calendar

import (
	"time"

	"familycal/internal/domain"
)

const tsLayout = "2006-01-02 15:04"

func ts(s string) time.Time {
	t, err := time.ParseInLocation(tsLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(id, person, start, end string) *domain.Event {
	return &domain.Event{ID: id, Title: id, Person: person, Category: "other", StartTime: ts(start), EndTime: ts(end)}
}

func testFamily() domain.Family {
	return domain.Family{
		Members:       []domain.Member{{Name: "dana", Emoji: "👩"}, {Name: "omer", Emoji: "👦"}},
		Categories:    domain.DefaultCategories,
		DefaultPerson: "dana",
		Everyone:      domain.DefaultEveryone,
		Location:      time.UTC,
		WeekStart:     time.Sunday,
	}
}

func ids(events []*domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
