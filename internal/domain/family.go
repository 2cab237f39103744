package domain

import (
	"slices"
	"time"
)

// DefaultEveryone is the reserved assignee meaning an event applies to the whole family.
const DefaultEveryone = "everyone"

const (
	DefaultPersonEmoji   = "👤"
	DefaultCategoryEmoji = "📌"
	DefaultEveryoneEmoji = "👨‍👩‍👧‍👧"
	CategoryOther        = "other"
)

// Member is a named family member with a display emoji.
type Member struct {
	Name  string `yaml:"name" json:"name"`
	Emoji string `yaml:"emoji" json:"emoji"`
}

// Category is an event category with a display emoji.
type Category struct {
	Name  string `yaml:"name" json:"name"`
	Emoji string `yaml:"emoji" json:"emoji"`
}

// DefaultCategories is the category set used when none is configured.
var DefaultCategories = []Category{
	{Name: "training", Emoji: "🏋️"},
	{Name: "class", Emoji: "🎨"},
	{Name: "work", Emoji: "💼"},
	{Name: "family", Emoji: "👨‍👩‍👧‍👧"},
	{Name: "flight", Emoji: "✈️"},
	{Name: CategoryOther, Emoji: DefaultCategoryEmoji},
}

// Family is the explicit roster and locale every calendar computation runs against.
// It is a value: WithCategory returns a modified copy.
type Family struct {
	Members       []Member       `json:"members"`
	Categories    []Category     `json:"categories"`
	DefaultPerson string         `json:"default_person"`
	Everyone      string         `json:"everyone"`
	EveryoneEmoji string         `json:"everyone_emoji"`
	Location      *time.Location `json:"-"`
	WeekStart     time.Weekday   `json:"week_start"`
}

// Loc returns the configured location, falling back to UTC.
func (f Family) Loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// EveryoneName returns the sentinel assignee, falling back to DefaultEveryone.
func (f Family) EveryoneName() string {
	if f.Everyone == "" {
		return DefaultEveryone
	}
	return f.Everyone
}

// People returns member names followed by the everyone sentinel.
func (f Family) People() []string {
	out := make([]string, 0, len(f.Members)+1)
	for _, m := range f.Members {
		out = append(out, m.Name)
	}
	return append(out, f.EveryoneName())
}

// CategoryNames returns the configured category names in order.
func (f Family) CategoryNames() []string {
	out := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		out = append(out, c.Name)
	}
	return out
}

// IsPerson reports whether name is a member or the everyone sentinel.
func (f Family) IsPerson(name string) bool {
	return slices.Contains(f.People(), name)
}

func (f Family) IsCategory(name string) bool {
	return slices.Contains(f.CategoryNames(), name)
}

// PersonEmoji returns the emoji for a member, the family emoji for the sentinel,
// and DefaultPersonEmoji for anyone unknown.
func (f Family) PersonEmoji(name string) string {
	if name == f.EveryoneName() {
		if f.EveryoneEmoji != "" {
			return f.EveryoneEmoji
		}
		return DefaultEveryoneEmoji
	}
	for _, m := range f.Members {
		if m.Name == name && m.Emoji != "" {
			return m.Emoji
		}
	}
	return DefaultPersonEmoji
}

func (f Family) CategoryEmoji(name string) string {
	for _, c := range f.Categories {
		if c.Name == name && c.Emoji != "" {
			return c.Emoji
		}
	}
	return DefaultCategoryEmoji
}

// WithCategory returns a copy of f with the category appended, unless it already exists.
func (f Family) WithCategory(name, emoji string) Family {
	if name == "" || f.IsCategory(name) {
		return f
	}
	f.Categories = append(slices.Clone(f.Categories), Category{Name: name, Emoji: emoji})
	return f
}

// DefaultAssignee returns DefaultPerson, or the sentinel when unset.
func (f Family) DefaultAssignee() string {
	if f.DefaultPerson == "" {
		return f.EveryoneName()
	}
	return f.DefaultPerson
}
