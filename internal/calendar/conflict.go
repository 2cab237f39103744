package calendar

import (
	"slices"

	"familycal/internal/domain"
)

// ConflictSet holds the ids of events that overlap another event of the same
// person, or of any person when one side is assigned to everyone.
// It does not record which events conflict with which.
type ConflictSet map[string]struct{}

func (s ConflictSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s ConflictSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// FindConflicts compares every unordered pair. Pairs with two different
// persons, neither of them everyone, are skipped. The remaining pairs conflict
// when their half-open intervals overlap; touching ends do not conflict.
func FindConflicts(events []*domain.Event, everyone string) ConflictSet {
	set := make(ConflictSet)
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			a, b := events[i], events[j]
			if a.Person != b.Person && a.Person != everyone && b.Person != everyone {
				continue
			}
			if a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime) {
				set[a.ID] = struct{}{}
				set[b.ID] = struct{}{}
			}
		}
	}
	return set
}
