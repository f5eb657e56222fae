// Package diff reconciles two event collections by identity.
package diff

import (
	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage/models"
)

// Pair is one modified event: the same id on both sides with a
// differing title or day-granularity date range.
type Pair struct {
	Current    models.Event `json:"current"`
	Comparison models.Event `json:"comparison"`
}

// Result partitions every event from both collections. The identity
// len(Added) + len(Modified) + Unchanged == TotalCurrent always holds.
type Result struct {
	Added           []models.Event `json:"added"`
	Removed         []models.Event `json:"removed"`
	Modified        []Pair         `json:"modified"`
	Unchanged       int            `json:"unchanged"`
	TotalCurrent    int            `json:"totalCurrent"`
	TotalComparison int            `json:"totalComparison"`
}

// Compare classifies events by id: present only in current (added),
// only in comparison (removed), or in both with differing content
// (modified). A nil input yields a nil sentinel result, not an error;
// callers must check before use. Empty collections are valid inputs.
// Added/Removed follow their input collection's order; Modified follows
// current's order.
func Compare(current, comparison []models.Event) *Result {
	if current == nil || comparison == nil {
		return nil
	}

	currentByID := make(map[int64]models.Event, len(current))
	for _, ev := range current {
		currentByID[ev.ID] = ev
	}
	comparisonByID := make(map[int64]models.Event, len(comparison))
	for _, ev := range comparison {
		comparisonByID[ev.ID] = ev
	}

	added := make([]models.Event, 0)
	modified := make([]Pair, 0)
	for _, ev := range current {
		other, ok := comparisonByID[ev.ID]
		if !ok {
			added = append(added, ev)
			continue
		}
		if eventChanged(ev, other) {
			modified = append(modified, Pair{Current: ev, Comparison: other})
		}
	}

	removed := make([]models.Event, 0)
	for _, ev := range comparison {
		if _, ok := currentByID[ev.ID]; !ok {
			removed = append(removed, ev)
		}
	}

	return &Result{
		Added:           added,
		Removed:         removed,
		Modified:        modified,
		Unchanged:       len(current) - len(added) - len(modified),
		TotalCurrent:    len(current),
		TotalComparison: len(comparison),
	}
}

func eventChanged(a, b models.Event) bool {
	return a.Title != b.Title ||
		!dates.SameDay(a.Start, b.Start) ||
		!dates.SameDay(a.End, b.End)
}
