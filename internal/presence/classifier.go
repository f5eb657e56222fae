// Package presence derives, for a single date, who is traveling,
// arriving, departing or statically present at which location.
package presence

import (
	"sort"
	"strings"
	"time"

	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage/models"
)

// GroupType classifies a presence group.
type GroupType string

const (
	TypeTravel    GroupType = "travel"
	TypeArrival   GroupType = "arrival"
	TypeDeparture GroupType = "departure"
	TypeLocation  GroupType = "location"
)

// Group is one row of the classifier's output: a set of people sharing
// a travel route, an arrival, a departure, or a static location on the
// target date. Route is set for travel groups, Location for the rest.
// Attendees are display names resolved through the roster.
type Group struct {
	Type      GroupType `json:"type"`
	Route     string    `json:"route,omitempty"`
	Location  string    `json:"location,omitempty"`
	Attendees []string  `json:"attendees"`
	Count     int       `json:"count"`
}

// DisplayName renders the group heading used for sorting and display.
func (g Group) DisplayName() string {
	switch g.Type {
	case TypeTravel:
		return g.Route
	case TypeArrival:
		return "Arriving in " + g.Location
	case TypeDeparture:
		return "Departing " + g.Location
	default:
		return g.Location
	}
}

// transit accumulates one attendee's movement on the target date:
// from is the title of an event ending that day, to the title of an
// event starting that day. When several events of the same kind touch
// the same attendee on one day, the later event in collection order
// overwrites the earlier entry.
type transit struct {
	from string
	to   string
}

// GroupsForDate partitions all tracked people into presence groups for
// the given date. Only events carrying attendee lists contribute;
// attendees with no roster match keep their raw initials. The result is
// sorted by group size descending, ties broken by display name.
func GroupsForDate(date time.Time, events []models.Event, roster []models.Person) []Group {
	// Step 1: transit detection. An event both starting and ending on
	// the date records both sides for its attendees.
	transits := make(map[string]*transit)
	var transitOrder []string

	for _, ev := range events {
		if len(ev.Attendees) == 0 {
			continue
		}
		endsToday := dates.SameDay(ev.End, date)
		startsToday := dates.SameDay(ev.Start, date)
		if !endsToday && !startsToday {
			continue
		}
		for _, initials := range ev.Attendees {
			rec, ok := transits[initials]
			if !ok {
				rec = &transit{}
				transits[initials] = rec
				transitOrder = append(transitOrder, initials)
			}
			if endsToday {
				rec.from = ev.Title
			}
			if startsToday {
				rec.to = ev.Title
			}
		}
	}

	// Step 2: categorization. Someone with from == to falls through all
	// three categories and is still eligible for a location group.
	travelers := make(map[string]transit)
	arrivals := make(map[string]string)
	departures := make(map[string]string)
	classified := make(map[string]bool)

	for _, initials := range transitOrder {
		rec := *transits[initials]
		switch {
		case rec.from != "" && rec.to != "" && rec.from != rec.to:
			travelers[initials] = rec
			classified[initials] = true
		case rec.to != "" && rec.from == "":
			arrivals[initials] = rec.to
			classified[initials] = true
		case rec.from != "" && rec.to == "":
			departures[initials] = rec.from
			classified[initials] = true
		}
	}

	// Step 3: grouping by route / destination / origin.
	groups := make([]Group, 0)

	travelGroups := newGrouping()
	for _, initials := range transitOrder {
		if rec, ok := travelers[initials]; ok {
			travelGroups.add(rec.from+" → "+rec.to, initials)
		}
	}
	for _, key := range travelGroups.order {
		groups = append(groups, Group{
			Type:      TypeTravel,
			Route:     key,
			Attendees: resolveNames(travelGroups.members[key], roster),
			Count:     len(travelGroups.members[key]),
		})
	}

	arrivalGroups := newGrouping()
	for _, initials := range transitOrder {
		if loc, ok := arrivals[initials]; ok {
			arrivalGroups.add(loc, initials)
		}
	}
	for _, key := range arrivalGroups.order {
		groups = append(groups, Group{
			Type:      TypeArrival,
			Location:  key,
			Attendees: resolveNames(arrivalGroups.members[key], roster),
			Count:     len(arrivalGroups.members[key]),
		})
	}

	departureGroups := newGrouping()
	for _, initials := range transitOrder {
		if loc, ok := departures[initials]; ok {
			departureGroups.add(loc, initials)
		}
	}
	for _, key := range departureGroups.order {
		groups = append(groups, Group{
			Type:      TypeDeparture,
			Location:  key,
			Attendees: resolveNames(departureGroups.members[key], roster),
			Count:     len(departureGroups.members[key]),
		})
	}

	// Step 4: static location groups. Anyone already classified as a
	// traveler, arrival or departure is excluded globally so a person
	// never shows both as "Departing Tokyo" and "in Tokyo" on the same
	// day. Groups left empty after exclusion are dropped.
	locationGroups := newGrouping()
	for _, ev := range events {
		if !dates.Contains(ev.Start, ev.End, date) {
			continue
		}
		for _, initials := range ev.Attendees {
			if classified[initials] {
				continue
			}
			locationGroups.add(ev.Title, initials)
		}
	}
	for _, key := range locationGroups.order {
		members := locationGroups.members[key]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{
			Type:      TypeLocation,
			Location:  key,
			Attendees: resolveNames(members, roster),
			Count:     len(members),
		})
	}

	// Step 5: sort by count descending, then by display name.
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return strings.Compare(groups[i].DisplayName(), groups[j].DisplayName()) < 0
	})

	return groups
}

// grouping is an insertion-ordered multimap of group key to deduplicated
// member initials.
type grouping struct {
	order   []string
	members map[string][]string
	seen    map[string]map[string]bool
}

func newGrouping() *grouping {
	return &grouping{
		members: make(map[string][]string),
		seen:    make(map[string]map[string]bool),
	}
}

func (g *grouping) add(key, initials string) {
	if _, ok := g.seen[key]; !ok {
		g.order = append(g.order, key)
		g.seen[key] = make(map[string]bool)
	}
	if g.seen[key][initials] {
		return
	}
	g.seen[key][initials] = true
	g.members[key] = append(g.members[key], initials)
}

// resolveNames maps attendee initials to roster display names. A missing
// roster entry is not an error; the raw initials degrade gracefully.
func resolveNames(initials []string, roster []models.Person) []string {
	names := make([]string, 0, len(initials))
	for _, ini := range initials {
		names = append(names, displayName(ini, roster))
	}
	return names
}

func displayName(initials string, roster []models.Person) string {
	for _, p := range roster {
		if p.Initials == initials {
			return p.Name
		}
	}
	return initials
}
