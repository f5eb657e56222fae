// Package export renders the itinerary as an iCalendar feed.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage/models"
)

const prodID = "-//travelcal//travel calendar//EN"

// Calendar builds an iCalendar document from itinerary events. Event
// ranges are inclusive internally; ICS expects exclusive end dates, so
// each end day is shifted by one.
func Calendar(events []models.Event, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	for _, ev := range events {
		ve := cal.AddEvent(fmt.Sprintf("%d@travelcal", ev.ID))
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)
		ve.SetAllDayStartAt(dates.Midnight(ev.Start))
		ve.SetAllDayEndAt(dates.Midnight(dates.ExclusiveEnd(ev.End)))
	}

	return cal
}

// Serialize renders the calendar to ICS text.
func Serialize(events []models.Event, now time.Time) string {
	return Calendar(events, now).Serialize()
}
