package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-calendar/backend/internal/storage/models"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestSerialize_AllDayEvents verifies the generated feed structure:
// one VEVENT per itinerary entry, all-day dates, and the exclusive end
// convention (an event ending Oct 31 gets DTEND Nov 1).
func TestSerialize_AllDayEvents(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "Tokyo", Start: utcDay(2025, time.October, 29), End: utcDay(2025, time.October, 31), AllDay: true},
		{ID: 2, Title: "Osaka", Start: utcDay(2025, time.November, 1), End: utcDay(2025, time.November, 3), AllDay: true},
	}
	now := time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)

	out := Serialize(events, now)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "PRODID:"+prodID)

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:1@travelcal")
	assert.Contains(t, out, "UID:2@travelcal")
	assert.Contains(t, out, "SUMMARY:Tokyo")
	assert.Contains(t, out, "SUMMARY:Osaka")

	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251029")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20251101")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251101")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20251104")
}

// TestSerialize_Empty verifies that an empty itinerary still produces a
// valid calendar envelope.
func TestSerialize_Empty(t *testing.T) {
	out := Serialize(nil, time.Now())

	require.NotEmpty(t, out)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

// TestCalendar_SingleDay verifies that a one-day event spans exactly
// one day in ICS terms.
func TestCalendar_SingleDay(t *testing.T) {
	events := []models.Event{
		{ID: 7, Title: "Kyoto", Start: utcDay(2025, time.December, 24), End: utcDay(2025, time.December, 24), AllDay: true},
	}

	out := Serialize(events, time.Now())
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251224")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20251225")
}
