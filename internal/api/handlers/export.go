package handlers

import (
	"net/http"
	"time"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/export"
	"github.com/travel-calendar/backend/internal/storage"
)

// ExportICS serves the itinerary as a downloadable iCalendar file.
func ExportICS(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="travel-calendar.ics"`)
		w.Write([]byte(export.Serialize(list, time.Now())))
	}
}
