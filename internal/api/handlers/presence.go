package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/presence"
	"github.com/travel-calendar/backend/internal/storage"
)

// PresenceResponse lists the presence groups for one date.
type PresenceResponse struct {
	Date   string           `json:"date"`
	Groups []presence.Group `json:"groups"`
}

// GetPresence classifies the whole group's whereabouts for a date. The
// date query parameter is YYYY-MM-DD; it defaults to today in JST, the
// trip's reference timezone.
func GetPresence(events *storage.EventRepository, people *storage.PersonRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := dates.TodayJST()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := dates.ParseDay(raw)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Date must be a YYYY-MM-DD date")
				return
			}
			day = parsed
		}

		ctx := r.Context()

		list, err := events.List(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		roster, err := people.List(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query people")
			return
		}

		resp := PresenceResponse{
			Date:   day.Format("2006-01-02"),
			Groups: presence.GroupsForDate(day, list, roster),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
