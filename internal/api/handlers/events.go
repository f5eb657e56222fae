// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/storage/models"
	"github.com/travel-calendar/backend/internal/websocket"
)

// EventRequest is the request body for creating or updating an event.
// Start and End are YYYY-MM-DD dates with an inclusive end.
type EventRequest struct {
	ID        int64    `json:"id,omitempty"`
	Title     string   `json:"title"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Type      string   `json:"type,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// toEvent validates the request and converts it to a model. The second
// return value is a validation message; empty means valid.
func (req *EventRequest) toEvent() (*models.Event, string) {
	if req.Title == "" {
		return nil, "Title is required"
	}

	start, err := dates.ParseDay(req.Start)
	if err != nil {
		return nil, "Start must be a YYYY-MM-DD date"
	}
	end, err := dates.ParseDay(req.End)
	if err != nil {
		return nil, "End must be a YYYY-MM-DD date"
	}
	if !dates.ValidRange(start, end) {
		return nil, "End date must not be before start date"
	}

	return &models.Event{
		ID:        req.ID,
		Title:     req.Title,
		Start:     start,
		End:       end,
		AllDay:    true,
		Type:      req.Type,
		Attendees: req.Attendees,
	}, ""
}

// ListEvents returns the full itinerary ordered by start day.
func ListEvents(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

// CreateEvent adds a new event to the itinerary. When the client does
// not assign an ID, a millisecond timestamp is used, matching the
// editor's convention.
func CreateEvent(events *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ev, msg := req.toEvent()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		if ev.ID == 0 {
			ev.ID = time.Now().UnixMilli()
		}

		ctx := r.Context()
		if existing, err := events.GetByID(ctx, ev.ID); err == nil && existing != nil {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "An event with this id already exists")
			return
		}

		if err := events.Create(ctx, ev); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create event")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastEventChange(websocket.TypeEventCreated, *ev)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ev)
	}
}

// GetEvent returns a single event by ID.
func GetEvent(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid event id")
			return
		}

		ev, err := events.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query event")
			return
		}
		if ev == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// UpdateEvent replaces an event's content.
func UpdateEvent(events *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid event id")
			return
		}

		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ev, msg := req.toEvent()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		ev.ID = id

		updated, err := events.Update(r.Context(), ev)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update event")
			return
		}
		if !updated {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastEventChange(websocket.TypeEventUpdated, *ev)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// DeleteEvent removes an event from the itinerary.
func DeleteEvent(events *storage.EventRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid event id")
			return
		}

		deleted, err := events.Delete(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete event")
			return
		}
		if !deleted {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastEventChange(websocket.TypeEventDeleted, models.Event{ID: id})
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
