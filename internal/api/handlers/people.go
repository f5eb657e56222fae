package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/storage/models"
	"github.com/travel-calendar/backend/internal/websocket"
)

// ListPeople returns the travel group roster.
func ListPeople(people *storage.PersonRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := people.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query people")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

// CreatePerson adds a roster member.
func CreatePerson(people *storage.PersonRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Person
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if p.Name == "" || p.Initials == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name and initials are required")
			return
		}

		ctx := r.Context()
		if existing, err := people.GetByInitials(ctx, p.Initials); err == nil && existing != nil {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "A person with these initials already exists")
			return
		}

		if err := people.Create(ctx, &p); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create person")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastRosterChanged(p.Initials, p.Name, false)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(p)
	}
}

// DeletePerson removes a roster member. Events keep referencing the
// initials; the classifier falls back to displaying them raw.
func DeletePerson(people *storage.PersonRepository, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initials := mux.Vars(r)["initials"]

		deleted, err := people.Delete(r.Context(), initials)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete person")
			return
		}
		if !deleted {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Person not found")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastRosterChanged(initials, "", true)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
