package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/remote"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/storage/models"
	"github.com/travel-calendar/backend/internal/websocket"
)

// ComparisonRequest is the request body for creating or updating a
// comparison subscription.
type ComparisonRequest struct {
	Name               string `json:"name"`
	URL                string `json:"url"`
	RefreshIntervalMin int    `json:"refresh_interval_min"`
	Enabled            bool   `json:"enabled"`
}

// ListComparisons returns all saved comparison subscriptions.
func ListComparisons(comparisons *storage.ComparisonRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := comparisons.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query comparisons")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

// CreateComparison adds a new comparison subscription.
func CreateComparison(comparisons *storage.ComparisonRepository, scheduler *remote.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ComparisonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.URL == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name and URL are required")
			return
		}

		if req.RefreshIntervalMin < 5 {
			req.RefreshIntervalMin = 60
		}

		cmp := &models.Comparison{
			Name:               req.Name,
			URL:                req.URL,
			RefreshIntervalMin: req.RefreshIntervalMin,
			Enabled:            req.Enabled,
		}

		if err := comparisons.Create(r.Context(), cmp); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create comparison")
			return
		}

		if scheduler != nil && cmp.Enabled {
			scheduler.ScheduleComparison(*cmp)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(cmp)
	}
}

// GetComparison returns a single comparison by ID.
func GetComparison(comparisons *storage.ComparisonRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmp, err := comparisons.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query comparison")
			return
		}
		if cmp == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Comparison not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cmp)
	}
}

// UpdateComparison updates an existing comparison subscription.
func UpdateComparison(comparisons *storage.ComparisonRepository, scheduler *remote.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req ComparisonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		cmp := &models.Comparison{
			ID:                 id,
			Name:               req.Name,
			URL:                req.URL,
			RefreshIntervalMin: req.RefreshIntervalMin,
			Enabled:            req.Enabled,
		}

		updated, err := comparisons.Update(r.Context(), cmp)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update comparison")
			return
		}
		if !updated {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Comparison not found")
			return
		}

		if scheduler != nil {
			scheduler.ScheduleComparison(*cmp)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteComparison removes a comparison subscription.
func DeleteComparison(comparisons *storage.ComparisonRepository, scheduler *remote.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		deleted, err := comparisons.Delete(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete comparison")
			return
		}
		if !deleted {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Comparison not found")
			return
		}

		if scheduler != nil {
			scheduler.UnscheduleComparison(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RefreshComparison triggers a manual refresh for a comparison.
func RefreshComparison(
	comparisons *storage.ComparisonRepository,
	scheduler *remote.Scheduler,
	hub *websocket.Hub,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		cmp, err := comparisons.GetByID(r.Context(), id)
		if err != nil || cmp == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Comparison not found")
			return
		}

		// Return immediately; the refresh outcome is broadcast over the
		// WebSocket hub.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "refreshing"})

		go func() {
			ctx := context.Background()

			result, err := scheduler.Refresh(ctx, id)
			if err != nil {
				if hub != nil {
					websocket.NewEventBroadcaster(hub, nil).BroadcastComparisonRefreshError(id, cmp.Name, err)
				}
				return
			}

			if hub != nil {
				websocket.NewEventBroadcaster(hub, nil).BroadcastComparisonRefreshed(*result)
			}
		}()
	}
}
