package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connection
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount      int `json:"events_count"`
	PeopleCount      int `json:"people_count"`
	ComparisonsCount int `json:"comparisons_count"`
	ConnectedClients int `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(
	events *storage.EventRepository,
	people *storage.PersonRepository,
	comparisons *storage.ComparisonRepository,
	hub *websocket.Hub,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		response := StatusResponse{}
		response.EventsCount, _ = events.Count(ctx)
		response.PeopleCount, _ = people.Count(ctx)
		response.ComparisonsCount, _ = comparisons.Count(ctx)
		if hub != nil {
			response.ConnectedClients = hub.ClientCount()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
