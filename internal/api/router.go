// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/api/handlers"
	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/remote"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/websocket"
)

// Services bundles everything the router's handlers depend on.
type Services struct {
	DB           *storage.DB
	Events       *storage.EventRepository
	People       *storage.PersonRepository
	Comparisons  *storage.ComparisonRepository
	Codec        *share.Codec
	Fetcher      *remote.Fetcher
	Scheduler    *remote.Scheduler
	Hub          *websocket.Hub
	Logger       *zap.Logger
	ShareBaseURL string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	var broadcaster *websocket.EventBroadcaster
	if s.Hub != nil {
		broadcaster = websocket.NewEventBroadcaster(s.Hub, s.Logger)
	}

	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(s.Logger))
	r.Use(middleware.ErrorRecovery(s.Logger))

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.Events, s.People, s.Comparisons, s.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub, s.Logger)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(s.Events)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(s.Events, broadcaster)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.GetEvent(s.Events)).Methods("GET")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(s.Events, broadcaster)).Methods("PUT")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(s.Events, broadcaster)).Methods("DELETE")

	// Roster endpoints
	api.HandleFunc("/people", handlers.ListPeople(s.People)).Methods("GET")
	api.HandleFunc("/people", handlers.CreatePerson(s.People, broadcaster)).Methods("POST")
	api.HandleFunc("/people/{initials}", handlers.DeletePerson(s.People, broadcaster)).Methods("DELETE")

	// Share token endpoints
	api.HandleFunc("/share", handlers.GetShare(s.Events, s.Codec, s.ShareBaseURL)).Methods("GET")
	api.HandleFunc("/share/decode", handlers.DecodeShare(s.Codec)).Methods("POST")
	api.HandleFunc("/share/import", handlers.ImportShare(s.Events, s.Codec, broadcaster)).Methods("POST")

	// Diff and presence endpoints
	api.HandleFunc("/diff", handlers.CompareCalendars(s.Events, s.Codec, s.Fetcher)).Methods("POST")
	api.HandleFunc("/presence", handlers.GetPresence(s.Events, s.People)).Methods("GET")

	// ICS export
	api.HandleFunc("/export/ics", handlers.ExportICS(s.Events)).Methods("GET")

	// Comparison subscription endpoints
	api.HandleFunc("/comparisons", handlers.ListComparisons(s.Comparisons)).Methods("GET")
	api.HandleFunc("/comparisons", handlers.CreateComparison(s.Comparisons, s.Scheduler)).Methods("POST")
	api.HandleFunc("/comparisons/{id}", handlers.GetComparison(s.Comparisons)).Methods("GET")
	api.HandleFunc("/comparisons/{id}", handlers.UpdateComparison(s.Comparisons, s.Scheduler)).Methods("PUT")
	api.HandleFunc("/comparisons/{id}", handlers.DeleteComparison(s.Comparisons, s.Scheduler)).Methods("DELETE")
	api.HandleFunc("/comparisons/{id}/refresh", handlers.RefreshComparison(s.Comparisons, s.Scheduler, s.Hub)).Methods("POST")

	return r
}
