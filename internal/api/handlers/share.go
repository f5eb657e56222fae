package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/websocket"
)

// ShareResponse carries the encoded token for the current itinerary and,
// when a public base URL is configured, a ready-to-share link.
type ShareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url,omitempty"`
	Count int    `json:"count"`
}

// GetShare encodes the current itinerary into a share token. An empty
// itinerary yields an empty token: there is nothing to share.
func GetShare(events *storage.EventRepository, codec *share.Codec, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		resp := ShareResponse{
			Token: codec.Encode(list),
			Count: len(list),
		}
		if resp.Token != "" && baseURL != "" {
			resp.URL = baseURL + "?data=" + url.QueryEscape(resp.Token)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// TokenRequest is the request body for decode and import operations.
type TokenRequest struct {
	Token string `json:"token"`
}

// DecodeShare decodes a share token of any supported version into
// events. A malformed token decodes to an empty list, not an error.
func DecodeShare(codec *share.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Token is required")
			return
		}

		decoded := codec.Decode(req.Token)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"events": decoded,
			"count":  len(decoded),
		})
	}
}

// ImportShare replaces the stored itinerary with a decoded token.
func ImportShare(events *storage.EventRepository, codec *share.Codec, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Token is required")
			return
		}

		decoded := codec.Decode(req.Token)
		if len(decoded) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Token decodes to no events")
			return
		}

		if err := events.ReplaceAll(r.Context(), decoded); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to import events")
			return
		}

		if broadcaster != nil {
			broadcaster.BroadcastNotification("info", "Itinerary imported",
				"The itinerary was replaced from a shared link")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"events": decoded,
			"count":  len(decoded),
		})
	}
}
