package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/travel-calendar/backend/internal/api/middleware"
	"github.com/travel-calendar/backend/internal/diff"
	"github.com/travel-calendar/backend/internal/remote"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
)

// DiffRequest identifies the comparison side: either a raw token or a
// shared calendar URL whose data parameter will be resolved.
type DiffRequest struct {
	Token string `json:"token,omitempty"`
	URL   string `json:"url,omitempty"`
}

// CompareCalendars diffs the current itinerary against a shared one.
func CompareCalendars(
	events *storage.EventRepository,
	codec *share.Codec,
	fetcher *remote.Fetcher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DiffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ctx := r.Context()

		token := req.Token
		if token == "" && req.URL != "" {
			resolved, err := fetcher.FetchToken(ctx, req.URL)
			if err != nil {
				middleware.WriteError(w, http.StatusBadGateway, middleware.ErrBadRequest, "Failed to resolve calendar URL: "+err.Error())
				return
			}
			token = resolved
		}
		if token == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Either token or url is required")
			return
		}

		comparison := codec.Decode(token)

		current, err := events.List(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		result := diff.Compare(current, comparison)
		if result == nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Comparison produced no result")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
