package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/diff"
	"github.com/travel-calendar/backend/internal/remote"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/storage/models"
	"github.com/travel-calendar/backend/internal/websocket"
)

// newTestRouter builds a router backed by a throwaway SQLite database.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := storage.NewDB(t.TempDir()+"/test.db", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.RunMigrations(db))

	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()

	eventRepo := storage.NewEventRepository(db)
	personRepo := storage.NewPersonRepository(db)
	comparisonRepo := storage.NewComparisonRepository(db)
	codec := share.NewCodec(zap.NewNop())
	fetcher := remote.NewFetcher(zap.NewNop())
	scheduler := remote.NewScheduler(fetcher, codec, eventRepo, comparisonRepo, hub, 60, zap.NewNop())

	return NewRouter(Services{
		DB:          db,
		Events:      eventRepo,
		People:      personRepo,
		Comparisons: comparisonRepo,
		Codec:       codec,
		Fetcher:     fetcher,
		Scheduler:   scheduler,
		Hub:         hub,
		Logger:      zap.NewNop(),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// TestEvents_CRUD exercises the event lifecycle through the router.
func TestEvents_CRUD(t *testing.T) {
	router := newTestRouter(t)

	// Empty list to start
	w := doJSON(t, router, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	// Create
	w = doJSON(t, router, http.MethodPost, "/api/events", map[string]any{
		"id":        1,
		"title":     "Tokyo",
		"start":     "2025-10-29",
		"end":       "2025-10-31",
		"attendees": []string{"BB"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.Event](t, w)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Tokyo", created.Title)

	// Duplicate id rejected
	w = doJSON(t, router, http.MethodPost, "/api/events", map[string]any{
		"id": 1, "title": "Tokyo again", "start": "2025-10-29", "end": "2025-10-31",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Get
	w = doJSON(t, router, http.MethodGet, "/api/events/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[models.Event](t, w)
	assert.Equal(t, "Tokyo", got.Title)
	assert.Equal(t, []string{"BB"}, got.Attendees)

	// Update
	w = doJSON(t, router, http.MethodPut, "/api/events/1", map[string]any{
		"title": "Tokyo Extended", "start": "2025-10-29", "end": "2025-11-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Delete
	w = doJSON(t, router, http.MethodDelete, "/api/events/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/events/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestEvents_Validation verifies the request validation messages.
func TestEvents_Validation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"start": "2025-10-29", "end": "2025-10-31"}},
		{"bad start", map[string]any{"title": "Tokyo", "start": "29/10/2025", "end": "2025-10-31"}},
		{"bad end", map[string]any{"title": "Tokyo", "start": "2025-10-29", "end": "oops"}},
		{"end before start", map[string]any{"title": "Tokyo", "start": "2025-10-31", "end": "2025-10-29"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/events", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// TestShare_RoundTrip verifies token generation, decoding and import
// through the HTTP surface.
func TestShare_RoundTrip(t *testing.T) {
	router := newTestRouter(t)

	for i, title := range []string{"Tokyo", "Osaka"} {
		w := doJSON(t, router, http.MethodPost, "/api/events", map[string]any{
			"id": i + 1, "title": title,
			"start": fmt.Sprintf("2025-11-0%d", i+1), "end": fmt.Sprintf("2025-11-0%d", i+2),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, "/api/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	shared := decodeBody[map[string]any](t, w)
	token, _ := shared["token"].(string)
	require.NotEmpty(t, token)
	assert.EqualValues(t, 2, shared["count"])

	w = doJSON(t, router, http.MethodPost, "/api/share/decode", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, w.Code)
	decoded := decodeBody[map[string]any](t, w)
	assert.EqualValues(t, 2, decoded["count"])

	// A missing token is the one decode error case
	w = doJSON(t, router, http.MethodPost, "/api/share/decode", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Import replaces the stored itinerary
	w = doJSON(t, router, http.MethodDelete, "/api/events/1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/share/import", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/events", nil)
	restored := decodeBody[[]models.Event](t, w)
	assert.Len(t, restored, 2)
}

// TestDiff_Endpoint verifies comparing the stored itinerary against a
// token.
func TestDiff_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/events", map[string]any{
		"id": 1, "title": "Tokyo", "start": "2025-10-29", "end": "2025-10-31",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Token holds the same event plus one more
	codec := share.NewCodec(nil)
	token := codec.Encode([]models.Event{
		{ID: 1, Title: "Tokyo", Start: mustDay("2025-10-29"), End: mustDay("2025-10-31")},
		{ID: 2, Title: "Osaka", Start: mustDay("2025-11-01"), End: mustDay("2025-11-03")},
	})

	w = doJSON(t, router, http.MethodPost, "/api/diff", map[string]any{"token": token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[diff.Result](t, w)
	assert.Empty(t, result.Added)
	assert.Len(t, result.Removed, 1)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, 1, result.TotalCurrent)
	assert.Equal(t, 2, result.TotalComparison)

	// Neither token nor url
	w = doJSON(t, router, http.MethodPost, "/api/diff", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPresence_Endpoint verifies the whereabouts classification over
// stored events and roster.
func TestPresence_Endpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/people", map[string]any{
		"name": "Bailey", "initials": "BB",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for i, title := range []string{"Sendai", "Tokyo"} {
		body := map[string]any{
			"id": i + 1, "title": title, "attendees": []string{"BB"},
		}
		if title == "Sendai" {
			body["start"], body["end"] = "2025-10-25", "2025-10-29"
		} else {
			body["start"], body["end"] = "2025-10-29", "2025-10-31"
		}
		w = doJSON(t, router, http.MethodPost, "/api/events", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/presence?date=2025-10-29", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "2025-10-29", resp["date"])

	groups, ok := resp["groups"].([]any)
	require.True(t, ok)
	require.Len(t, groups, 1)
	group := groups[0].(map[string]any)
	assert.Equal(t, "travel", group["type"])
	assert.Equal(t, "Sendai → Tokyo", group["route"])

	w = doJSON(t, router, http.MethodGet, "/api/presence?date=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPeople_DuplicateInitials verifies the roster uniqueness rule.
func TestPeople_DuplicateInitials(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/people", map[string]any{
		"name": "Bailey", "initials": "BB",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/people", map[string]any{
		"name": "Billie", "initials": "BB",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/people/BB", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/people/BB", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestComparisons_CRUD exercises the comparison subscription lifecycle.
func TestComparisons_CRUD(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/comparisons", map[string]any{
		"name":                 "Team B",
		"url":                  "https://example.com/calendar?data=v3%3Aabc",
		"refresh_interval_min": 2, // below minimum, falls back to default
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.Comparison](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 60, created.RefreshIntervalMin)
	assert.Equal(t, models.RefreshStatusPending, created.RefreshStatus)

	w = doJSON(t, router, http.MethodGet, "/api/comparisons/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/comparisons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]models.Comparison](t, w)
	assert.Len(t, list, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/comparisons/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/comparisons/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestHealthAndStatus verifies the operational endpoints.
func TestHealthAndStatus(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decodeBody[map[string]any](t, w)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["db_connected"])

	w = doJSON(t, router, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeBody[map[string]any](t, w)
	assert.EqualValues(t, 0, status["events_count"])
}

// TestExportICS verifies the feed endpoint's headers and payload.
func TestExportICS(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/events", map[string]any{
		"id": 1, "title": "Tokyo", "start": "2025-10-29", "end": "2025-10-31",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/export/ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "SUMMARY:Tokyo")
}

func mustDay(s string) (t time.Time) {
	t, _ = time.Parse("2006-01-02", s)
	return t
}
