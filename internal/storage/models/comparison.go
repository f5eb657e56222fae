package models

import (
	"time"
)

// Comparison is a saved subscription to somebody else's shared calendar
// link. The refresher periodically resolves the link's data token,
// decodes it and diffs it against the current itinerary.
type Comparison struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	URL                string     `json:"url"`
	RefreshIntervalMin int        `json:"refresh_interval_min"`
	LastRefreshAt      *time.Time `json:"last_refresh_at,omitempty"`
	RefreshStatus      string     `json:"refresh_status"`
	RefreshError       *string    `json:"refresh_error,omitempty"`
	Enabled            bool       `json:"enabled"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Refresh status constants
const (
	RefreshStatusPending = "pending"
	RefreshStatusRunning = "running"
	RefreshStatusSuccess = "success"
	RefreshStatusError   = "error"
)

// ComparisonRefreshResult summarizes one refresh of a saved comparison.
type ComparisonRefreshResult struct {
	ComparisonID   string    `json:"comparison_id"`
	ComparisonName string    `json:"comparison_name"`
	EventsFound    int       `json:"events_found"`
	Added          int       `json:"added"`
	Removed        int       `json:"removed"`
	Modified       int       `json:"modified"`
	Unchanged      int       `json:"unchanged"`
	Error          error     `json:"-"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}
