// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Event type tags. Core stops are the shared group itinerary;
// dealer's-choice stops are per-person side trips that override the
// core itinerary for their attendees.
const (
	EventTypeCore          = "core"
	EventTypeDealersChoice = "dealers-choice"
	EventTypeOther         = "other"
)

// Event is a city visit on the shared travel calendar. Start and End are
// day-granularity dates with an INCLUSIVE end: both days belong to the
// visit. The ID is caller-assigned (the editor uses a millisecond
// timestamp) and is the identity key for share tokens and diffs.
type Event struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"allDay"`
	Type      string    `json:"type,omitempty"`
	Attendees []string  `json:"attendees,omitempty"`
}
