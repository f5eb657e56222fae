package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventCreated           MessageType = "event.created"
	TypeEventUpdated           MessageType = "event.updated"
	TypeEventDeleted           MessageType = "event.deleted"
	TypeRosterChanged          MessageType = "roster.changed"
	TypeComparisonRefreshed    MessageType = "comparison.refreshed"
	TypeComparisonRefreshError MessageType = "comparison.refresh_error"
	TypeNotification           MessageType = "notification"

	// Client -> Server command types
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypePing        MessageType = "ping"

	// Server -> Client response types
	TypeSubscribeAck MessageType = "subscribe.ack"
	TypePong         MessageType = "pong"
	TypeError        MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventPayload is the payload for event.created/updated/deleted events.
type EventPayload struct {
	EventID int64  `json:"event_id"`
	Title   string `json:"title"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

// RosterPayload is the payload for roster.changed events.
type RosterPayload struct {
	Initials string `json:"initials"`
	Name     string `json:"name,omitempty"`
	Removed  bool   `json:"removed,omitempty"`
}

// ComparisonRefreshPayload is the payload for comparison.refreshed events.
type ComparisonRefreshPayload struct {
	ComparisonID   string `json:"comparison_id"`
	ComparisonName string `json:"comparison_name"`
	Status         string `json:"status"`
	EventsFound    int    `json:"events_found"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	Modified       int    `json:"modified"`
	Unchanged      int    `json:"unchanged"`
}

// ComparisonRefreshErrorPayload is the payload for comparison.refresh_error events.
type ComparisonRefreshErrorPayload struct {
	ComparisonID   string `json:"comparison_id"`
	ComparisonName string `json:"comparison_name"`
	Error          string `json:"error"`
	Message        string `json:"message"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
