package websocket

import (
	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub    *Hub
	logger *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, logger *zap.Logger) *EventBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBroadcaster{hub: hub, logger: logger}
}

// BroadcastEventChange sends an event.created/updated/deleted message.
func (b *EventBroadcaster) BroadcastEventChange(msgType MessageType, ev models.Event) {
	payload := EventPayload{
		EventID: ev.ID,
		Title:   ev.Title,
	}
	if !ev.Start.IsZero() {
		payload.Start = ev.Start.Format("2006-01-02")
		payload.End = ev.End.Format("2006-01-02")
	}

	b.broadcast(NewMessage(msgType, payload))
}

// BroadcastRosterChanged sends a roster.changed message.
func (b *EventBroadcaster) BroadcastRosterChanged(initials, name string, removed bool) {
	payload := RosterPayload{
		Initials: initials,
		Name:     name,
		Removed:  removed,
	}

	b.broadcast(NewMessage(TypeRosterChanged, payload))
}

// BroadcastComparisonRefreshed sends a comparison.refreshed message.
func (b *EventBroadcaster) BroadcastComparisonRefreshed(result models.ComparisonRefreshResult) {
	payload := ComparisonRefreshPayload{
		ComparisonID:   result.ComparisonID,
		ComparisonName: result.ComparisonName,
		Status:         "success",
		EventsFound:    result.EventsFound,
		Added:          result.Added,
		Removed:        result.Removed,
		Modified:       result.Modified,
		Unchanged:      result.Unchanged,
	}

	if result.Error != nil {
		payload.Status = "error"
	}

	b.broadcast(NewMessage(TypeComparisonRefreshed, payload))
}

// BroadcastComparisonRefreshError sends a comparison.refresh_error message.
func (b *EventBroadcaster) BroadcastComparisonRefreshError(comparisonID, comparisonName string, err error) {
	payload := ComparisonRefreshErrorPayload{
		ComparisonID:   comparisonID,
		ComparisonName: comparisonName,
		Error:          "refresh_error",
		Message:        err.Error(),
	}

	b.broadcast(NewMessage(TypeComparisonRefreshError, payload))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}

	b.broadcast(NewMessage(TypeNotification, payload))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.logger.Error("Failed to encode WebSocket message", zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
