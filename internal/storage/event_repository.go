package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage/models"
)

// EventRepository provides data access for itinerary events.
// Start and end dates are persisted as whole-day counts since the Unix
// epoch; attendee lists are stored as a JSON array of initials.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new event. The caller assigns the ID.
func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	attendees, err := marshalAttendees(ev.Attendees)
	if err != nil {
		return err
	}

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO events (id, title, start_day, end_day, all_day, event_type, attendees)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.Title, dates.ToEpochDays(ev.Start), dates.ToEpochDays(ev.End),
		ev.AllDay, ev.Type, attendees,
	)

	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID. Returns nil when not found.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT id, title, start_day, end_day, all_day, event_type, attendees
		FROM events WHERE id = ?
	`, id)

	ev, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	return ev, nil
}

// List retrieves all events ordered by start day, then ID.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, title, start_day, end_day, all_day, event_type, attendees
		FROM events
		ORDER BY start_day, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *ev)
	}

	return events, rows.Err()
}

// Update replaces an event's content. Returns false when the ID is unknown.
func (r *EventRepository) Update(ctx context.Context, ev *models.Event) (bool, error) {
	attendees, err := marshalAttendees(ev.Attendees)
	if err != nil {
		return false, err
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE events SET
			title = ?, start_day = ?, end_day = ?, all_day = ?,
			event_type = ?, attendees = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		ev.Title, dates.ToEpochDays(ev.Start), dates.ToEpochDays(ev.End),
		ev.AllDay, ev.Type, attendees, ev.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating event: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Delete removes an event. Returns false when the ID is unknown.
func (r *EventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting event: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Count returns the number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n)
	return n, err
}

// ReplaceAll swaps the whole itinerary for a decoded one, in a single
// transaction. Used when importing a shared link into the editor.
func (r *EventRepository) ReplaceAll(ctx context.Context, events []models.Event) error {
	return r.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
			return fmt.Errorf("clearing events: %w", err)
		}
		for _, ev := range events {
			attendees, err := marshalAttendees(ev.Attendees)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO events (id, title, start_day, end_day, all_day, event_type, attendees)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				ev.ID, ev.Title, dates.ToEpochDays(ev.Start), dates.ToEpochDays(ev.End),
				ev.AllDay, ev.Type, attendees,
			); err != nil {
				return fmt.Errorf("inserting event %d: %w", ev.ID, err)
			}
		}
		return nil
	})
}

func scanEvent(scan func(dest ...any) error) (*models.Event, error) {
	var (
		ev        models.Event
		startDay  int64
		endDay    int64
		attendees string
	)

	if err := scan(&ev.ID, &ev.Title, &startDay, &endDay, &ev.AllDay, &ev.Type, &attendees); err != nil {
		return nil, err
	}

	ev.Start = dates.FromEpochDays(startDay)
	ev.End = dates.FromEpochDays(endDay)
	if err := json.Unmarshal([]byte(attendees), &ev.Attendees); err != nil {
		return nil, fmt.Errorf("decoding attendees: %w", err)
	}

	return &ev, nil
}

func marshalAttendees(attendees []string) (string, error) {
	if attendees == nil {
		return "[]", nil
	}
	data, err := json.Marshal(attendees)
	if err != nil {
		return "", fmt.Errorf("encoding attendees: %w", err)
	}
	return string(data), nil
}
