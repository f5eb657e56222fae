package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/travel-calendar/backend/internal/storage/models"
)

// PersonRepository provides data access for the travel group roster.
type PersonRepository struct {
	BaseRepository
}

// NewPersonRepository creates a new person repository.
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a roster member. Initials must be unique.
func (r *PersonRepository) Create(ctx context.Context, p *models.Person) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO people (initials, name) VALUES (?, ?)
	`, p.Initials, p.Name)

	if err != nil {
		return fmt.Errorf("inserting person: %w", err)
	}

	return nil
}

// GetByInitials retrieves a roster member. Returns nil when not found.
func (r *PersonRepository) GetByInitials(ctx context.Context, initials string) (*models.Person, error) {
	p := &models.Person{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT initials, name FROM people WHERE initials = ?
	`, initials).Scan(&p.Initials, &p.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying person: %w", err)
	}

	return p, nil
}

// List retrieves the whole roster ordered by name.
func (r *PersonRepository) List(ctx context.Context) ([]models.Person, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT initials, name FROM people ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying people: %w", err)
	}
	defer rows.Close()

	people := make([]models.Person, 0)
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.Initials, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, p)
	}

	return people, rows.Err()
}

// Delete removes a roster member. Returns false when unknown.
func (r *PersonRepository) Delete(ctx context.Context, initials string) (bool, error) {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM people WHERE initials = ?", initials)
	if err != nil {
		return false, fmt.Errorf("deleting person: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Count returns the number of roster members.
func (r *PersonRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&n)
	return n, err
}
