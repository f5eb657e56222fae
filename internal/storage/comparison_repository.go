package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/travel-calendar/backend/internal/storage/models"
)

// ComparisonRepository provides data access for saved comparison
// subscriptions.
type ComparisonRepository struct {
	BaseRepository
}

// NewComparisonRepository creates a new comparison repository.
func NewComparisonRepository(db *DB) *ComparisonRepository {
	return &ComparisonRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new comparison subscription.
func (r *ComparisonRepository) Create(ctx context.Context, cmp *models.Comparison) error {
	cmp.ID = GenerateID()
	cmp.CreatedAt = r.Now()
	cmp.UpdatedAt = r.Now()
	cmp.RefreshStatus = models.RefreshStatusPending

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO comparisons (
			id, name, url, refresh_interval_min, refresh_status, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		cmp.ID, cmp.Name, cmp.URL, cmp.RefreshIntervalMin,
		cmp.RefreshStatus, cmp.Enabled, cmp.CreatedAt, cmp.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting comparison: %w", err)
	}

	return nil
}

// GetByID retrieves a comparison by its ID. Returns nil when not found.
func (r *ComparisonRepository) GetByID(ctx context.Context, id string) (*models.Comparison, error) {
	cmp := &models.Comparison{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, url, refresh_interval_min, last_refresh_at, refresh_status,
		       refresh_error, enabled, created_at, updated_at
		FROM comparisons WHERE id = ?
	`, id).Scan(
		&cmp.ID, &cmp.Name, &cmp.URL, &cmp.RefreshIntervalMin,
		&cmp.LastRefreshAt, &cmp.RefreshStatus, &cmp.RefreshError,
		&cmp.Enabled, &cmp.CreatedAt, &cmp.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying comparison: %w", err)
	}

	return cmp, nil
}

// List retrieves all comparison subscriptions ordered by name.
func (r *ComparisonRepository) List(ctx context.Context) ([]models.Comparison, error) {
	return r.list(ctx, `
		SELECT id, name, url, refresh_interval_min, last_refresh_at, refresh_status,
		       refresh_error, enabled, created_at, updated_at
		FROM comparisons ORDER BY name
	`)
}

// ListEnabled retrieves all enabled comparison subscriptions.
func (r *ComparisonRepository) ListEnabled(ctx context.Context) ([]models.Comparison, error) {
	return r.list(ctx, `
		SELECT id, name, url, refresh_interval_min, last_refresh_at, refresh_status,
		       refresh_error, enabled, created_at, updated_at
		FROM comparisons WHERE enabled = 1 ORDER BY name
	`)
}

func (r *ComparisonRepository) list(ctx context.Context, query string) ([]models.Comparison, error) {
	rows, err := r.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying comparisons: %w", err)
	}
	defer rows.Close()

	comparisons := make([]models.Comparison, 0)
	for rows.Next() {
		var cmp models.Comparison
		if err := rows.Scan(
			&cmp.ID, &cmp.Name, &cmp.URL, &cmp.RefreshIntervalMin,
			&cmp.LastRefreshAt, &cmp.RefreshStatus, &cmp.RefreshError,
			&cmp.Enabled, &cmp.CreatedAt, &cmp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning comparison: %w", err)
		}
		comparisons = append(comparisons, cmp)
	}

	return comparisons, rows.Err()
}

// Update replaces a comparison's settings. Returns false when unknown.
func (r *ComparisonRepository) Update(ctx context.Context, cmp *models.Comparison) (bool, error) {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE comparisons SET
			name = ?, url = ?, refresh_interval_min = ?, enabled = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, cmp.Name, cmp.URL, cmp.RefreshIntervalMin, cmp.Enabled, cmp.ID)
	if err != nil {
		return false, fmt.Errorf("updating comparison: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// Delete removes a comparison subscription. Returns false when unknown.
func (r *ComparisonRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM comparisons WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting comparison: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// MarkRefreshSuccess records a successful refresh.
func (r *ComparisonRepository) MarkRefreshSuccess(ctx context.Context, id string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE comparisons SET
			refresh_status = ?, refresh_error = NULL,
			last_refresh_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, models.RefreshStatusSuccess, id)
	if err != nil {
		return fmt.Errorf("marking refresh success: %w", err)
	}
	return nil
}

// MarkRefreshError records a failed refresh with its message.
func (r *ComparisonRepository) MarkRefreshError(ctx context.Context, id, message string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE comparisons SET
			refresh_status = ?, refresh_error = ?,
			last_refresh_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, models.RefreshStatusError, message, id)
	if err != nil {
		return fmt.Errorf("marking refresh error: %w", err)
	}
	return nil
}

// Count returns the number of comparison subscriptions.
func (r *ComparisonRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM comparisons").Scan(&n)
	return n, err
}
