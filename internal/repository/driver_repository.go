package repository

import (
	"context"
	"fmt"
	"time"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// driverRepository implements the DriverRepository interface using PostgreSQL.
type driverRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDriverRepository creates a new PostgreSQL-backed driver repository.
func NewDriverRepository(pool *pgxpool.Pool, logger zerolog.Logger) DriverRepository {
	return &driverRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "driver").Logger(),
	}
}

// GetByID retrieves a driver, or nil if absent.
func (r *driverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	query := `
		SELECT id, user_id, name, active, tracking_enabled, latitude, longitude, position_updated_at
		FROM drivers
		WHERE id = $1
	`

	var d model.Driver
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Active, &d.TrackingEnabled,
		&d.Latitude, &d.Longitude, &d.PositionUpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("driver_id", id.String()).Msg("driver not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("driver_id", id.String()).Msg("failed to query driver")
		return nil, fmt.Errorf("failed to query driver: %w", err)
	}

	return &d, nil
}

// UpdatePosition records the driver's last known position.
func (r *driverRepository) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) error {
	query := `
		UPDATE drivers
		SET latitude = $2, longitude = $3, position_updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, lat, lon, at)
	if err != nil {
		r.logger.Error().Err(err).
			Str("driver_id", id.String()).
			Msg("failed to update driver position")
		return fmt.Errorf("failed to update driver position: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrDriverNotFound
	}

	return nil
}
