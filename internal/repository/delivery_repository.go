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

// deliveryRepository implements the DeliveryRepository interface using PostgreSQL.
type deliveryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDeliveryRepository creates a new PostgreSQL-backed delivery repository.
func NewDeliveryRepository(pool *pgxpool.Pool, logger zerolog.Logger) DeliveryRepository {
	return &deliveryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "delivery").Logger(),
	}
}

const deliveryColumns = `
	id, order_id, status, driver_id, driver_latitude, driver_longitude,
	position_updated_at, picked_at, actual_delivery, notes,
	last_notified_status, last_notified_at, created_at, updated_at`

// Create inserts the delivery row paired with a freshly created order.
func (r *deliveryRepository) Create(ctx context.Context, d *model.Delivery) error {
	query := `
		INSERT INTO deliveries (id, order_id, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	_, err := r.pool.Exec(ctx, query, d.ID, d.OrderID, d.Status, d.Notes, d.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("delivery_id", d.ID.String()).
			Str("order_id", d.OrderID.String()).
			Msg("failed to create delivery")
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	r.logger.Debug().
		Str("delivery_id", d.ID.String()).
		Str("order_id", d.OrderID.String()).
		Msg("delivery created successfully")

	return nil
}

// GetByID retrieves a delivery, or nil if absent.
func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id = $1`, deliveryColumns)
	return r.queryOne(ctx, query, id)
}

// GetByOrderID retrieves the delivery paired with an order, or nil.
func (r *deliveryRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE order_id = $1`, deliveryColumns)
	return r.queryOne(ctx, query, orderID)
}

func (r *deliveryRepository) queryOne(ctx context.Context, query string, arg any) (*model.Delivery, error) {
	var d model.Delivery
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&d.ID, &d.OrderID, &d.Status, &d.DriverID, &d.DriverLatitude, &d.DriverLongitude,
		&d.PositionUpdatedAt, &d.PickedAt, &d.ActualDelivery, &d.Notes,
		&d.LastNotifiedStatus, &d.LastNotifiedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query delivery")
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}
	return &d, nil
}

// UpdateStatus sets the delivery status and stamps the lifecycle timestamps
// carried in the update.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, pickedAt, actualDelivery *time.Time) error {
	query := `
		UPDATE deliveries
		SET status          = $2,
		    picked_at       = COALESCE($3, picked_at),
		    actual_delivery = COALESCE($4, actual_delivery),
		    updated_at      = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, pickedAt, actualDelivery, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("delivery_id", id.String()).
			Str("status", status).
			Msg("failed to update delivery status")
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrDeliveryNotFound
	}

	r.logger.Debug().
		Str("delivery_id", id.String()).
		Str("status", status).
		Msg("delivery status updated")

	return nil
}

// Claim assigns an unassigned delivery to a driver. The driver_id IS NULL
// guard makes concurrent claims race-safe: of N attempts exactly one sees a
// row update, the rest observe zero rows affected.
func (r *deliveryRepository) Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (bool, error) {
	query := `
		UPDATE deliveries
		SET driver_id = $2, status = $3, updated_at = $4
		WHERE id = $1 AND driver_id IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, deliveryID, driverID, model.DeliveryStatusAssigned, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("delivery_id", deliveryID.String()).
			Str("driver_id", driverID.String()).
			Msg("failed to claim delivery")
		return false, fmt.Errorf("failed to claim delivery: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("delivery_id", deliveryID.String()).
			Str("driver_id", driverID.String()).
			Msg("claim lost, delivery already assigned")
		return false, nil
	}

	return true, nil
}

// UpdatePosition records the driver's latest position on the delivery.
func (r *deliveryRepository) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64, at time.Time) error {
	query := `
		UPDATE deliveries
		SET driver_latitude = $2, driver_longitude = $3, position_updated_at = $4, updated_at = $4
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, lat, lon, at)
	if err != nil {
		r.logger.Error().Err(err).
			Str("delivery_id", id.String()).
			Msg("failed to update delivery position")
		return fmt.Errorf("failed to update delivery position: %w", err)
	}

	return nil
}

// ListActiveByDriver returns the driver's non-terminal deliveries joined with
// their orders' drop-off coordinates.
func (r *deliveryRepository) ListActiveByDriver(ctx context.Context, driverID uuid.UUID) ([]model.ActiveDelivery, error) {
	query := `
		SELECT d.id, d.order_id, d.status, d.driver_id, d.driver_latitude, d.driver_longitude,
		       d.position_updated_at, d.picked_at, d.actual_delivery, d.notes,
		       d.last_notified_status, d.last_notified_at, d.created_at, d.updated_at,
		       o.latitude, o.longitude
		FROM deliveries d
		JOIN orders o ON o.id = d.order_id
		WHERE d.driver_id = $1 AND d.status NOT IN ($2, $3)
		ORDER BY d.created_at
	`

	rows, err := r.pool.Query(ctx, query, driverID,
		model.DeliveryStatusDelivered, model.DeliveryStatusFailed)
	if err != nil {
		r.logger.Error().Err(err).
			Str("driver_id", driverID.String()).
			Msg("failed to query active deliveries")
		return nil, fmt.Errorf("failed to query active deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []model.ActiveDelivery
	for rows.Next() {
		var d model.ActiveDelivery
		err := rows.Scan(
			&d.ID, &d.OrderID, &d.Status, &d.DriverID, &d.DriverLatitude, &d.DriverLongitude,
			&d.PositionUpdatedAt, &d.PickedAt, &d.ActualDelivery, &d.Notes,
			&d.LastNotifiedStatus, &d.LastNotifiedAt, &d.CreatedAt, &d.UpdatedAt,
			&d.DropoffLatitude, &d.DropoffLongitude,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan active delivery row")
			return nil, fmt.Errorf("failed to scan active delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating active delivery rows")
		return nil, fmt.Errorf("error iterating active deliveries: %w", err)
	}

	return deliveries, nil
}

// MarkNotified records the last status change that was published for the
// delivery's order.
func (r *deliveryRepository) MarkNotified(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	query := `
		UPDATE deliveries
		SET last_notified_status = $2, last_notified_at = $3
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, status, at)
	if err != nil {
		r.logger.Error().Err(err).
			Str("delivery_id", id.String()).
			Msg("failed to mark delivery notified")
		return fmt.Errorf("failed to mark delivery notified: %w", err)
	}

	return nil
}
