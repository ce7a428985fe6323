package repository

import (
	"context"
	"fmt"
	"time"

	"fronteira/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// UpsertByPhone creates the customer or refreshes the identity fields for an
// existing phone number. Phone is the unique lookup key, so the same phone
// never produces two rows.
func (r *customerRepository) UpsertByPhone(ctx context.Context, c *model.Customer) (uuid.UUID, error) {
	query := `
		INSERT INTO customers (id, name, phone, email, address, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (phone) DO UPDATE SET
			name       = EXCLUDED.name,
			email      = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
			address    = COALESCE(NULLIF(EXCLUDED.address, ''), customers.address),
			latitude   = COALESCE(EXCLUDED.latitude, customers.latitude),
			longitude  = COALESCE(EXCLUDED.longitude, customers.longitude),
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	now := time.Now()
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), c.Name, c.Phone, c.Email, c.Address, c.Latitude, c.Longitude, now,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("phone", c.Phone).Msg("failed to upsert customer")
		return uuid.Nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	r.logger.Debug().
		Str("customer_id", id.String()).
		Msg("customer upserted")

	return id, nil
}
